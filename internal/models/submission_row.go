package models

import (
	"strconv"
	"time"
)

// SubmissionLogColumns is the header of the submission log. Column order and
// presence are the compatibility contract for consumers of the exported file.
var SubmissionLogColumns = []string{
	"timestamp",
	"name",
	"email",
	"problem_grade",
	"problem_name",
	"video_filename",
	"file_size_mb",
	"has_notes",
	"status",
}

// SubmissionTimestampLayout is how timestamps are written: local ISO-8601 with microseconds.
const SubmissionTimestampLayout = "2006-01-02T15:04:05.000000"

// LogValues renders the row keyed by column name, with timestamps expressed in loc.
func (s Submission) LogValues(loc *time.Location) map[string]string {
	if loc == nil {
		loc = time.Local
	}
	timestamp := ""
	if !s.Timestamp.IsZero() {
		timestamp = s.Timestamp.In(loc).Format(SubmissionTimestampLayout)
	}
	return map[string]string{
		"timestamp":      timestamp,
		"name":           s.Name,
		"email":          s.Email,
		"problem_grade":  string(s.ProblemGrade),
		"problem_name":   s.ProblemName,
		"video_filename": s.VideoFilename,
		"file_size_mb":   strconv.FormatFloat(s.FileSizeMB, 'f', 2, 64),
		"has_notes":      formatLogBool(s.HasNotes),
		"status":         s.Status,
	}
}

// LogRecord renders the row in the given column order.
func (s Submission) LogRecord(columns []string, loc *time.Location) []string {
	values := s.LogValues(loc)
	record := make([]string, len(columns))
	for i, column := range columns {
		record[i] = values[column]
	}
	return record
}

func formatLogBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
