package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Grade buckets accepted on the intake form.
type Grade string

const (
	GradeV0V2 Grade = "V0-V2"
	GradeV3V4 Grade = "V3-V4"
	GradeV5V6 Grade = "V5-V6"
	GradeV7V8 Grade = "V7-V8"
	GradeV9Up Grade = "V9+"
)

// Grades lists the grade buckets in form order.
var Grades = []Grade{GradeV0V2, GradeV3V4, GradeV5V6, GradeV7V8, GradeV9Up}

// Valid reports whether g is one of the known buckets.
func (g Grade) Valid() bool {
	for _, known := range Grades {
		if g == known {
			return true
		}
	}
	return false
}

// VideoExtensions are the accepted upload extensions, without the dot.
var VideoExtensions = []string{"mp4", "mov", "avi", "mkv"}

// VideoExtension returns the lowercased extension of filename without the dot.
func VideoExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// AcceptedVideoExtension reports whether ext (no dot) is an accepted video type.
func AcceptedVideoExtension(ext string) bool {
	for _, known := range VideoExtensions {
		if strings.EqualFold(ext, known) {
			return true
		}
	}
	return false
}

// VideoContentType maps a stored artifact name to its natural content type.
func VideoContentType(name string) string {
	switch VideoExtension(name) {
	case "mp4":
		return "video/mp4"
	case "mov":
		return "video/quicktime"
	case "avi":
		return "video/x-msvideo"
	case "mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}

// SubmissionStatusUploaded is the only status a logged submission currently carries.
const SubmissionStatusUploaded = "uploaded"

// Submission is one immutable row of the submission log.
type Submission struct {
	Timestamp     time.Time `db:"submitted_at" json:"timestamp"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	ProblemGrade  Grade     `db:"problem_grade" json:"problem_grade"`
	ProblemName   string    `db:"problem_name" json:"problem_name"`
	VideoFilename string    `db:"video_filename" json:"video_filename"`
	FileSizeMB    float64   `db:"file_size_mb" json:"file_size_mb"`
	HasNotes      bool      `db:"has_notes" json:"has_notes"`
	Status        string    `db:"status" json:"status"`
}

// SubmissionPredicate selects log rows in a query.
type SubmissionPredicate func(Submission) bool

// AllSubmissions matches every row.
func AllSubmissions(Submission) bool { return true }

// SubmittedSince matches rows timestamped at or after since.
func SubmittedSince(since time.Time) SubmissionPredicate {
	return func(s Submission) bool {
		return !s.Timestamp.IsZero() && !s.Timestamp.Before(since)
	}
}
