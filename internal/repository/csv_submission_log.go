package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/kilter-intake/internal/models"
)

var naiveTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// CSVSubmissionLog stores submissions as rows of a single CSV file.
// Appends are serialised; reads always re-parse the whole file.
type CSVSubmissionLog struct {
	path string
	loc  *time.Location
	mu   sync.Mutex
}

// NewCSVSubmissionLog returns a log backed by the file at path. Timestamps without
// an offset are written and read in loc (time.Local when nil).
func NewCSVSubmissionLog(path string, loc *time.Location) *CSVSubmissionLog {
	if path == "" {
		path = "./submissions_tracking.csv"
	}
	if loc == nil {
		loc = time.Local
	}
	return &CSVSubmissionLog{path: path, loc: loc}
}

// Path returns the log file location.
func (r *CSVSubmissionLog) Path() string {
	return r.path
}

// Append writes one row, creating the file with a header when it is new or empty.
// Rows follow the column order of an existing header; columns the file lacks are dropped.
func (r *CSVSubmissionLog) Append(ctx context.Context, submission *models.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if submission == nil {
		return fmt.Errorf("append submission: nil record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prepare log directory: %w", err)
		}
	}
	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open submission log: %w", err)
	}
	defer file.Close() //nolint:errcheck

	header, err := readHeader(file)
	if err != nil {
		return err
	}

	if header != nil {
		if err := ensureTrailingNewline(file); err != nil {
			return err
		}
	}

	writer := csv.NewWriter(file)
	if header == nil {
		header = models.SubmissionLogColumns
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("write log header: %w", err)
		}
	}
	if err := writer.Write(submission.LogRecord(header, r.loc)); err != nil {
		return fmt.Errorf("write log row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush log row: %w", err)
	}
	return file.Sync()
}

// Query returns all rows matching predicate in file order. A missing file has no rows.
func (r *CSVSubmissionLog) Query(ctx context.Context, predicate models.SubmissionPredicate) ([]models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if predicate == nil {
		predicate = models.AllSubmissions
	}
	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Submission{}, nil
		}
		return nil, fmt.Errorf("open submission log: %w", err)
	}
	defer file.Close() //nolint:errcheck

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Submission{}, nil
		}
		return nil, fmt.Errorf("read log header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, column := range header {
		index[strings.TrimSpace(strings.TrimPrefix(column, "\ufeff"))] = i
	}

	result := make([]models.Submission, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read log row: %w", err)
		}
		submission := r.decode(index, record)
		if predicate(submission) {
			result = append(result, submission)
		}
	}
	return result, nil
}

// OpenRaw opens the log file for export. It returns os.ErrNotExist when nothing was logged yet.
func (r *CSVSubmissionLog) OpenRaw(ctx context.Context) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	file, err := os.Open(r.path)
	if err != nil {
		return nil, 0, fmt.Errorf("open submission log: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, 0, fmt.Errorf("stat submission log: %w", err)
	}
	return file, info.Size(), nil
}

func (r *CSVSubmissionLog) decode(index map[string]int, record []string) models.Submission {
	get := func(column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	submission := models.Submission{
		Name:          get("name"),
		Email:         get("email"),
		ProblemGrade:  models.Grade(get("problem_grade")),
		ProblemName:   get("problem_name"),
		VideoFilename: get("video_filename"),
		Status:        get("status"),
	}
	if ts, err := ParseSubmissionTimestamp(get("timestamp"), r.loc); err == nil {
		submission.Timestamp = ts
	}
	if size, err := strconv.ParseFloat(strings.TrimSpace(get("file_size_mb")), 64); err == nil {
		submission.FileSizeMB = size
	}
	if notes, err := strconv.ParseBool(strings.TrimSpace(get("has_notes"))); err == nil {
		submission.HasNotes = notes
	}
	return submission
}

// ParseSubmissionTimestamp accepts RFC 3339 or naive ISO-8601 (interpreted in loc).
func ParseSubmissionTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts, nil
	}
	for _, layout := range naiveTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// readHeader returns the first record of an existing log, or nil for an empty file.
func readHeader(file *os.File) ([]string, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat submission log: %w", err)
	}
	if info.Size() == 0 {
		return nil, nil
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek submission log: %w", err)
	}
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read log header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	return header, nil
}

// ensureTrailingNewline terminates a last row written without a newline so the
// next append starts on its own line.
func ensureTrailingNewline(file *os.File) error {
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat submission log: %w", err)
	}
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("read submission log tail: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := file.Write([]byte("\n")); err != nil {
		return fmt.Errorf("terminate submission log row: %w", err)
	}
	return nil
}
