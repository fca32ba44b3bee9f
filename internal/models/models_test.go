package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	loc := time.FixedZone("MST", -7*3600)
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2025, 1, 6, 0, 1, 0, 0, loc), time.Date(2025, 1, 6, 0, 0, 0, 0, loc)},
		{time.Date(2025, 1, 12, 23, 59, 0, 0, loc), time.Date(2025, 1, 6, 0, 0, 0, 0, loc)},
		{time.Date(2025, 1, 1, 12, 0, 0, 0, loc), time.Date(2024, 12, 30, 0, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, WeekStart(tc.now), tc.now.String())
	}
	require.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, loc), NextWeekStart(time.Date(2025, 1, 8, 9, 0, 0, 0, loc)))
}

func TestSubmittedSinceExcludesPreviousSunday(t *testing.T) {
	now := time.Date(2025, 1, 6, 0, 1, 0, 0, time.Local)
	pred := SubmittedSince(WeekStart(now))
	require.False(t, pred(Submission{Timestamp: time.Date(2025, 1, 5, 23, 59, 0, 0, time.Local)}))
	require.True(t, pred(Submission{Timestamp: time.Date(2025, 1, 6, 0, 0, 0, 0, time.Local)}))
	require.False(t, pred(Submission{}))
}

func TestGradeAndExtensions(t *testing.T) {
	require.True(t, GradeV9Up.Valid())
	require.False(t, Grade("V10").Valid())
	require.Equal(t, "mp4", VideoExtension("Clip.MP4"))
	require.True(t, AcceptedVideoExtension("MKV"))
	require.False(t, AcceptedVideoExtension("gif"))
	require.Equal(t, "video/quicktime", VideoContentType("a.mov"))
	require.Equal(t, "application/octet-stream", VideoContentType("a.bin"))
}

func TestSubmissionLogRecord(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	s := Submission{
		Timestamp:     time.Date(2025, 1, 6, 9, 15, 0, 0, time.UTC),
		Name:          "Jane Doe",
		Email:         "jane@example.com",
		ProblemGrade:  GradeV5V6,
		VideoFilename: "20250106_101500_jane_doe.mp4",
		FileSizeMB:    5,
		Status:        SubmissionStatusUploaded,
	}
	require.Equal(t,
		[]string{"2025-01-06T10:15:00.000000", "Jane Doe", "jane@example.com", "V5-V6", "", "20250106_101500_jane_doe.mp4", "5.00", "False", "uploaded"},
		s.LogRecord(SubmissionLogColumns, loc))
	require.Equal(t, []string{"uploaded", "Jane Doe"}, s.LogRecord([]string{"status", "name"}, loc))
	require.Equal(t, "", Submission{}.LogValues(loc)["timestamp"])
}
