package dto

import (
	"time"

	"github.com/noah-isme/kilter-intake/internal/models"
)

// SubmissionRequest holds the form fields posted alongside a video upload.
type SubmissionRequest struct {
	Name         string `form:"name" json:"name" validate:"required"`
	Email        string `form:"email" json:"email" validate:"required"`
	ProblemGrade string `form:"problem_grade" json:"problem_grade" validate:"required,grade"`
	ProblemName  string `form:"problem_name" json:"problem_name"`
	Notes        string `form:"notes" json:"notes" validate:"max=500"`
	Consent      bool   `form:"consent" json:"consent" validate:"required"`
}

// SubmissionReceipt confirms an accepted submission.
type SubmissionReceipt struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	VideoFilename  string    `json:"video_filename"`
	SubmittedAt    time.Time `json:"submitted_at"`
	RemainingSlots int       `json:"remaining_slots"`
	NextSteps      []string  `json:"next_steps"`
}

// IntakeFormStatus is what a client needs before rendering the upload form.
type IntakeFormStatus struct {
	Open              bool           `json:"open"`
	RemainingSlots    int            `json:"remaining_slots"`
	WeeklyLimit       int            `json:"weekly_limit"`
	NextReset         time.Time      `json:"next_reset"`
	Grades            []models.Grade `json:"grades"`
	AcceptedFormats   []string       `json:"accepted_formats"`
	MaxVideoSizeMB    float64        `json:"max_video_size_mb"`
	MaxNotesLength    int            `json:"max_notes_length"`
	ConsentStatements []string       `json:"consent_statements"`
}
