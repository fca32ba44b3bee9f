package models

import "time"

// Artifact is one stored video in the content store.
type Artifact struct {
	Name        string     `json:"name"`
	SizeBytes   int64      `json:"size_bytes"`
	SizeMB      float64    `json:"size_mb"`
	ModifiedAt  time.Time  `json:"modified_at"`
	ContentType string     `json:"content_type"`
	DownloadURL string     `json:"download_url,omitempty"`
	URLExpires  *time.Time `json:"download_url_expires_at,omitempty"`
}
