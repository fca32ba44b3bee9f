package dto

import "time"

// AdminLoginRequest carries the shared admin password.
type AdminLoginRequest struct {
	Password string `json:"password" form:"password"`
}

// WeekResetResponse explains that the weekly counter cannot be cleared manually.
type WeekResetResponse struct {
	Message   string    `json:"message"`
	NextReset time.Time `json:"next_reset"`
}
