package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims is the JWT payload of an authenticated admin session.
type AdminClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// AdminSession is the server-side record backing an issued admin token.
type AdminSession struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
}

// AdminLoginResult is returned on successful admin login.
type AdminLoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RequestMeta carries caller details recorded with a session.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
