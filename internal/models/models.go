// Package models contains the request and response shapes of the HTTP API
// and constants shared between application layers.
package models

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SigninRequest is the body of POST /api/auth/signin.
type SigninRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthUser is the sanitized view of a user returned to clients.
// It deliberately carries no password hash.
type AuthUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse is the success body of the signup and signin endpoints.
type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// MeResponse is the success body of GET /api/auth/me.
type MeResponse struct {
	User AuthUser `json:"user"`
}

// ErrorResponse is the body of every client-error response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Storage backend kinds selectable via configuration.
const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)
