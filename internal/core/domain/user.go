package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already in use")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTooManyAttempts = errors.New("too many login attempts")

// ErrValidation is the base error for all input validation failures.
// Wrap it with context: fmt.Errorf("%w: age must not be negative", ErrValidation).
var ErrValidation = errors.New("validation failed")

// ErrInvalidUpdate signals that an update request contained a field outside
// the resource's allow-list. The whole request is rejected, nothing applied.
var ErrInvalidUpdate = errors.New("invalid update fields")

// User models an account holder. PasswordHash, Avatar and Tokens never
// appear in serialized output.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          int       `json:"age"`
	Avatar       []byte    `json:"-"`
	Tokens       []string  `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasToken reports whether token is in the user's active session list.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// RemoveToken drops a single session token from the active list.
func (u *User) RemoveToken(token string) {
	kept := make([]string, 0, len(u.Tokens))
	for _, t := range u.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
}
