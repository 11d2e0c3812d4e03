package handler

import "github.com/taskhive/task-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=7"`
	Age      int    `json:"age"      validate:"gte=0"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// authResponse is returned by register and login: the serialized user plus
// the freshly minted session token. The domain type hides credential,
// avatar and token fields from JSON.
type authResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}
