//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// SignUpRequest represents the request to create an account.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,max=120"`
}

// SignInRequest represents the sign-in request.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents a user for API responses (avoids import cycle with db package).
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse represents the sign-in/sign-up response with user data and authentication token.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdateRolesRequest replaces the full set of roles held by a user.
type UpdateRolesRequest struct {
	Roles []string `json:"roles" validate:"dive,oneof=consultant business_manager admin"`
}

// Validate validates the SignUpRequest using the validator.
func (r *SignUpRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SignInRequest using the validator.
func (r *SignInRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateRolesRequest using the validator.
func (r *UpdateRolesRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
