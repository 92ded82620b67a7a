package dto

import (
	"net/mail"
	"strings"
	"time"

	"github.com/raffleworks/lottery-service/internal/domain"
)

// UserRegisterRequest payload for new accounts.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Problems lists the missing or malformed fields, keyed by field name.
func (r UserRegisterRequest) Problems() map[string]any {
	problems := map[string]any{}
	if strings.TrimSpace(r.Name) == "" {
		problems["name"] = "required"
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		problems["email"] = "must be a valid address"
	}
	if r.Password == "" {
		problems["password"] = "required"
	}
	return problems
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account. ID is the identity used in
// every lottery call.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserResponse builds the response for user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}

// AuthResponse carries an issued bearer token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	User UserResponse `json:"user"`
	Auth AuthResponse `json:"auth"`
}
