package domain

import (
	"context"
	"errors"

	userdomain "github.com/smallbiznis/tessera/internal/user/domain"
)

type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

type LoginResponse struct {
	Session Session         `json:"session"`
	User    userdomain.User `json:"user"`
}

type Service interface {
	Login(context.Context, LoginRequest) (LoginResponse, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a session token to its user; expired
	// sessions fail and are removed.
	Authenticate(ctx context.Context, token string) (LoginResponse, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserDisabled       = errors.New("user_disabled")
	ErrThrottled          = errors.New("login_throttled")
	ErrSessionExpired     = errors.New("session_expired")
	ErrUnauthenticated    = errors.New("unauthenticated")
)
