package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tessera/pkg/db/pagination"
)

type CreateUserRequest struct {
	TenantID string
	Email    string
	Name     string
	Role     string
	Password string
}

type UpdateUserRequest struct {
	TenantID string
	ID       string
	Name     string
	Role     string
	Status   string
}

type GetUserRequest struct {
	TenantID string
	ID       string
}

type ListUserRequest struct {
	TenantID  string
	PageToken string
	PageSize  int32
	Email     string
	Role      string
	Status    string
}

type ListUserFilter struct {
	Email  string
	Role   Role
	Status UserStatus
}

type ListUserResponse struct {
	pagination.PageInfo
	Users []User `json:"users"`
}

type Service interface {
	Create(context.Context, CreateUserRequest) (User, error)
	Update(context.Context, UpdateUserRequest) (User, error)
	GetByID(context.Context, GetUserRequest) (User, error)
	List(context.Context, ListUserRequest) (ListUserResponse, error)
}

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidPassword = errors.New("invalid_password")
	ErrEmailTaken      = errors.New("email_taken")
	ErrNotFound        = errors.New("not_found")
)
