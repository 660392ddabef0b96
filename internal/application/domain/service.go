package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tessera/pkg/db/pagination"
)

type CreateApplicationRequest struct {
	Code        string
	Name        string
	Description string
}

type UpdateApplicationRequest struct {
	ID          string
	Name        string
	Description string
	Status      string
}

type GetApplicationRequest struct {
	ID string
}

type ListApplicationRequest struct {
	PageToken string
	PageSize  int32
	Status    string
}

type ListApplicationFilter struct {
	Status ApplicationStatus
}

type ListApplicationResponse struct {
	pagination.PageInfo
	Applications []Application `json:"applications"`
}

type CreateUserTypeRequest struct {
	ApplicationID string
	Code          string
	Name          string
	Rank          int
}

type Service interface {
	Create(context.Context, CreateApplicationRequest) (Application, error)
	Update(context.Context, UpdateApplicationRequest) (Application, error)
	GetByID(context.Context, GetApplicationRequest) (Application, error)
	List(context.Context, ListApplicationRequest) (ListApplicationResponse, error)

	CreateUserType(context.Context, CreateUserTypeRequest) (UserType, error)
	ListUserTypes(ctx context.Context, applicationID string) ([]UserType, error)
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidCode   = errors.New("invalid_code")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrCodeTaken     = errors.New("code_taken")
	ErrNotFound      = errors.New("not_found")
)
