package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/tessera/pkg/db/pagination"
)

type CreateTenantRequest struct {
	Name string
	Slug string
	Tags []string
}

type UpdateTenantRequest struct {
	ID     string
	Name   string
	Status string
	Tags   []string
}

type GetTenantRequest struct {
	ID string
}

type ListTenantRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Status    string
}

type ListTenantFilter struct {
	Name   string
	Status TenantStatus
}

type ListTenantResponse struct {
	pagination.PageInfo
	Tenants []Tenant `json:"tenants"`
}

// AddressInput carries one submitted address. ID holds the durable
// identifier when the row already exists; client placeholder IDs that do
// not parse count as absent and mark the row for creation.
type AddressInput struct {
	ID          string
	Type        string
	Line1       string
	Line2       string
	City        string
	Region      string
	PostalCode  string
	CountryCode string
}

type SaveAddressesRequest struct {
	TenantID  string
	Addresses []AddressInput
}

type ContactInput struct {
	ID    string
	Name  string
	Email string
	Phone string
	Role  string
}

type SaveContactsRequest struct {
	TenantID string
	Contacts []ContactInput
}

type Service interface {
	Create(context.Context, CreateTenantRequest) (Tenant, error)
	Update(context.Context, UpdateTenantRequest) (Tenant, error)
	GetByID(context.Context, GetTenantRequest) (Tenant, error)
	List(context.Context, ListTenantRequest) (ListTenantResponse, error)

	ListAddresses(ctx context.Context, tenantID string) ([]TenantAddress, error)
	SaveAddresses(context.Context, SaveAddressesRequest) ([]TenantAddress, error)
	ListContacts(ctx context.Context, tenantID string) ([]TenantContact, error)
	SaveContacts(context.Context, SaveContactsRequest) ([]TenantContact, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidSlug        = errors.New("invalid_slug")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidAddressType = errors.New("invalid_address_type")
	ErrInvalidAddress     = errors.New("invalid_address")
	ErrInvalidContact     = errors.New("invalid_contact")
	ErrSlugTaken          = errors.New("slug_taken")
	ErrNotFound           = errors.New("not_found")
)
