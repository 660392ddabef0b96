package domain

import (
	"context"
	"errors"
)

type ActivateLicenseRequest struct {
	TenantID      string
	ApplicationID string
	SeatLimit     int
}

type UpdateLicenseRequest struct {
	TenantID  string
	ID        string
	SeatLimit int
	Status    string
}

type GetLicenseRequest struct {
	TenantID string
	ID       string
}

type GrantSeatRequest struct {
	TenantID   string
	LicenseID  string
	UserID     string
	UserTypeID string
}

type RevokeSeatRequest struct {
	TenantID  string
	LicenseID string
	UserID    string
}

// LicenseUsage pairs a license with its authoritative seat count.
type LicenseUsage struct {
	License
	SeatsUsed int64 `json:"seats_used"`
}

type Service interface {
	Activate(context.Context, ActivateLicenseRequest) (License, error)
	Update(context.Context, UpdateLicenseRequest) (License, error)
	GetByID(context.Context, GetLicenseRequest) (LicenseUsage, error)
	ListByTenant(ctx context.Context, tenantID string) ([]LicenseUsage, error)

	GrantSeat(context.Context, GrantSeatRequest) (SeatAssignment, error)
	RevokeSeat(context.Context, RevokeSeatRequest) error
	ListSeats(ctx context.Context, tenantID, licenseID string) ([]SeatAssignment, error)
}

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidApplication = errors.New("invalid_application")
	ErrInvalidUser        = errors.New("invalid_user")
	ErrInvalidSeatLimit   = errors.New("invalid_seat_limit")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrSeatLimitTooLow    = errors.New("seat_limit_below_usage")
	ErrLicenseExists      = errors.New("license_exists")
	ErrLicenseSuspended   = errors.New("license_suspended")
	ErrNotFound           = errors.New("not_found")

	// ErrNoSeatsAvailable marks a grant against a full license.
	ErrNoSeatsAvailable = errors.New("no_seats_available")
	// ErrAlreadyLicensed marks a duplicate grant for the same user.
	ErrAlreadyLicensed = errors.New("already_licensed")
)
