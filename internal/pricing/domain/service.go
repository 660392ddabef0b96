package domain

import (
	"context"
	"errors"
	"time"
)

type ListPricingRequest struct {
	ApplicationID string
	UserTypeID    string
	Current       bool
}

type ListPricingFilter struct {
	UserTypeID int64
	CurrentAt  *time.Time
}

type ListPricingResponse struct {
	Periods []PricingPeriod `json:"pricing_periods"`
}

type CreatePricingRequest struct {
	ApplicationID string
	UserTypeID    string
	AmountCents   int64
	Currency      string
	ValidFrom     time.Time
	ValidTo       *time.Time
}

type EndPricingRequest struct {
	ApplicationID string
	PeriodID      string
}

type Service interface {
	List(context.Context, ListPricingRequest) (ListPricingResponse, error)
	Create(context.Context, CreatePricingRequest) (PricingPeriod, error)
	End(context.Context, EndPricingRequest) (PricingPeriod, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidUserType = errors.New("invalid_user_type")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidDates    = errors.New("invalid_dates")
	ErrAlreadyEnded    = errors.New("already_ended")
	ErrNotFound        = errors.New("not_found")

	// ErrOverlap marks a candidate period that intersects an active
	// period of the same user type.
	ErrOverlap = errors.New("pricing_overlap")
)

// OverlapError carries the conflicting existing period so responses can
// embed the authoritative range the candidate collided with.
type OverlapError struct {
	Existing PricingPeriod
}

func (e *OverlapError) Error() string { return ErrOverlap.Error() }

func (e *OverlapError) Unwrap() error { return ErrOverlap }
