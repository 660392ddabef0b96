package domain

import (
	"context"
	"errors"
)

type AssignQuotaRequest struct {
	TenantID string
	PlanCode string
}

type RecordUsageRequest struct {
	TenantID string
	Minutes  int64
}

// Plan is a catalog entry exposed to the console.
type Plan struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	IncludedMinutes int    `json:"included_minutes"`
	OveragePolicy   string `json:"overage_policy"`
}

type Service interface {
	ListPlans(ctx context.Context) []Plan
	Assign(context.Context, AssignQuotaRequest) (TenantQuota, error)
	GetByTenant(ctx context.Context, tenantID string) (TenantQuota, error)
	RecordUsage(context.Context, RecordUsageRequest) (TenantQuota, error)
}

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidPlan    = errors.New("invalid_plan")
	ErrInvalidMinutes = errors.New("invalid_minutes")
	ErrQuotaExceeded  = errors.New("quota_exceeded")
	ErrNotFound       = errors.New("not_found")
)
