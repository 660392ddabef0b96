package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
)

type Entry struct {
	TenantID   snowflake.ID
	ActorID    snowflake.ID
	ActorEmail string
	Action     string
	Resource   string
	ResourceID string
	Detail     map[string]any
}

type ListAuditLogRequest struct {
	PageToken   string
	PageSize    int32
	Action      string
	Resource    string
	ActorID     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListAuditLogFilter struct {
	Action      string
	Resource    string
	ActorID     snowflake.ID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidActorID = errors.New("invalid_actor_id")
)
