package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID      `gorm:"not null;index" json:"tenant_id"`
	ActorID    snowflake.ID      `gorm:"index" json:"actor_id"`
	ActorEmail string            `json:"actor_email,omitempty"`
	Action     string            `gorm:"not null;index" json:"action"`
	Resource   string            `gorm:"not null;index" json:"resource"`
	ResourceID string            `json:"resource_id,omitempty"`
	Detail     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"detail,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	IPAddress  string            `json:"ip_address,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
