package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type User struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID     snowflake.ID      `gorm:"not null;index:idx_users_tenant_email,unique" json:"tenant_id"`
	Email        string            `gorm:"not null;index:idx_users_tenant_email,unique" json:"email"`
	Name         string            `gorm:"not null" json:"name"`
	Role         Role              `gorm:"not null;default:'member'" json:"role"`
	Status       UserStatus        `gorm:"not null;default:'active'" json:"status"`
	PasswordHash string            `gorm:"column:password_hash" json:"-"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
