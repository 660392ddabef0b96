package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Application struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Code        string            `gorm:"not null;uniqueIndex" json:"code"`
	Name        string            `gorm:"not null" json:"name"`
	Description string            `json:"description,omitempty"`
	Status      ApplicationStatus `gorm:"not null;default:'active'" json:"status"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// UserType is a licensable tier of an application. Pricing periods
// reference user types, not applications directly.
type UserType struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ApplicationID snowflake.ID `gorm:"not null;index:idx_user_types_app_code,unique" json:"application_id"`
	Code          string       `gorm:"not null;index:idx_user_types_app_code,unique" json:"code"`
	Name          string       `gorm:"not null" json:"name"`
	Rank          int          `gorm:"not null;default:0" json:"rank"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
