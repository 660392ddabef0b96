package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Tenant struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"not null" json:"name"`
	Slug      string            `gorm:"not null;uniqueIndex" json:"slug"`
	Status    TenantStatus      `gorm:"not null;default:'active'" json:"status"`
	Tags      pq.StringArray    `gorm:"type:text[]" json:"tags,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type TenantAddress struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	Type        AddressType  `gorm:"not null;default:'billing'" json:"type"`
	Line1       string       `gorm:"not null" json:"line1"`
	Line2       string       `json:"line2,omitempty"`
	City        string       `gorm:"not null" json:"city"`
	Region      string       `json:"region,omitempty"`
	PostalCode  string       `json:"postal_code,omitempty"`
	CountryCode string       `gorm:"not null" json:"country_code"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// DiffID exposes the durable identifier for batch diffing.
func (a TenantAddress) DiffID() int64 { return int64(a.ID) }

type TenantContact struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	Name      string       `gorm:"not null" json:"name"`
	Email     string       `gorm:"not null" json:"email"`
	Phone     string       `json:"phone,omitempty"`
	Role      string       `json:"role,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// DiffID exposes the durable identifier for batch diffing.
func (c TenantContact) DiffID() int64 { return int64(c.ID) }
