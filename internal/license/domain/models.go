package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// License is a tenant's activation of an application with a seat budget.
type License struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID  `gorm:"not null;index:idx_licenses_tenant_app,unique" json:"tenant_id"`
	ApplicationID snowflake.ID  `gorm:"not null;index:idx_licenses_tenant_app,unique" json:"application_id"`
	SeatLimit     int           `gorm:"not null" json:"seat_limit"`
	Status        LicenseStatus `gorm:"not null;default:'active'" json:"status"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SeatAssignment consumes one seat of a license for one user.
type SeatAssignment struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	LicenseID  snowflake.ID `gorm:"not null;index:idx_seats_license_user,unique" json:"license_id"`
	UserID     snowflake.ID `gorm:"not null;index:idx_seats_license_user,unique" json:"user_id"`
	UserTypeID snowflake.ID `gorm:"index" json:"user_type_id,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
