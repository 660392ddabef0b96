package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Session is a server-side login session referenced by an opaque cookie
// token.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Token     string       `gorm:"not null;uniqueIndex" json:"-"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	TenantID  snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.After(at)
}
