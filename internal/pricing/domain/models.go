package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PricingPeriod is one row of an application's pricing matrix: the price
// of a user type over a half-open validity interval [ValidFrom, ValidTo).
// A nil ValidTo means open-ended. Periods are never physically deleted;
// end-dating is the only mutation after creation.
type PricingPeriod struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ApplicationID snowflake.ID `gorm:"not null;index" json:"application_id"`
	UserTypeID    snowflake.ID `gorm:"not null;index" json:"user_type_id"`
	AmountCents   int64        `gorm:"not null" json:"amount_cents"`
	Currency      string       `gorm:"not null;default:'USD'" json:"currency"`
	ValidFrom     time.Time    `gorm:"not null" json:"valid_from"`
	ValidTo       *time.Time   `json:"valid_to,omitempty"`
	Active        bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// OpenEnded reports whether the period has no scheduled end.
func (p PricingPeriod) OpenEnded() bool { return p.ValidTo == nil }

// CurrentAt reports whether the period covers the given instant.
func (p PricingPeriod) CurrentAt(at time.Time) bool {
	if !p.Active {
		return false
	}
	if at.Before(p.ValidFrom) {
		return false
	}
	return p.ValidTo == nil || at.Before(*p.ValidTo)
}
