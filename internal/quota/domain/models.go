package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TenantQuota is a tenant's transcription quota assignment: the plan it
// is on plus the minutes consumed in the current period.
type TenantQuota struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID `gorm:"not null;uniqueIndex" json:"tenant_id"`
	PlanCode        string       `gorm:"not null" json:"plan_code"`
	IncludedMinutes int          `gorm:"not null" json:"included_minutes"`
	OveragePolicy   string       `gorm:"not null" json:"overage_policy"`
	UsedMinutes     int64        `gorm:"not null;default:0" json:"used_minutes"`
	PeriodStart     time.Time    `gorm:"not null" json:"period_start"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Unlimited reports whether the plan carries no minute cap.
func (q TenantQuota) Unlimited() bool { return q.IncludedMinutes == 0 }
