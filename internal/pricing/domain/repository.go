package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, period *PricingPeriod) error
	FindByID(ctx context.Context, db *gorm.DB, applicationID, id snowflake.ID) (*PricingPeriod, error)
	ListByApplication(ctx context.Context, db *gorm.DB, applicationID snowflake.ID, filter ListPricingFilter) ([]PricingPeriod, error)
	// ListActiveByUserType loads the active periods of one user type,
	// locked for update where the dialect supports it.
	ListActiveByUserType(ctx context.Context, db *gorm.DB, userTypeID snowflake.ID) ([]PricingPeriod, error)
	// EndDate writes the period's scheduled end. active is false when the
	// end collapses the period to an empty interval.
	EndDate(ctx context.Context, db *gorm.DB, id snowflake.ID, validTo, updatedAt time.Time, active bool) error
}
