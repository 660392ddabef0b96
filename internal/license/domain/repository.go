package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, license *License) error
	Update(ctx context.Context, db *gorm.DB, license *License) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*License, error)
	// FindByIDForUpdate locks the license row where the dialect
	// supports it, serializing concurrent seat mutations.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*License, error)
	FindByApplication(ctx context.Context, db *gorm.DB, tenantID, applicationID snowflake.ID) (*License, error)
	ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]License, error)

	CountSeats(ctx context.Context, db *gorm.DB, licenseID snowflake.ID) (int64, error)
	FindSeat(ctx context.Context, db *gorm.DB, licenseID, userID snowflake.ID) (*SeatAssignment, error)
	InsertSeat(ctx context.Context, db *gorm.DB, seat *SeatAssignment) error
	DeleteSeat(ctx context.Context, db *gorm.DB, licenseID, userID snowflake.ID) error
	ListSeats(ctx context.Context, db *gorm.DB, licenseID snowflake.ID) ([]SeatAssignment, error)
}
