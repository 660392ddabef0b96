package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quota *TenantQuota) error
	Update(ctx context.Context, db *gorm.DB, quota *TenantQuota) error
	FindByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*TenantQuota, error)
	// FindByTenantForUpdate locks the row where the dialect supports
	// it, serializing concurrent usage updates.
	FindByTenantForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*TenantQuota, error)
}
