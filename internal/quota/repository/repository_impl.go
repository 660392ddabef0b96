package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/quota/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quota *domain.TenantQuota) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenant_quotas (id, tenant_id, plan_code, included_minutes, overage_policy, used_minutes, period_start, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quota.ID,
		quota.TenantID,
		quota.PlanCode,
		quota.IncludedMinutes,
		quota.OveragePolicy,
		quota.UsedMinutes,
		quota.PeriodStart,
		quota.CreatedAt,
		quota.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, quota *domain.TenantQuota) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenant_quotas
		 SET plan_code = ?, included_minutes = ?, overage_policy = ?, used_minutes = ?, period_start = ?, updated_at = ?
		 WHERE tenant_id = ?`,
		quota.PlanCode,
		quota.IncludedMinutes,
		quota.OveragePolicy,
		quota.UsedMinutes,
		quota.PeriodStart,
		quota.UpdatedAt,
		quota.TenantID,
	).Error
}

func (r *repo) FindByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*domain.TenantQuota, error) {
	return r.findOne(ctx, db, tenantID, false)
}

func (r *repo) FindByTenantForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*domain.TenantQuota, error) {
	return r.findOne(ctx, db, tenantID, true)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, lock bool) (*domain.TenantQuota, error) {
	var quota domain.TenantQuota
	stmt := db.WithContext(ctx).
		Model(&domain.TenantQuota{}).
		Where("tenant_id = ?", tenantID)
	if lock && db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := stmt.Find(&quota).Error
	if err != nil {
		return nil, err
	}
	if quota.ID == 0 {
		return nil, nil
	}
	return &quota, nil
}
