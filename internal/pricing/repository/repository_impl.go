package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/pricing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, period *domain.PricingPeriod) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO pricing_periods (id, application_id, user_type_id, amount_cents, currency, valid_from, valid_to, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		period.ID,
		period.ApplicationID,
		period.UserTypeID,
		period.AmountCents,
		period.Currency,
		period.ValidFrom,
		period.ValidTo,
		period.Active,
		period.CreatedAt,
		period.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, applicationID, id snowflake.ID) (*domain.PricingPeriod, error) {
	var period domain.PricingPeriod
	err := db.WithContext(ctx).Raw(
		`SELECT id, application_id, user_type_id, amount_cents, currency, valid_from, valid_to, active, created_at, updated_at
		 FROM pricing_periods WHERE application_id = ? AND id = ?`,
		applicationID,
		id,
	).Scan(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, nil
	}
	return &period, nil
}

func (r *repo) ListByApplication(ctx context.Context, db *gorm.DB, applicationID snowflake.ID, filter domain.ListPricingFilter) ([]domain.PricingPeriod, error) {
	var periods []domain.PricingPeriod
	stmt := db.WithContext(ctx).
		Model(&domain.PricingPeriod{}).
		Where("application_id = ?", applicationID)
	if filter.UserTypeID != 0 {
		stmt = stmt.Where("user_type_id = ?", filter.UserTypeID)
	}
	if filter.CurrentAt != nil {
		stmt = stmt.
			Where("active = ?", true).
			Where("valid_from <= ?", *filter.CurrentAt).
			Where("valid_to IS NULL OR valid_to > ?", *filter.CurrentAt)
	}
	err := stmt.
		Order("user_type_id asc, valid_from asc").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *repo) ListActiveByUserType(ctx context.Context, db *gorm.DB, userTypeID snowflake.ID) ([]domain.PricingPeriod, error) {
	var periods []domain.PricingPeriod
	stmt := db.WithContext(ctx).
		Model(&domain.PricingPeriod{}).
		Where("user_type_id = ?", userTypeID).
		Where("active = ?", true)
	// sqlite has no row locks; everything else takes FOR UPDATE so
	// concurrent creates serialize on the user type's rows.
	if db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := stmt.
		Order("valid_from asc").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *repo) EndDate(ctx context.Context, db *gorm.DB, id snowflake.ID, validTo, updatedAt time.Time, active bool) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE pricing_periods SET valid_to = ?, active = ?, updated_at = ? WHERE id = ?`,
		validTo,
		active,
		updatedAt,
		id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
