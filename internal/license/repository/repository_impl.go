package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/license/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, license *domain.License) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO licenses (id, tenant_id, application_id, seat_limit, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		license.ID,
		license.TenantID,
		license.ApplicationID,
		license.SeatLimit,
		license.Status,
		license.CreatedAt,
		license.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, license *domain.License) error {
	return db.WithContext(ctx).Exec(
		`UPDATE licenses SET seat_limit = ?, status = ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		license.SeatLimit,
		license.Status,
		license.UpdatedAt,
		license.TenantID,
		license.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.License, error) {
	return r.findOne(ctx, db, tenantID, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.License, error) {
	return r.findOne(ctx, db, tenantID, id, true)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, lock bool) (*domain.License, error) {
	var license domain.License
	stmt := db.WithContext(ctx).
		Model(&domain.License{}).
		Where("tenant_id = ? AND id = ?", tenantID, id)
	if lock && db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := stmt.Find(&license).Error
	if err != nil {
		return nil, err
	}
	if license.ID == 0 {
		return nil, nil
	}
	return &license, nil
}

func (r *repo) FindByApplication(ctx context.Context, db *gorm.DB, tenantID, applicationID snowflake.ID) (*domain.License, error) {
	var license domain.License
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, application_id, seat_limit, status, created_at, updated_at
		 FROM licenses WHERE tenant_id = ? AND application_id = ?`,
		tenantID,
		applicationID,
	).Scan(&license).Error
	if err != nil {
		return nil, err
	}
	if license.ID == 0 {
		return nil, nil
	}
	return &license, nil
}

func (r *repo) ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.License, error) {
	var licenses []domain.License
	err := db.WithContext(ctx).
		Model(&domain.License{}).
		Where("tenant_id = ?", tenantID).
		Order("created_at asc, id asc").
		Find(&licenses).Error
	if err != nil {
		return nil, err
	}
	return licenses, nil
}

func (r *repo) CountSeats(ctx context.Context, db *gorm.DB, licenseID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.SeatAssignment{}).
		Where("license_id = ?", licenseID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) FindSeat(ctx context.Context, db *gorm.DB, licenseID, userID snowflake.ID) (*domain.SeatAssignment, error) {
	var seat domain.SeatAssignment
	err := db.WithContext(ctx).Raw(
		`SELECT id, license_id, user_id, user_type_id, created_at
		 FROM seat_assignments WHERE license_id = ? AND user_id = ?`,
		licenseID,
		userID,
	).Scan(&seat).Error
	if err != nil {
		return nil, err
	}
	if seat.ID == 0 {
		return nil, nil
	}
	return &seat, nil
}

func (r *repo) InsertSeat(ctx context.Context, db *gorm.DB, seat *domain.SeatAssignment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO seat_assignments (id, license_id, user_id, user_type_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		seat.ID,
		seat.LicenseID,
		seat.UserID,
		seat.UserTypeID,
		seat.CreatedAt,
	).Error
}

func (r *repo) DeleteSeat(ctx context.Context, db *gorm.DB, licenseID, userID snowflake.ID) error {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM seat_assignments WHERE license_id = ? AND user_id = ?`,
		licenseID,
		userID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) ListSeats(ctx context.Context, db *gorm.DB, licenseID snowflake.ID) ([]domain.SeatAssignment, error) {
	var seats []domain.SeatAssignment
	err := db.WithContext(ctx).
		Model(&domain.SeatAssignment{}).
		Where("license_id = ?", licenseID).
		Order("created_at asc, id asc").
		Find(&seats).Error
	if err != nil {
		return nil, err
	}
	return seats, nil
}
