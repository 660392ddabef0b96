package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/application/domain"
	"github.com/smallbiznis/tessera/pkg/db/option"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, application *domain.Application) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO applications (id, code, name, description, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		application.ID,
		application.Code,
		application.Name,
		application.Description,
		application.Status,
		application.Metadata,
		application.CreatedAt,
		application.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, application *domain.Application) error {
	return db.WithContext(ctx).Exec(
		`UPDATE applications SET name = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		application.Name,
		application.Description,
		application.Status,
		application.UpdatedAt,
		application.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Application, error) {
	var application domain.Application
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, description, status, metadata, created_at, updated_at
		 FROM applications WHERE id = ?`,
		id,
	).Scan(&application).Error
	if err != nil {
		return nil, err
	}
	if application.ID == 0 {
		return nil, nil
	}
	return &application, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Application, error) {
	var application domain.Application
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, description, status, metadata, created_at, updated_at
		 FROM applications WHERE code = ?`,
		strings.TrimSpace(code),
	).Scan(&application).Error
	if err != nil {
		return nil, err
	}
	if application.ID == 0 {
		return nil, nil
	}
	return &application, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListApplicationFilter, page pagination.Pagination) ([]*domain.Application, error) {
	var applications []*domain.Application
	stmt := db.WithContext(ctx).Model(&domain.Application{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *repo) InsertUserType(ctx context.Context, db *gorm.DB, userType *domain.UserType) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO user_types (id, application_id, code, name, rank, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userType.ID,
		userType.ApplicationID,
		userType.Code,
		userType.Name,
		userType.Rank,
		userType.CreatedAt,
		userType.UpdatedAt,
	).Error
}

func (r *repo) FindUserTypeByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.UserType, error) {
	var userType domain.UserType
	err := db.WithContext(ctx).Raw(
		`SELECT id, application_id, code, name, rank, created_at, updated_at
		 FROM user_types WHERE id = ?`,
		id,
	).Scan(&userType).Error
	if err != nil {
		return nil, err
	}
	if userType.ID == 0 {
		return nil, nil
	}
	return &userType, nil
}

func (r *repo) ListUserTypes(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) ([]domain.UserType, error) {
	var userTypes []domain.UserType
	err := db.WithContext(ctx).
		Model(&domain.UserType{}).
		Where("application_id = ?", applicationID).
		Order("rank asc, created_at asc").
		Find(&userTypes).Error
	if err != nil {
		return nil, err
	}
	return userTypes, nil
}
