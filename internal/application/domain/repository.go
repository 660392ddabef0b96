package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, application *Application) error
	Update(ctx context.Context, db *gorm.DB, application *Application) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Application, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Application, error)
	List(ctx context.Context, db *gorm.DB, filter ListApplicationFilter, page pagination.Pagination) ([]*Application, error)

	InsertUserType(ctx context.Context, db *gorm.DB, userType *UserType) error
	FindUserTypeByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*UserType, error)
	ListUserTypes(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) ([]UserType, error)
}
