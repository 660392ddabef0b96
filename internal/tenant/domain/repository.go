package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	Update(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB, filter ListTenantFilter, page pagination.Pagination) ([]*Tenant, error)

	ListAddresses(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]TenantAddress, error)
	InsertAddresses(ctx context.Context, db *gorm.DB, addresses []TenantAddress) error
	UpdateAddress(ctx context.Context, db *gorm.DB, address *TenantAddress) error
	DeleteAddresses(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ids []int64) error

	ListContacts(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]TenantContact, error)
	InsertContacts(ctx context.Context, db *gorm.DB, contacts []TenantContact) error
	UpdateContact(ctx context.Context, db *gorm.DB, contact *TenantContact) error
	DeleteContacts(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ids []int64) error
}
