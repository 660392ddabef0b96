package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/pkg/db/option"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, name, slug, status, tags, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.Name,
		tenant.Slug,
		tenant.Status,
		tenant.Tags,
		tenant.Metadata,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants SET name = ?, status = ?, tags = ?, updated_at = ? WHERE id = ?`,
		tenant.Name,
		tenant.Status,
		tenant.Tags,
		tenant.UpdatedAt,
		tenant.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, status, tags, metadata, created_at, updated_at
		 FROM tenants WHERE id = ?`,
		id,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, status, tags, metadata, created_at, updated_at
		 FROM tenants WHERE slug = ?`,
		strings.TrimSpace(slug),
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListTenantFilter, page pagination.Pagination) ([]*domain.Tenant, error) {
	var tenants []*domain.Tenant
	stmt := db.WithContext(ctx).Model(&domain.Tenant{})
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) ListAddresses(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.TenantAddress, error) {
	var addresses []domain.TenantAddress
	err := db.WithContext(ctx).
		Model(&domain.TenantAddress{}).
		Where("tenant_id = ?", tenantID).
		Order("created_at asc, id asc").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *repo) InsertAddresses(ctx context.Context, db *gorm.DB, addresses []domain.TenantAddress) error {
	if len(addresses) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&addresses).Error
}

func (r *repo) UpdateAddress(ctx context.Context, db *gorm.DB, address *domain.TenantAddress) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE tenant_addresses
		 SET type = ?, line1 = ?, line2 = ?, city = ?, region = ?, postal_code = ?, country_code = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		address.Type,
		address.Line1,
		address.Line2,
		address.City,
		address.Region,
		address.PostalCode,
		address.CountryCode,
		address.UpdatedAt,
		address.TenantID,
		address.ID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) DeleteAddresses(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM tenant_addresses WHERE tenant_id = ? AND id IN ?`,
		tenantID,
		ids,
	).Error
}

func (r *repo) ListContacts(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.TenantContact, error) {
	var contacts []domain.TenantContact
	err := db.WithContext(ctx).
		Model(&domain.TenantContact{}).
		Where("tenant_id = ?", tenantID).
		Order("created_at asc, id asc").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *repo) InsertContacts(ctx context.Context, db *gorm.DB, contacts []domain.TenantContact) error {
	if len(contacts) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&contacts).Error
}

func (r *repo) UpdateContact(ctx context.Context, db *gorm.DB, contact *domain.TenantContact) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE tenant_contacts
		 SET name = ?, email = ?, phone = ?, role = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Role,
		contact.UpdatedAt,
		contact.TenantID,
		contact.ID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) DeleteContacts(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM tenant_contacts WHERE tenant_id = ? AND id IN ?`,
		tenantID,
		ids,
	).Error
}
