package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	userdomain "github.com/smallbiznis/tessera/internal/user/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultTenantName = "Main"
	defaultTenantSlug = "main"
	defaultAdminName  = "Tessera Admin"
)

// EnsureDefaultTenant seeds the default tenant so the console is
// usable immediately after a fresh install.
func EnsureDefaultTenant(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureDefaultTenantTx(ctx, tx, node)
		return err
	})
}

// EnsureDefaultTenantWithID seeds the default tenant with a fixed ID,
// used when DEFAULT_TENANT pins the bootstrap tenant.
func EnsureDefaultTenantWithID(db *gorm.DB, id int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant tenantdomain.Tenant
		err := tx.WithContext(ctx).Where("id = ?", id).First(&tenant).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		now := time.Now().UTC()
		tenant = tenantdomain.Tenant{
			ID:        snowflake.ID(id),
			Name:      defaultTenantName,
			Slug:      defaultTenantSlug,
			Status:    tenantdomain.TenantActive,
			Metadata:  datatypes.JSONMap{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.WithContext(ctx).Create(&tenant).Error
	})
}

// EnsureDefaultTenantAndAdmin seeds the default tenant and an owner
// account for self-hosted installs. The admin password comes from
// bootstrap configuration; an empty password leaves the account in the
// invited state so it cannot log in until one is set.
func EnsureDefaultTenantAndAdmin(db *gorm.DB, adminEmail, adminPassword string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))
	if adminEmail == "" {
		return errors.New("bootstrap admin email is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := ensureDefaultTenantTx(ctx, tx, node)
		if err != nil {
			return err
		}

		var user userdomain.User
		err = tx.WithContext(ctx).
			Where("tenant_id = ? AND email = ?", tenant.ID, adminEmail).
			First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		status := userdomain.UserInvited
		hash := ""
		if adminPassword != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			hash = string(hashed)
			status = userdomain.UserActive
		}

		now := time.Now().UTC()
		user = userdomain.User{
			ID:           node.Generate(),
			TenantID:     tenant.ID,
			Email:        adminEmail,
			Name:         defaultAdminName,
			Role:         userdomain.RoleOwner,
			Status:       status,
			PasswordHash: hash,
			Metadata:     datatypes.JSONMap{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}

func ensureDefaultTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	err := tx.WithContext(ctx).Where("slug = ?", defaultTenantSlug).First(&tenant).Error
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tenant, err
	}

	now := time.Now().UTC()
	tenant = tenantdomain.Tenant{
		ID:        node.Generate(),
		Name:      defaultTenantName,
		Slug:      defaultTenantSlug,
		Status:    tenantdomain.TenantActive,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&tenant).Error; err != nil {
		return tenant, err
	}
	return tenant, nil
}
