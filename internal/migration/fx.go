package migration

import (
	"github.com/smallbiznis/tessera/internal/config"
	"github.com/smallbiznis/tessera/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.DefaultTenantID != 0 {
			if err := seed.EnsureDefaultTenantWithID(conn, cfg.DefaultTenantID); err != nil {
				return err
			}
		} else {
			if err := seed.EnsureDefaultTenant(conn); err != nil {
				return err
			}
		}
		if cfg.Bootstrap.EnsureDefaultTenantAndAdmin {
			return seed.EnsureDefaultTenantAndAdmin(conn, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		}
		return nil
	}),
)
