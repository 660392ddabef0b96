package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	appdomain "github.com/smallbiznis/tessera/internal/application/domain"
	apprepository "github.com/smallbiznis/tessera/internal/application/repository"
	"github.com/smallbiznis/tessera/internal/config"
	"github.com/smallbiznis/tessera/internal/license/domain"
	"github.com/smallbiznis/tessera/internal/license/repository"
	userdomain "github.com/smallbiznis/tessera/internal/user/domain"
	userrepository "github.com/smallbiznis/tessera/internal/user/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type licenseFixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func setupLicenseService(t *testing.T) licenseFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.License{},
		&domain.SeatAssignment{},
		&appdomain.Application{},
		&userdomain.User{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		AppRepo:  apprepository.Provide(),
		UserRepo: userrepository.Provide(),
		Platform: config.NewStaticPlatformConfigHolder(config.DefaultPlatformConfig()),
	})
	return licenseFixture{svc: svc, db: db, node: node}
}

func (f licenseFixture) createApplication(t *testing.T, status appdomain.ApplicationStatus) appdomain.Application {
	t.Helper()
	app := appdomain.Application{
		ID:     f.node.Generate(),
		Code:   fmt.Sprintf("app-%d", f.node.Generate()),
		Name:   "Test Application",
		Status: status,
	}
	require.NoError(t, f.db.Create(&app).Error)
	return app
}

func (f licenseFixture) createUser(t *testing.T, tenantID snowflake.ID, email string) userdomain.User {
	t.Helper()
	user := userdomain.User{
		ID:       f.node.Generate(),
		TenantID: tenantID,
		Email:    email,
		Name:     "Test User",
		Role:     userdomain.RoleMember,
		Status:   userdomain.UserActive,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func TestActivateLicense(t *testing.T) {
	f := setupLicenseService(t)
	ctx := context.Background()
	tenantID := f.node.Generate()
	app := f.createApplication(t, appdomain.ApplicationActive)

	// Zero seat limit falls back to the platform default.
	license, err := f.svc.Activate(ctx, domain.ActivateLicenseRequest{
		TenantID:      tenantID.String(),
		ApplicationID: app.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, config.DefaultPlatformConfig().DefaultSeatLimit, license.SeatLimit)
	require.Equal(t, domain.LicenseActive, license.Status)

	_, err = f.svc.Activate(ctx, domain.ActivateLicenseRequest{
		TenantID:      tenantID.String(),
		ApplicationID: app.ID.String(),
	})
	require.ErrorIs(t, err, domain.ErrLicenseExists)
}

func TestActivateLicenseValidation(t *testing.T) {
	f := setupLicenseService(t)
	ctx := context.Background()
	tenantID := f.node.Generate()

	retired := f.createApplication(t, appdomain.ApplicationRetired)
	_, err := f.svc.Activate(ctx, domain.ActivateLicenseRequest{
		TenantID:      tenantID.String(),
		ApplicationID: retired.ID.String(),
	})
	require.ErrorIs(t, err, domain.ErrInvalidApplication)

	active := f.createApplication(t, appdomain.ApplicationActive)
	_, err = f.svc.Activate(ctx, domain.ActivateLicenseRequest{
		TenantID:      tenantID.String(),
		ApplicationID: active.ID.String(),
		SeatLimit:     config.DefaultPlatformConfig().MaxSeatLimit + 1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidSeatLimit)
}

func TestGrantSeatLifecycle(t *testing.T) {
	f := setupLicenseService(t)
	ctx := context.Background()
	tenantID := f.node.Generate()
	app := f.createApplication(t, appdomain.ApplicationActive)
	alice := f.createUser(t, tenantID, "alice@example.com")
	bob := f.createUser(t, tenantID, "bob@example.com")

	license, err := f.svc.Activate(ctx, domain.ActivateLicenseRequest{
		TenantID:      tenantID.String(),
		ApplicationID: app.ID.String(),
		SeatLimit:     1,
	})
	require.NoError(t, err)

	seat, err := f.svc.GrantSeat(ctx, domain.GrantSeatRequest{
		TenantID:  tenantID.String(),
		LicenseID: license.ID.String(),
		UserID:    alice.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, alice.ID, seat.UserID)

	// Same user again.
	_, err = f.svc.GrantSeat(ctx, domain.GrantSeatRequest{
		TenantID:  tenantID.String(),
		LicenseID: license.ID.String(),
		UserID:    alice.ID.String(),
	})
	require.ErrorIs(t, err, domain.ErrAlreadyLicensed)

	// License is full.
	_, err = f.svc.GrantSeat(ctx, domain.GrantSeatRequest{
		TenantID:  tenantID.String(),
		LicenseID: license.ID.String(),
		UserID:    bob.ID.String(),
	})
	require.ErrorIs(t, err, domain.ErrNoSeatsAvailable)

	// Revoking frees the seat for the next grant.
	require.NoError(t, f.svc.RevokeSeat(ctx, domain.RevokeSeatRequest{
		TenantID:  tenantID.String(),
		LicenseID: license.ID.String(),
		UserID:    alice.ID.String(),
	}))

	_, err = f.svc.GrantSeat(ctx, domain.GrantSeatRequest{
		TenantID:  tenantID.String(),
		LicenseID: license.ID.String(),
		UserID:    bob.ID.String(),
	})
	require.NoError(t, err)

	usage, err := f.svc.GetByID(ctx, domain.GetLicenseRequest{
		TenantID: tenantID.String(),
		ID:       license.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), usage.SeatsUsed)
}

func TestGrantSeatSuspendedLicense(t *testing.T) {
	f := setupLicenseService(t)
	ctx := context.Background()
	tenantID := f.node.Generate()
	app := f.createApplication(t, appdomain.ApplicationActive)
	alice := f.createUser(t, tenantID, "alice@example.com")

	license, err := f.svc.Activate(ctx, domain.ActivateLicenseRequest{
		TenantID:      tenantID.String(),
		ApplicationID: app.ID.String(),
		SeatLimit:     5,
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, domain.UpdateLicenseRequest{
		TenantID: tenantID.String(),
		ID:       license.ID.String(),
		Status:   "suspended",
	})
	require.NoError(t, err)

	_, err = f.svc.GrantSeat(ctx, domain.GrantSeatRequest{
		TenantID:  tenantID.String(),
		LicenseID: license.ID.String(),
		UserID:    alice.ID.String(),
	})
	require.ErrorIs(t, err, domain.ErrLicenseSuspended)
}

func TestUpdateLicenseSeatLimitTooLow(t *testing.T) {
	f := setupLicenseService(t)
	ctx := context.Background()
	tenantID := f.node.Generate()
	app := f.createApplication(t, appdomain.ApplicationActive)
	alice := f.createUser(t, tenantID, "alice@example.com")
	bob := f.createUser(t, tenantID, "bob@example.com")

	license, err := f.svc.Activate(ctx, domain.ActivateLicenseRequest{
		TenantID:      tenantID.String(),
		ApplicationID: app.ID.String(),
		SeatLimit:     2,
	})
	require.NoError(t, err)

	for _, user := range []userdomain.User{alice, bob} {
		_, err = f.svc.GrantSeat(ctx, domain.GrantSeatRequest{
			TenantID:  tenantID.String(),
			LicenseID: license.ID.String(),
			UserID:    user.ID.String(),
		})
		require.NoError(t, err)
	}

	_, err = f.svc.Update(ctx, domain.UpdateLicenseRequest{
		TenantID:  tenantID.String(),
		ID:        license.ID.String(),
		SeatLimit: 1,
	})
	require.ErrorIs(t, err, domain.ErrSeatLimitTooLow)

	updated, err := f.svc.Update(ctx, domain.UpdateLicenseRequest{
		TenantID:  tenantID.String(),
		ID:        license.ID.String(),
		SeatLimit: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 3, updated.SeatLimit)
}
