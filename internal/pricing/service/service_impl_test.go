package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	appdomain "github.com/smallbiznis/tessera/internal/application/domain"
	apprepository "github.com/smallbiznis/tessera/internal/application/repository"
	"github.com/smallbiznis/tessera/internal/config"
	"github.com/smallbiznis/tessera/internal/pricing/domain"
	"github.com/smallbiznis/tessera/internal/pricing/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type pricingFixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func setupPricingService(t *testing.T) pricingFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.PricingPeriod{},
		&appdomain.Application{},
		&appdomain.UserType{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		AppRepo:  apprepository.Provide(),
		Platform: config.NewStaticPlatformConfigHolder(config.DefaultPlatformConfig()),
	})
	return pricingFixture{svc: svc, db: db, node: node}
}

func (f pricingFixture) createUserType(t *testing.T) (appdomain.Application, appdomain.UserType) {
	t.Helper()
	app := appdomain.Application{
		ID:     f.node.Generate(),
		Code:   fmt.Sprintf("app-%d", f.node.Generate()),
		Name:   "Test Application",
		Status: appdomain.ApplicationActive,
	}
	require.NoError(t, f.db.Create(&app).Error)

	userType := appdomain.UserType{
		ID:            f.node.Generate(),
		ApplicationID: app.ID,
		Code:          "standard",
		Name:          "Standard",
	}
	require.NoError(t, f.db.Create(&userType).Error)
	return app, userType
}

func TestCreatePricingOverlapConflict(t *testing.T) {
	f := setupPricingService(t)
	ctx := context.Background()
	app, userType := f.createUserType(t)
	start := time.Now().UTC()

	first, err := f.svc.Create(ctx, domain.CreatePricingRequest{
		ApplicationID: app.ID.String(),
		UserTypeID:    userType.ID.String(),
		AmountCents:   1000,
		Currency:      "USD",
		ValidFrom:     start,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.CreatePricingRequest{
		ApplicationID: app.ID.String(),
		UserTypeID:    userType.ID.String(),
		AmountCents:   2000,
		Currency:      "USD",
		ValidFrom:     start.AddDate(0, 0, 30),
	})
	var overlap *domain.OverlapError
	require.ErrorAs(t, err, &overlap)
	require.Equal(t, first.ID, overlap.Existing.ID)
}

func TestEndFuturePeriodThenReschedule(t *testing.T) {
	f := setupPricingService(t)
	ctx := context.Background()
	app, userType := f.createUserType(t)
	futureStart := time.Now().UTC().AddDate(0, 0, 10)

	scheduled, err := f.svc.Create(ctx, domain.CreatePricingRequest{
		ApplicationID: app.ID.String(),
		UserTypeID:    userType.ID.String(),
		AmountCents:   1000,
		Currency:      "USD",
		ValidFrom:     futureStart,
	})
	require.NoError(t, err)

	// Ending before the start collapses the period to [ValidFrom,
	// ValidFrom) and deactivates it.
	ended, err := f.svc.End(ctx, domain.EndPricingRequest{
		ApplicationID: app.ID.String(),
		PeriodID:      scheduled.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, ended.ValidTo)
	require.True(t, ended.ValidTo.Equal(ended.ValidFrom))
	require.False(t, ended.Active)

	var stored domain.PricingPeriod
	require.NoError(t, f.db.First(&stored, "id = ?", scheduled.ID).Error)
	require.False(t, stored.Active)

	// A replacement spanning the collapsed period's start must not
	// trip the overlap check.
	replacement, err := f.svc.Create(ctx, domain.CreatePricingRequest{
		ApplicationID: app.ID.String(),
		UserTypeID:    userType.ID.String(),
		AmountCents:   1500,
		Currency:      "USD",
		ValidFrom:     time.Now().UTC(),
	})
	require.NoError(t, err)
	require.True(t, replacement.Active)

	// The collapsed period cannot be ended twice.
	_, err = f.svc.End(ctx, domain.EndPricingRequest{
		ApplicationID: app.ID.String(),
		PeriodID:      scheduled.ID.String(),
	})
	require.ErrorIs(t, err, domain.ErrAlreadyEnded)
}

func TestEndRunningPeriodStaysActive(t *testing.T) {
	f := setupPricingService(t)
	ctx := context.Background()
	app, userType := f.createUserType(t)
	start := time.Now().UTC().AddDate(0, 0, -10)

	running, err := f.svc.Create(ctx, domain.CreatePricingRequest{
		ApplicationID: app.ID.String(),
		UserTypeID:    userType.ID.String(),
		AmountCents:   1000,
		Currency:      "USD",
		ValidFrom:     start,
	})
	require.NoError(t, err)

	ended, err := f.svc.End(ctx, domain.EndPricingRequest{
		ApplicationID: app.ID.String(),
		PeriodID:      running.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, ended.ValidTo)
	require.True(t, ended.ValidTo.After(ended.ValidFrom))
	require.True(t, ended.Active)

	// The ended history row still blocks a candidate over its range.
	_, err = f.svc.Create(ctx, domain.CreatePricingRequest{
		ApplicationID: app.ID.String(),
		UserTypeID:    userType.ID.String(),
		AmountCents:   2000,
		Currency:      "USD",
		ValidFrom:     start.AddDate(0, 0, 5),
		ValidTo:       func() *time.Time { v := start.AddDate(0, 0, 6); return &v }(),
	})
	var overlap *domain.OverlapError
	require.ErrorAs(t, err, &overlap)
}
