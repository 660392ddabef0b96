package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/internal/tenant/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTenantService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Tenant{}, &domain.TenantAddress{}, &domain.TenantContact{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func TestCreateTenantGeneratesSlug(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	tenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Acme Health"})
	require.NoError(t, err)
	require.Equal(t, "acme-health", tenant.Slug)
	require.Equal(t, domain.TenantActive, tenant.Status)

	// Same name again: auto slug gets a numeric suffix.
	second, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Acme Health"})
	require.NoError(t, err)
	require.Equal(t, "acme-health-2", second.Slug)
}

func TestCreateTenantRequestedSlugConflict(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "First", Slug: "shared"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateTenantRequest{Name: "Second", Slug: "shared"})
	require.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestSaveAddressesDiffBatches(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	tenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Diff Tenant"})
	require.NoError(t, err)

	// Initial submission: placeholder IDs count as absent, both rows
	// are creates.
	saved, err := svc.SaveAddresses(ctx, domain.SaveAddressesRequest{
		TenantID: tenant.ID.String(),
		Addresses: []domain.AddressInput{
			{ID: "tmp-a", Type: "billing", Line1: "1 Main St", City: "Springfield", CountryCode: "us"},
			{ID: "tmp-b", Type: "shipping", Line1: "2 Dock Rd", City: "Springfield", CountryCode: "us"},
		},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	require.NotZero(t, saved[0].ID)
	require.Equal(t, "US", saved[0].CountryCode)

	var billing, shipping domain.TenantAddress
	for _, a := range saved {
		switch a.Type {
		case domain.AddressBilling:
			billing = a
		case domain.AddressShipping:
			shipping = a
		}
	}
	require.NotZero(t, billing.ID)
	require.NotZero(t, shipping.ID)

	// Second submission: billing updated in place, shipping dropped,
	// one new office address.
	saved, err = svc.SaveAddresses(ctx, domain.SaveAddressesRequest{
		TenantID: tenant.ID.String(),
		Addresses: []domain.AddressInput{
			{ID: billing.ID.String(), Type: "billing", Line1: "10 New Main St", City: "Springfield", CountryCode: "US"},
			{ID: "tmp-c", Type: "office", Line1: "3 Office Park", City: "Shelbyville", CountryCode: "US"},
		},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	byID := map[snowflake.ID]domain.TenantAddress{}
	for _, a := range saved {
		byID[a.ID] = a
	}
	updated, ok := byID[billing.ID]
	require.True(t, ok, "updated row keeps its durable id")
	require.Equal(t, "10 New Main St", updated.Line1)
	_, ok = byID[shipping.ID]
	require.False(t, ok, "dropped row is deleted")
}

func TestSaveAddressesIdempotent(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	tenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Idem Tenant"})
	require.NoError(t, err)

	first, err := svc.SaveAddresses(ctx, domain.SaveAddressesRequest{
		TenantID: tenant.ID.String(),
		Addresses: []domain.AddressInput{
			{Type: "billing", Line1: "1 Main St", City: "Springfield", CountryCode: "US"},
		},
	})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Resubmitting the saved rows unchanged is a no-op.
	second, err := svc.SaveAddresses(ctx, domain.SaveAddressesRequest{
		TenantID: tenant.ID.String(),
		Addresses: []domain.AddressInput{
			{
				ID:          first[0].ID.String(),
				Type:        string(first[0].Type),
				Line1:       first[0].Line1,
				City:        first[0].City,
				CountryCode: first[0].CountryCode,
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, first[0].ID, second[0].ID)
}

func TestSaveAddressesUnknownDurableID(t *testing.T) {
	svc, node := setupTenantService(t)
	ctx := context.Background()

	tenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Strict Tenant"})
	require.NoError(t, err)

	// A durable-looking ID that matches no stored row is rejected, not
	// silently created.
	_, err = svc.SaveAddresses(ctx, domain.SaveAddressesRequest{
		TenantID: tenant.ID.String(),
		Addresses: []domain.AddressInput{
			{ID: node.Generate().String(), Type: "billing", Line1: "1 Main St", City: "Springfield", CountryCode: "US"},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestSaveContactsDiffBatches(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	tenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Contact Tenant"})
	require.NoError(t, err)

	saved, err := svc.SaveContacts(ctx, domain.SaveContactsRequest{
		TenantID: tenant.ID.String(),
		Contacts: []domain.ContactInput{
			{Name: "Alice", Email: "alice@example.com", Role: "billing"},
			{Name: "Bob", Email: "bob@example.com"},
		},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	alice := saved[0]
	if alice.Name != "Alice" {
		alice = saved[1]
	}

	saved, err = svc.SaveContacts(ctx, domain.SaveContactsRequest{
		TenantID: tenant.ID.String(),
		Contacts: []domain.ContactInput{
			{ID: alice.ID.String(), Name: "Alice", Email: "alice@acme.example", Role: "billing"},
		},
	})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Equal(t, alice.ID, saved[0].ID)
	require.Equal(t, "alice@acme.example", saved[0].Email)
}

func TestSaveContactsValidation(t *testing.T) {
	svc, _ := setupTenantService(t)
	ctx := context.Background()

	tenant, err := svc.Create(ctx, domain.CreateTenantRequest{Name: "Invalid Contact Tenant"})
	require.NoError(t, err)

	_, err = svc.SaveContacts(ctx, domain.SaveContactsRequest{
		TenantID: tenant.ID.String(),
		Contacts: []domain.ContactInput{
			{Name: "No Email", Email: "not-an-email"},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidContact)
}
