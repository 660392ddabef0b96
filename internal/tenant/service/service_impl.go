package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
	"github.com/smallbiznis/tessera/pkg/diff"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTenantRequest) (domain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Tenant{}, domain.ErrInvalidName
	}

	slugValue, err := s.resolveSlug(ctx, req.Slug, name)
	if err != nil {
		return domain.Tenant{}, err
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slugValue,
		Status:    domain.TenantActive,
		Tags:      trimTags(req.Tags),
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &tenant); err != nil {
		return domain.Tenant{}, err
	}

	return tenant, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTenantRequest) (domain.Tenant, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Tenant{}, err
	}

	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		tenant.Name = name
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed, err := domain.ParseTenantStatus(status)
		if err != nil {
			return domain.Tenant{}, err
		}
		tenant.Status = parsed
	}
	if req.Tags != nil {
		tenant.Tags = trimTags(req.Tags)
	}
	tenant.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, tenant); err != nil {
		return domain.Tenant{}, err
	}

	return *tenant, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTenantRequest) (domain.Tenant, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Tenant{}, err
	}

	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}

	return *tenant, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTenantRequest) (domain.ListTenantResponse, error) {
	filter := domain.ListTenantFilter{Name: strings.TrimSpace(req.Name)}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed, err := domain.ParseTenantStatus(status)
		if err != nil {
			return domain.ListTenantResponse{}, err
		}
		filter.Status = parsed
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListTenantResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(tenant *domain.Tenant) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        tenant.ID.String(),
			CreatedAt: tenant.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	tenants := make([]domain.Tenant, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tenants = append(tenants, *item)
	}

	resp := domain.ListTenantResponse{Tenants: tenants}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) ListAddresses(ctx context.Context, tenantID string) ([]domain.TenantAddress, error) {
	id, err := s.parseID(tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListAddresses(ctx, s.db, id)
}

// SaveAddresses replaces the tenant's address collection. The submitted
// collection is diffed against the stored snapshot and applied as three
// sequential batches: creates, updates, deletes. Each batch fails
// independently; earlier batches are not rolled back when a later one
// fails.
func (s *Service) SaveAddresses(ctx context.Context, req domain.SaveAddressesRequest) ([]domain.TenantAddress, error) {
	tenantID, err := s.parseID(req.TenantID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, tenantID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	current := make([]domain.TenantAddress, 0, len(req.Addresses))
	for _, input := range req.Addresses {
		address, err := s.buildAddress(tenantID, input, now)
		if err != nil {
			return nil, err
		}
		current = append(current, address)
	}

	snapshot, err := s.repo.ListAddresses(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}

	result := diff.CalculateFunc(snapshot, current, addressUnchanged)

	for i := range result.Created {
		result.Created[i].ID = s.genID.Generate()
		result.Created[i].CreatedAt = now
	}
	if err := s.repo.InsertAddresses(ctx, s.db, result.Created); err != nil {
		return nil, err
	}
	for i := range result.Updated {
		if err := s.repo.UpdateAddress(ctx, s.db, &result.Updated[i]); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, domain.ErrInvalidAddress
			}
			return nil, err
		}
	}
	if err := s.repo.DeleteAddresses(ctx, s.db, tenantID, result.DeletedIDs); err != nil {
		return nil, err
	}

	return s.repo.ListAddresses(ctx, s.db, tenantID)
}

func (s *Service) ListContacts(ctx context.Context, tenantID string) ([]domain.TenantContact, error) {
	id, err := s.parseID(tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListContacts(ctx, s.db, id)
}

// SaveContacts mirrors SaveAddresses for the contact collection.
func (s *Service) SaveContacts(ctx context.Context, req domain.SaveContactsRequest) ([]domain.TenantContact, error) {
	tenantID, err := s.parseID(req.TenantID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, tenantID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	current := make([]domain.TenantContact, 0, len(req.Contacts))
	for _, input := range req.Contacts {
		contact, err := s.buildContact(tenantID, input, now)
		if err != nil {
			return nil, err
		}
		current = append(current, contact)
	}

	snapshot, err := s.repo.ListContacts(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}

	result := diff.CalculateFunc(snapshot, current, contactUnchanged)

	for i := range result.Created {
		result.Created[i].ID = s.genID.Generate()
		result.Created[i].CreatedAt = now
	}
	if err := s.repo.InsertContacts(ctx, s.db, result.Created); err != nil {
		return nil, err
	}
	for i := range result.Updated {
		if err := s.repo.UpdateContact(ctx, s.db, &result.Updated[i]); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, domain.ErrInvalidContact
			}
			return nil, err
		}
	}
	if err := s.repo.DeleteContacts(ctx, s.db, tenantID, result.DeletedIDs); err != nil {
		return nil, err
	}

	return s.repo.ListContacts(ctx, s.db, tenantID)
}

func (s *Service) buildAddress(tenantID snowflake.ID, input domain.AddressInput, now time.Time) (domain.TenantAddress, error) {
	addressType, err := domain.ParseAddressType(input.Type)
	if err != nil {
		return domain.TenantAddress{}, err
	}

	line1 := strings.TrimSpace(input.Line1)
	city := strings.TrimSpace(input.City)
	country := strings.ToUpper(strings.TrimSpace(input.CountryCode))
	if line1 == "" || city == "" || len(country) != 2 {
		return domain.TenantAddress{}, domain.ErrInvalidAddress
	}

	return domain.TenantAddress{
		ID:          parseDurableID(input.ID),
		TenantID:    tenantID,
		Type:        addressType,
		Line1:       line1,
		Line2:       strings.TrimSpace(input.Line2),
		City:        city,
		Region:      strings.TrimSpace(input.Region),
		PostalCode:  strings.TrimSpace(input.PostalCode),
		CountryCode: country,
		UpdatedAt:   now,
	}, nil
}

func (s *Service) buildContact(tenantID snowflake.ID, input domain.ContactInput, now time.Time) (domain.TenantContact, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return domain.TenantContact{}, domain.ErrInvalidContact
	}

	return domain.TenantContact{
		ID:        parseDurableID(input.ID),
		TenantID:  tenantID,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		Role:      strings.TrimSpace(input.Role),
		UpdatedAt: now,
	}, nil
}

func (s *Service) ensureExists(ctx context.Context, id snowflake.ID) error {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) resolveSlug(ctx context.Context, requested, name string) (string, error) {
	candidate := slug.Make(strings.TrimSpace(requested))
	if candidate == "" {
		candidate = slug.Make(name)
	}
	if candidate == "" {
		return "", domain.ErrInvalidSlug
	}

	existing, err := s.repo.FindBySlug(ctx, s.db, candidate)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return candidate, nil
	}
	if strings.TrimSpace(requested) != "" {
		return "", domain.ErrSlugTaken
	}

	for i := 2; i <= 20; i++ {
		next := fmt.Sprintf("%s-%d", candidate, i)
		existing, err := s.repo.FindBySlug(ctx, s.db, next)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return next, nil
		}
	}
	return "", domain.ErrSlugTaken
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// parseDurableID resolves the submitted identifier. Client placeholder
// values that do not parse as snowflake IDs count as absent.
func parseDurableID(value string) snowflake.ID {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return id
}

func addressUnchanged(old, new domain.TenantAddress) bool {
	return old.Type == new.Type &&
		old.Line1 == new.Line1 &&
		old.Line2 == new.Line2 &&
		old.City == new.City &&
		old.Region == new.Region &&
		old.PostalCode == new.PostalCode &&
		old.CountryCode == new.CountryCode
}

func contactUnchanged(old, new domain.TenantContact) bool {
	return old.Name == new.Name &&
		old.Email == new.Email &&
		old.Phone == new.Phone &&
		old.Role == new.Role
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}
