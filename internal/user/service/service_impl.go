package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/user/domain"
	"github.com/smallbiznis/tessera/pkg/db"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
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
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	tenantID, err := s.parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return domain.User{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.User{}, domain.ErrInvalidName
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return domain.User{}, err
	}

	status := domain.UserInvited
	passwordHash := ""
	if password := strings.TrimSpace(req.Password); password != "" {
		if len(password) < 8 {
			return domain.User{}, domain.ErrInvalidPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, err
		}
		passwordHash = string(hash)
		status = domain.UserActive
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, tenantID, email)
	if err != nil {
		return domain.User{}, err
	}
	if existing != nil {
		return domain.User{}, domain.ErrEmailTaken
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		TenantID:     tenantID,
		Email:        email,
		Name:         name,
		Role:         role,
		Status:       status,
		PasswordHash: passwordHash,
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateUserRequest) (domain.User, error) {
	tenantID, err := s.parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return domain.User{}, err
	}
	id, err := s.parseID(req.ID, domain.ErrInvalidID)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if role := strings.TrimSpace(req.Role); role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return domain.User{}, err
		}
		user.Role = parsed
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed, err := domain.ParseUserStatus(status)
		if err != nil {
			return domain.User{}, err
		}
		user.Status = parsed
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}

	return *user, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetUserRequest) (domain.User, error) {
	tenantID, err := s.parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return domain.User{}, err
	}
	id, err := s.parseID(req.ID, domain.ErrInvalidID)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}

	return *user, nil
}

func (s *Service) List(ctx context.Context, req domain.ListUserRequest) (domain.ListUserResponse, error) {
	tenantID, err := s.parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return domain.ListUserResponse{}, err
	}

	filter := domain.ListUserFilter{
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if role := strings.TrimSpace(req.Role); role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return domain.ListUserResponse{}, err
		}
		filter.Role = parsed
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed, err := domain.ParseUserStatus(status)
		if err != nil {
			return domain.ListUserResponse{}, err
		}
		filter.Status = parsed
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, tenantID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListUserResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(user *domain.User) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        user.ID.String(),
			CreatedAt: user.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		users = append(users, *item)
	}

	resp := domain.ListUserResponse{Users: users}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
