package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/application/domain"
	"github.com/smallbiznis/tessera/pkg/db"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
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
		log:   p.Log.Named("application.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateApplicationRequest) (domain.Application, error) {
	code := normalizeCode(req.Code)
	if code == "" {
		return domain.Application{}, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Application{}, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Application{}, err
	}
	if existing != nil {
		return domain.Application{}, domain.ErrCodeTaken
	}

	now := time.Now().UTC()
	application := domain.Application{
		ID:          s.genID.Generate(),
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Status:      domain.ApplicationActive,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &application); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Application{}, domain.ErrCodeTaken
		}
		return domain.Application{}, err
	}

	return application, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateApplicationRequest) (domain.Application, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Application{}, err
	}

	application, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Application{}, err
	}
	if application == nil {
		return domain.Application{}, domain.ErrNotFound
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		application.Name = name
	}
	if description := strings.TrimSpace(req.Description); description != "" {
		application.Description = description
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed, err := domain.ParseApplicationStatus(status)
		if err != nil {
			return domain.Application{}, err
		}
		application.Status = parsed
	}
	application.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, application); err != nil {
		return domain.Application{}, err
	}

	return *application, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetApplicationRequest) (domain.Application, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Application{}, err
	}

	application, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Application{}, err
	}
	if application == nil {
		return domain.Application{}, domain.ErrNotFound
	}

	return *application, nil
}

func (s *Service) List(ctx context.Context, req domain.ListApplicationRequest) (domain.ListApplicationResponse, error) {
	var filter domain.ListApplicationFilter
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed, err := domain.ParseApplicationStatus(status)
		if err != nil {
			return domain.ListApplicationResponse{}, err
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
		return domain.ListApplicationResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(application *domain.Application) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        application.ID.String(),
			CreatedAt: application.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	applications := make([]domain.Application, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		applications = append(applications, *item)
	}

	resp := domain.ListApplicationResponse{Applications: applications}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) CreateUserType(ctx context.Context, req domain.CreateUserTypeRequest) (domain.UserType, error) {
	applicationID, err := s.parseID(req.ApplicationID)
	if err != nil {
		return domain.UserType{}, err
	}
	code := normalizeCode(req.Code)
	if code == "" {
		return domain.UserType{}, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.UserType{}, domain.ErrInvalidName
	}

	application, err := s.repo.FindByID(ctx, s.db, applicationID)
	if err != nil {
		return domain.UserType{}, err
	}
	if application == nil {
		return domain.UserType{}, domain.ErrNotFound
	}

	now := time.Now().UTC()
	userType := domain.UserType{
		ID:            s.genID.Generate(),
		ApplicationID: applicationID,
		Code:          code,
		Name:          name,
		Rank:          req.Rank,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.InsertUserType(ctx, s.db, &userType); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.UserType{}, domain.ErrCodeTaken
		}
		return domain.UserType{}, err
	}

	return userType, nil
}

func (s *Service) ListUserTypes(ctx context.Context, applicationID string) ([]domain.UserType, error) {
	id, err := s.parseID(applicationID)
	if err != nil {
		return nil, err
	}

	application, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if application == nil {
		return nil, domain.ErrNotFound
	}

	return s.repo.ListUserTypes(ctx, s.db, id)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeCode(value string) string {
	code := strings.ToLower(strings.TrimSpace(value))
	return strings.ReplaceAll(code, " ", "_")
}
