package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/audit/domain"
	"github.com/smallbiznis/tessera/internal/auditcontext"
	"github.com/smallbiznis/tessera/internal/tenantctx"
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
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Record writes an audit entry. Failures are logged, never propagated;
// an audit write must not fail the mutation it describes.
func (s *Service) Record(ctx context.Context, entry domain.Entry) {
	tenantID := entry.TenantID
	if tenantID == 0 {
		tenantID, _ = tenantctx.TenantIDFromContext(ctx)
	}

	detail := datatypes.JSONMap{}
	for k, v := range entry.Detail {
		detail[k] = v
	}

	row := domain.AuditLog{
		ID:         s.genID.Generate(),
		TenantID:   tenantID,
		ActorID:    entry.ActorID,
		ActorEmail: strings.TrimSpace(entry.ActorEmail),
		Action:     strings.TrimSpace(entry.Action),
		Resource:   strings.TrimSpace(entry.Resource),
		ResourceID: strings.TrimSpace(entry.ResourceID),
		Detail:     detail,
		RequestID:  auditcontext.RequestIDFromContext(ctx),
		IPAddress:  auditcontext.IPAddressFromContext(ctx),
		UserAgent:  auditcontext.UserAgentFromContext(ctx),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &row); err != nil {
		s.log.Error("failed to record audit entry",
			zap.String("action", row.Action),
			zap.String("resource", row.Resource),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, req domain.ListAuditLogRequest) (domain.ListAuditLogResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ListAuditLogResponse{}, domain.ErrInvalidTenant
	}

	filter := domain.ListAuditLogFilter{
		Action:      strings.TrimSpace(req.Action),
		Resource:    strings.TrimSpace(req.Resource),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if actor := strings.TrimSpace(req.ActorID); actor != "" {
		id, err := snowflake.ParseString(actor)
		if err != nil || id == 0 {
			return domain.ListAuditLogResponse{}, domain.ErrInvalidActorID
		}
		filter.ActorID = id
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
		return domain.ListAuditLogResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(entry *domain.AuditLog) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        entry.ID.String(),
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	entries := make([]domain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}

	resp := domain.ListAuditLogResponse{AuditLogs: entries}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}
