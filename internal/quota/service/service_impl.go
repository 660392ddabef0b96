package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tessera/internal/config"
	"github.com/smallbiznis/tessera/internal/observability/metrics"
	"github.com/smallbiznis/tessera/internal/quota/domain"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	TenantRepo tenantdomain.Repository
	Platform   *config.PlatformConfigHolder
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	tenantRepo tenantdomain.Repository
	platform   *config.PlatformConfigHolder
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("quota.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		tenantRepo: p.TenantRepo,
		platform:   p.Platform,
		metrics:    p.Metrics,
	}
}

// ListPlans returns the quota plan catalog from the live platform
// config, so operator edits to platform.yml show up without a restart.
func (s *Service) ListPlans(ctx context.Context) []domain.Plan {
	_ = ctx
	specs := s.platform.Current().QuotaPlans
	plans := make([]domain.Plan, 0, len(specs))
	for _, spec := range specs {
		plans = append(plans, domain.Plan{
			Code:            spec.Code,
			Name:            spec.Name,
			IncludedMinutes: spec.IncludedMinutes,
			OveragePolicy:   strings.ToUpper(spec.OveragePolicy),
		})
	}
	return plans
}

// Assign puts the tenant on a plan from the catalog. Reassigning to a
// different plan keeps accumulated usage and restarts the period.
func (s *Service) Assign(ctx context.Context, req domain.AssignQuotaRequest) (domain.TenantQuota, error) {
	tenantID, err := s.parseTenant(ctx, req.TenantID)
	if err != nil {
		return domain.TenantQuota{}, err
	}

	spec, ok := s.platform.QuotaPlan(req.PlanCode)
	if !ok {
		return domain.TenantQuota{}, domain.ErrInvalidPlan
	}

	now := time.Now().UTC()
	existing, err := s.repo.FindByTenant(ctx, s.db, tenantID)
	if err != nil {
		return domain.TenantQuota{}, err
	}

	var quota domain.TenantQuota
	if existing == nil {
		quota = domain.TenantQuota{
			ID:              s.genID.Generate(),
			TenantID:        tenantID,
			PlanCode:        spec.Code,
			IncludedMinutes: spec.IncludedMinutes,
			OveragePolicy:   strings.ToUpper(spec.OveragePolicy),
			PeriodStart:     now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Insert(ctx, s.db, &quota); err != nil {
			return domain.TenantQuota{}, err
		}
	} else {
		existing.PlanCode = spec.Code
		existing.IncludedMinutes = spec.IncludedMinutes
		existing.OveragePolicy = strings.ToUpper(spec.OveragePolicy)
		existing.PeriodStart = now
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, s.db, existing); err != nil {
			return domain.TenantQuota{}, err
		}
		quota = *existing
	}

	s.metrics.RecordQuotaUpdate(ctx, tenantID.String(), quota.PlanCode)
	return quota, nil
}

func (s *Service) GetByTenant(ctx context.Context, tenantID string) (domain.TenantQuota, error) {
	id, err := s.parseTenant(ctx, tenantID)
	if err != nil {
		return domain.TenantQuota{}, err
	}

	quota, err := s.repo.FindByTenant(ctx, s.db, id)
	if err != nil {
		return domain.TenantQuota{}, err
	}
	if quota == nil {
		return domain.TenantQuota{}, domain.ErrNotFound
	}
	return *quota, nil
}

// RecordUsage adds transcription minutes to the tenant's running total.
// Plans with the BLOCK overage policy reject usage that would exceed
// the included minutes; NOTIFY and BILL plans accumulate past the cap.
func (s *Service) RecordUsage(ctx context.Context, req domain.RecordUsageRequest) (domain.TenantQuota, error) {
	tenantID, err := s.parseTenant(ctx, req.TenantID)
	if err != nil {
		return domain.TenantQuota{}, err
	}
	if req.Minutes <= 0 {
		return domain.TenantQuota{}, domain.ErrInvalidMinutes
	}

	var updated domain.TenantQuota
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quota, err := s.repo.FindByTenantForUpdate(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if quota == nil {
			return domain.ErrNotFound
		}

		next := quota.UsedMinutes + req.Minutes
		if !quota.Unlimited() && quota.OveragePolicy == config.OverageBlock && next > int64(quota.IncludedMinutes) {
			return domain.ErrQuotaExceeded
		}
		if !quota.Unlimited() && next > int64(quota.IncludedMinutes) && quota.OveragePolicy == config.OverageNotify {
			s.log.Warn("tenant over included quota",
				zap.String("tenant_id", tenantID.String()),
				zap.String("plan_code", quota.PlanCode),
				zap.Int64("used_minutes", next),
			)
		}

		quota.UsedMinutes = next
		quota.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, quota); err != nil {
			return err
		}
		updated = *quota
		return nil
	})
	if err != nil {
		return domain.TenantQuota{}, err
	}

	return updated, nil
}

func (s *Service) parseTenant(ctx context.Context, value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidTenant
	}
	tenant, err := s.tenantRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if tenant == nil {
		return 0, domain.ErrInvalidTenant
	}
	return id, nil
}
