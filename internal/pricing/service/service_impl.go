package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	appdomain "github.com/smallbiznis/tessera/internal/application/domain"
	"github.com/smallbiznis/tessera/internal/config"
	"github.com/smallbiznis/tessera/internal/observability/metrics"
	"github.com/smallbiznis/tessera/internal/pricing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	AppRepo  appdomain.Repository
	Platform *config.PlatformConfigHolder
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	appRepo  appdomain.Repository
	platform *config.PlatformConfigHolder
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("pricing.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		appRepo:  p.AppRepo,
		platform: p.Platform,
		metrics:  p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListPricingRequest) (domain.ListPricingResponse, error) {
	applicationID, err := s.parseID(req.ApplicationID, domain.ErrInvalidID)
	if err != nil {
		return domain.ListPricingResponse{}, err
	}
	if err := s.ensureApplication(ctx, applicationID); err != nil {
		return domain.ListPricingResponse{}, err
	}

	var filter domain.ListPricingFilter
	if userType := strings.TrimSpace(req.UserTypeID); userType != "" {
		id, err := s.parseID(userType, domain.ErrInvalidUserType)
		if err != nil {
			return domain.ListPricingResponse{}, err
		}
		filter.UserTypeID = int64(id)
	}
	if req.Current {
		now := time.Now().UTC()
		filter.CurrentAt = &now
	}

	periods, err := s.repo.ListByApplication(ctx, s.db, applicationID, filter)
	if err != nil {
		return domain.ListPricingResponse{}, err
	}

	return domain.ListPricingResponse{Periods: periods}, nil
}

// Create inserts a new pricing period. The overlap check runs inside the
// insert transaction against the locked active periods of the user type,
// so this service is the authoritative validator; any client-side check
// is advisory.
func (s *Service) Create(ctx context.Context, req domain.CreatePricingRequest) (domain.PricingPeriod, error) {
	applicationID, err := s.parseID(req.ApplicationID, domain.ErrInvalidID)
	if err != nil {
		return domain.PricingPeriod{}, err
	}
	userTypeID, err := s.parseID(req.UserTypeID, domain.ErrInvalidUserType)
	if err != nil {
		return domain.PricingPeriod{}, err
	}
	if req.AmountCents < 0 {
		return domain.PricingPeriod{}, domain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return domain.PricingPeriod{}, domain.ErrInvalidCurrency
	}

	userType, err := s.appRepo.FindUserTypeByID(ctx, s.db, userTypeID)
	if err != nil {
		return domain.PricingPeriod{}, err
	}
	if userType == nil || userType.ApplicationID != applicationID {
		return domain.PricingPeriod{}, domain.ErrInvalidUserType
	}

	now := time.Now().UTC()
	candidate := domain.PricingPeriod{
		ID:            s.genID.Generate(),
		ApplicationID: applicationID,
		UserTypeID:    userTypeID,
		AmountCents:   req.AmountCents,
		Currency:      currency,
		ValidFrom:     req.ValidFrom.UTC(),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.ValidTo != nil {
		validTo := req.ValidTo.UTC()
		candidate.ValidTo = &validTo
	}

	if err := domain.ValidateDates(candidate); err != nil {
		return domain.PricingPeriod{}, err
	}
	if horizon := s.platform.Current().PricingHorizonDays; horizon > 0 {
		if candidate.ValidFrom.After(now.AddDate(0, 0, horizon)) {
			return domain.PricingPeriod{}, domain.ErrInvalidDates
		}
	}

	var created domain.PricingPeriod
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.ListActiveByUserType(ctx, tx, userTypeID)
		if err != nil {
			return err
		}
		if conflict := domain.FindConflict(candidate, existing); conflict != nil {
			return &domain.OverlapError{Existing: *conflict}
		}
		if err := s.repo.Insert(ctx, tx, &candidate); err != nil {
			return err
		}
		created = candidate
		return nil
	})
	if err != nil {
		if _, ok := errAsOverlap(err); ok {
			s.metrics.RecordPricingConflict(ctx, applicationID.String())
		}
		return domain.PricingPeriod{}, err
	}

	return created, nil
}

// End end-dates a period at the current instant. Periods that have not
// started yet collapse to an empty interval ending at their own start.
func (s *Service) End(ctx context.Context, req domain.EndPricingRequest) (domain.PricingPeriod, error) {
	applicationID, err := s.parseID(req.ApplicationID, domain.ErrInvalidID)
	if err != nil {
		return domain.PricingPeriod{}, err
	}
	periodID, err := s.parseID(req.PeriodID, domain.ErrInvalidID)
	if err != nil {
		return domain.PricingPeriod{}, err
	}

	period, err := s.repo.FindByID(ctx, s.db, applicationID, periodID)
	if err != nil {
		return domain.PricingPeriod{}, err
	}
	if period == nil {
		return domain.PricingPeriod{}, domain.ErrNotFound
	}

	now := time.Now().UTC()
	if !period.Active {
		return domain.PricingPeriod{}, domain.ErrAlreadyEnded
	}
	if period.ValidTo != nil && !period.ValidTo.After(now) {
		return domain.PricingPeriod{}, domain.ErrAlreadyEnded
	}

	// A period that has not started yet collapses to the empty interval
	// [ValidFrom, ValidFrom) and is deactivated so it can never conflict
	// with a replacement.
	endAt := now
	stillActive := period.Active
	if endAt.Before(period.ValidFrom) {
		endAt = period.ValidFrom
		stillActive = false
	}

	if err := s.repo.EndDate(ctx, s.db, periodID, endAt, now, stillActive); err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.PricingPeriod{}, domain.ErrNotFound
		}
		return domain.PricingPeriod{}, err
	}

	period.ValidTo = &endAt
	period.Active = stillActive
	period.UpdatedAt = now
	return *period, nil
}

func (s *Service) ensureApplication(ctx context.Context, id snowflake.ID) error {
	application, err := s.appRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if application == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}

func errAsOverlap(err error) (*domain.OverlapError, bool) {
	overlap, ok := err.(*domain.OverlapError)
	return overlap, ok
}
