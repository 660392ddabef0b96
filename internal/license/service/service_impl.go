package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	appdomain "github.com/smallbiznis/tessera/internal/application/domain"
	"github.com/smallbiznis/tessera/internal/config"
	"github.com/smallbiznis/tessera/internal/license/domain"
	"github.com/smallbiznis/tessera/internal/observability/metrics"
	userdomain "github.com/smallbiznis/tessera/internal/user/domain"
	"github.com/smallbiznis/tessera/pkg/db"
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
	UserRepo userdomain.Repository
	Platform *config.PlatformConfigHolder
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	appRepo  appdomain.Repository
	userRepo userdomain.Repository
	platform *config.PlatformConfigHolder
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("license.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		appRepo:  p.AppRepo,
		userRepo: p.UserRepo,
		platform: p.Platform,
		metrics:  p.Metrics,
	}
}

func (s *Service) Activate(ctx context.Context, req domain.ActivateLicenseRequest) (domain.License, error) {
	tenantID, err := parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return domain.License{}, err
	}
	applicationID, err := parseID(req.ApplicationID, domain.ErrInvalidApplication)
	if err != nil {
		return domain.License{}, err
	}

	application, err := s.appRepo.FindByID(ctx, s.db, applicationID)
	if err != nil {
		return domain.License{}, err
	}
	if application == nil || application.Status != appdomain.ApplicationActive {
		return domain.License{}, domain.ErrInvalidApplication
	}

	platform := s.platform.Current()
	seatLimit := req.SeatLimit
	if seatLimit == 0 {
		seatLimit = platform.DefaultSeatLimit
	}
	if seatLimit <= 0 || (platform.MaxSeatLimit > 0 && seatLimit > platform.MaxSeatLimit) {
		return domain.License{}, domain.ErrInvalidSeatLimit
	}

	existing, err := s.repo.FindByApplication(ctx, s.db, tenantID, applicationID)
	if err != nil {
		return domain.License{}, err
	}
	if existing != nil {
		return domain.License{}, domain.ErrLicenseExists
	}

	now := time.Now().UTC()
	license := domain.License{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		ApplicationID: applicationID,
		SeatLimit:     seatLimit,
		Status:        domain.LicenseActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &license); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.License{}, domain.ErrLicenseExists
		}
		return domain.License{}, err
	}

	return license, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateLicenseRequest) (domain.License, error) {
	tenantID, err := parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return domain.License{}, err
	}
	id, err := parseID(req.ID, domain.ErrInvalidID)
	if err != nil {
		return domain.License{}, err
	}

	var updated domain.License
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		license, err := s.repo.FindByIDForUpdate(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if license == nil {
			return domain.ErrNotFound
		}

		if req.SeatLimit != 0 {
			if req.SeatLimit < 0 {
				return domain.ErrInvalidSeatLimit
			}
			platform := s.platform.Current()
			if platform.MaxSeatLimit > 0 && req.SeatLimit > platform.MaxSeatLimit {
				return domain.ErrInvalidSeatLimit
			}
			used, err := s.repo.CountSeats(ctx, tx, license.ID)
			if err != nil {
				return err
			}
			if int64(req.SeatLimit) < used {
				return domain.ErrSeatLimitTooLow
			}
			license.SeatLimit = req.SeatLimit
		}
		if status := strings.TrimSpace(req.Status); status != "" {
			parsed, err := domain.ParseLicenseStatus(status)
			if err != nil {
				return err
			}
			license.Status = parsed
		}
		license.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, tx, license); err != nil {
			return err
		}
		updated = *license
		return nil
	})
	if err != nil {
		return domain.License{}, err
	}

	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetLicenseRequest) (domain.LicenseUsage, error) {
	tenantID, err := parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return domain.LicenseUsage{}, err
	}
	id, err := parseID(req.ID, domain.ErrInvalidID)
	if err != nil {
		return domain.LicenseUsage{}, err
	}

	license, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.LicenseUsage{}, err
	}
	if license == nil {
		return domain.LicenseUsage{}, domain.ErrNotFound
	}

	used, err := s.repo.CountSeats(ctx, s.db, license.ID)
	if err != nil {
		return domain.LicenseUsage{}, err
	}

	return domain.LicenseUsage{License: *license, SeatsUsed: used}, nil
}

func (s *Service) ListByTenant(ctx context.Context, tenantID string) ([]domain.LicenseUsage, error) {
	id, err := parseID(tenantID, domain.ErrInvalidTenant)
	if err != nil {
		return nil, err
	}

	licenses, err := s.repo.ListByTenant(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	usages := make([]domain.LicenseUsage, 0, len(licenses))
	for _, license := range licenses {
		used, err := s.repo.CountSeats(ctx, s.db, license.ID)
		if err != nil {
			return nil, err
		}
		usages = append(usages, domain.LicenseUsage{License: license, SeatsUsed: used})
	}
	return usages, nil
}

// GrantSeat consumes one seat inside a transaction that locks the
// license row, counts current assignments and checks for a duplicate.
// A full license fails with ErrNoSeatsAvailable; a duplicate user with
// ErrAlreadyLicensed.
func (s *Service) GrantSeat(ctx context.Context, req domain.GrantSeatRequest) (domain.SeatAssignment, error) {
	tenantID, err := parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return domain.SeatAssignment{}, err
	}
	licenseID, err := parseID(req.LicenseID, domain.ErrInvalidID)
	if err != nil {
		return domain.SeatAssignment{}, err
	}
	userID, err := parseID(req.UserID, domain.ErrInvalidUser)
	if err != nil {
		return domain.SeatAssignment{}, err
	}
	var userTypeID snowflake.ID
	if raw := strings.TrimSpace(req.UserTypeID); raw != "" {
		userTypeID, err = parseID(raw, domain.ErrInvalidID)
		if err != nil {
			return domain.SeatAssignment{}, err
		}
	}

	user, err := s.userRepo.FindByID(ctx, s.db, tenantID, userID)
	if err != nil {
		return domain.SeatAssignment{}, err
	}
	if user == nil {
		return domain.SeatAssignment{}, domain.ErrInvalidUser
	}

	var seat domain.SeatAssignment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		license, err := s.repo.FindByIDForUpdate(ctx, tx, tenantID, licenseID)
		if err != nil {
			return err
		}
		if license == nil {
			return domain.ErrNotFound
		}
		if license.Status != domain.LicenseActive {
			return domain.ErrLicenseSuspended
		}

		existing, err := s.repo.FindSeat(ctx, tx, license.ID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyLicensed
		}

		used, err := s.repo.CountSeats(ctx, tx, license.ID)
		if err != nil {
			return err
		}
		if used >= int64(license.SeatLimit) {
			return domain.ErrNoSeatsAvailable
		}

		seat = domain.SeatAssignment{
			ID:         s.genID.Generate(),
			LicenseID:  license.ID,
			UserID:     userID,
			UserTypeID: userTypeID,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.repo.InsertSeat(ctx, tx, &seat); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrAlreadyLicensed
			}
			return err
		}
		return nil
	})
	if err != nil {
		switch err {
		case domain.ErrNoSeatsAvailable:
			s.metrics.RecordSeatDenial(ctx, tenantID.String(), "no_seats_available")
		case domain.ErrAlreadyLicensed:
			s.metrics.RecordSeatDenial(ctx, tenantID.String(), "already_licensed")
		}
		return domain.SeatAssignment{}, err
	}

	s.metrics.RecordSeatGrant(ctx, tenantID.String())
	return seat, nil
}

func (s *Service) RevokeSeat(ctx context.Context, req domain.RevokeSeatRequest) error {
	tenantID, err := parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return err
	}
	licenseID, err := parseID(req.LicenseID, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	userID, err := parseID(req.UserID, domain.ErrInvalidUser)
	if err != nil {
		return err
	}

	license, err := s.repo.FindByID(ctx, s.db, tenantID, licenseID)
	if err != nil {
		return err
	}
	if license == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.DeleteSeat(ctx, s.db, license.ID, userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ListSeats(ctx context.Context, tenantID, licenseID string) ([]domain.SeatAssignment, error) {
	tid, err := parseID(tenantID, domain.ErrInvalidTenant)
	if err != nil {
		return nil, err
	}
	lid, err := parseID(licenseID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	license, err := s.repo.FindByID(ctx, s.db, tid, lid)
	if err != nil {
		return nil, err
	}
	if license == nil {
		return nil, domain.ErrNotFound
	}

	return s.repo.ListSeats(ctx, s.db, license.ID)
}

func parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
