package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/tessera/internal/auth/domain"
	"github.com/smallbiznis/tessera/internal/observability/metrics"
	"github.com/smallbiznis/tessera/internal/ratelimit"
	userdomain "github.com/smallbiznis/tessera/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionTTL = 12 * time.Hour

// dummyPasswordHash is a valid bcrypt hash of an arbitrary throwaway
// value. Comparing against it on a user miss keeps the failure path as
// slow as a real mismatch; a malformed hash would short-circuit the
// comparison.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Limiter *ratelimit.LoginLimiter `optional:"true"`
	Metrics *metrics.Metrics        `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	limiter *ratelimit.LoginLimiter
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("auth.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		limiter: p.Limiter,
		metrics: p.Metrics,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := req.Password
	if email == "" || password == "" {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	if err := s.throttle(ctx, req.ClientIP, email); err != nil {
		return domain.LoginResponse{}, err
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil || user.PasswordHash == "" {
		// Burn a comparison anyway so the miss costs the same.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}
	if user.Status == userdomain.UserDisabled {
		return domain.LoginResponse{}, domain.ErrUserDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	// Only a digest of the token touches the database; the raw value
	// lives in the cookie alone.
	now := time.Now().UTC()
	token := uuid.NewString()
	session := domain.Session{
		ID:        s.genID.Generate(),
		Token:     hashToken(token),
		UserID:    user.ID,
		TenantID:  user.TenantID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.repo.InsertSession(ctx, s.db, &session); err != nil {
		return domain.LoginResponse{}, err
	}

	session.Token = token
	return domain.LoginResponse{Session: session, User: *user}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, s.db, hashToken(token))
}

func (s *Service) Authenticate(ctx context.Context, token string) (domain.LoginResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.LoginResponse{}, domain.ErrUnauthenticated
	}

	session, err := s.repo.FindSessionByToken(ctx, s.db, hashToken(token))
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if session == nil {
		return domain.LoginResponse{}, domain.ErrUnauthenticated
	}
	if session.Expired(time.Now().UTC()) {
		_ = s.repo.DeleteSession(ctx, s.db, session.Token)
		return domain.LoginResponse{}, domain.ErrSessionExpired
	}

	user, err := s.findSessionUser(ctx, session)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil || user.Status == userdomain.UserDisabled {
		_ = s.repo.DeleteSession(ctx, s.db, session.Token)
		return domain.LoginResponse{}, domain.ErrUnauthenticated
	}

	resolved := *session
	resolved.Token = token
	return domain.LoginResponse{Session: resolved, User: *user}, nil
}

// hashToken derives the at-rest form of a session token. A leaked
// sessions table must not yield usable cookies.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *Service) findSessionUser(ctx context.Context, session *domain.Session) (*userdomain.User, error) {
	var user userdomain.User
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, email, name, role, status, password_hash, metadata, created_at, updated_at
		 FROM users WHERE tenant_id = ? AND id = ?`,
		session.TenantID,
		session.UserID,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (s *Service) throttle(ctx context.Context, ip, email string) error {
	if !s.limiter.Enabled() {
		return nil
	}

	ipRes, err := s.limiter.AllowIP(ctx, ip)
	if err != nil {
		s.log.Warn("login limiter unavailable", zap.Error(err))
		return nil
	}
	if !ipRes.Allowed {
		s.metrics.RecordLoginThrottled(ctx, "ip")
		return domain.ErrThrottled
	}

	emailRes, err := s.limiter.AllowEmail(ctx, email)
	if err != nil {
		s.log.Warn("login limiter unavailable", zap.Error(err))
		return nil
	}
	if !emailRes.Allowed {
		s.metrics.RecordLoginThrottled(ctx, "email")
		return domain.ErrThrottled
	}

	return nil
}
