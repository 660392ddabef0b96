package repository

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/tessera/internal/auth/domain"
	userdomain "github.com/smallbiznis/tessera/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*userdomain.User, error) {
	var user userdomain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, email, name, role, status, password_hash, metadata, created_at, updated_at
		 FROM users WHERE email = ? ORDER BY created_at asc LIMIT 1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) InsertSession(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sessions (id, token, user_id, tenant_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.Token,
		session.UserID,
		session.TenantID,
		session.ExpiresAt,
		session.CreatedAt,
	).Error
}

func (r *repo) FindSessionByToken(ctx context.Context, db *gorm.DB, token string) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).Raw(
		`SELECT id, token, user_id, tenant_id, expires_at, created_at
		 FROM sessions WHERE token = ?`,
		strings.TrimSpace(token),
	).Scan(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == 0 {
		return nil, nil
	}
	return &session, nil
}

func (r *repo) DeleteSession(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM sessions WHERE token = ?`,
		strings.TrimSpace(token),
	).Error
}

func (r *repo) DeleteExpiredSessions(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM sessions WHERE expires_at <= ?`,
		time.Now().UTC(),
	).Error
}
