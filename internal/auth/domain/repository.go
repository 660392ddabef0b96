package domain

import (
	"context"

	userdomain "github.com/smallbiznis/tessera/internal/user/domain"
	"gorm.io/gorm"
)

type Repository interface {
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*userdomain.User, error)
	InsertSession(ctx context.Context, db *gorm.DB, session *Session) error
	FindSessionByToken(ctx context.Context, db *gorm.DB, token string) (*Session, error)
	DeleteSession(ctx context.Context, db *gorm.DB, token string) error
	DeleteExpiredSessions(ctx context.Context, db *gorm.DB) error
}
