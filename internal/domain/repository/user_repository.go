package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/user-auth-service/internal/domain/entity"
)

var (
	ErrDuplicateEmail = errors.New("email already exists")
	ErrUserNotFound   = errors.New("user not found")
)

// UserRepository defines the interface for user persistence.
// Lookups return (nil, nil) when no user matches. Email uniqueness is
// enforced by the store and reported as ErrDuplicateEmail.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateProfile applies the non-nil fields in one write and returns the
	// updated user, or nil when id does not exist.
	UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error)
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
	// UpdatePassword stores a new hash and clears any pending reset token.
	UpdatePassword(ctx context.Context, id, hash string) error
	Ping(ctx context.Context) error
}
