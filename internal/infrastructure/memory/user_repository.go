package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/user-auth-service/internal/domain/entity"
	"github.com/oksasatya/user-auth-service/internal/domain/repository"
)

// UserRepository keeps users in process memory. It backs the "memory"
// store driver and the service tests.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func clone(u *entity.User) *entity.User {
	c := *u
	if u.ResetTokenExpiry != nil {
		exp := *u.ResetTokenExpiry
		c.ResetTokenExpiry = &exp
	}
	return &c
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	now := r.now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	r.byID[u.ID] = clone(u)
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return clone(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.MobileNumber != nil {
		u.MobileNumber = *upd.MobileNumber
	}
	u.UpdatedAt = r.now().UTC()
	return clone(u), nil
}

func (r *UserRepository) SetResetToken(_ context.Context, id, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	exp := expiry.UTC()
	u.ResetToken = token
	u.ResetTokenExpiry = &exp
	u.UpdatedAt = r.now().UTC()
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.ResetToken = ""
	u.ResetTokenExpiry = nil
	u.UpdatedAt = r.now().UTC()
	return nil
}

func (r *UserRepository) Ping(context.Context) error { return nil }

var _ repository.UserRepository = (*UserRepository)(nil)
