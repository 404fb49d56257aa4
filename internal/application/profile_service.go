package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/user-auth-service/internal/domain/repository"
	"github.com/oksasatya/user-auth-service/pkg/apperror"
)

// ProfileCache is an optional read-through cache of public profiles.
// Get returns nil on a miss. Set must keep an entry whose UpdatedAt is
// newer than the one being written; GetProfile fills and UpdateProfile
// writes through with the same call.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*entity.PublicUser, error)
	Set(ctx context.Context, u entity.PublicUser) error
	Invalidate(ctx context.Context, userID string) error
}

type ProfileService struct {
	Repo   repo.UserRepository
	Cache  ProfileCache
	Logger logrus.FieldLogger
}

func NewProfileService(repo repo.UserRepository, cache ProfileCache, logger logrus.FieldLogger) *ProfileService {
	return &ProfileService{Repo: repo, Cache: cache, Logger: logger}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (entity.PublicUser, error) {
	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, userID)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("profile cache read failed")
		} else if cached != nil {
			return *cached, nil
		}
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return entity.PublicUser{}, apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	if u == nil {
		return entity.PublicUser{}, apperror.New(apperror.KindNotFound, msgUserNotFound)
	}

	pub := u.Public()
	s.remember(ctx, pub)
	return pub, nil
}

// UpdateProfile applies the supplied fields only. An update with no fields
// returns the current profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd entity.ProfileUpdate) (entity.PublicUser, error) {
	upd = upd.Normalize()
	if err := entity.ValidateProfile(upd); err != nil {
		return entity.PublicUser{}, err
	}
	if upd.Empty() {
		return s.GetProfile(ctx, userID)
	}

	u, err := s.Repo.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return entity.PublicUser{}, apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	if u == nil {
		return entity.PublicUser{}, apperror.New(apperror.KindNotFound, msgUserNotFound)
	}

	pub := u.Public()
	if !s.remember(ctx, pub) {
		// a stale entry must not outlive a failed refresh
		if err := s.Cache.Invalidate(ctx, userID); err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("profile cache invalidate failed")
		}
	}
	return pub, nil
}

// remember stores pub in the cache and reports whether it succeeded. It is
// a no-op returning true when no cache is configured.
func (s *ProfileService) remember(ctx context.Context, pub entity.PublicUser) bool {
	if s.Cache == nil {
		return true
	}
	if err := s.Cache.Set(ctx, pub); err != nil {
		s.Logger.WithError(err).WithField("user_id", pub.ID).Warn("profile cache write failed")
		return false
	}
	return true
}
