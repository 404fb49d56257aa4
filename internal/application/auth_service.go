package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"expvar"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/user-auth-service/internal/domain/repository"
	"github.com/oksasatya/user-auth-service/pkg/apperror"
	"github.com/oksasatya/user-auth-service/pkg/helpers"
	"github.com/oksasatya/user-auth-service/pkg/mailer"
)

const (
	DefaultAccessTTL = 24 * time.Hour
	DefaultResetTTL  = time.Hour

	msgInvalidCredentials = "Invalid credentials"
	msgUserNotFound       = "User not found"
	msgInvalidReset       = "Invalid or expired reset token"
	msgEmailExists        = "Email already exists"
	msgInternal           = "Something went wrong!"
)

// Counters are published under /api/debug/vars when the debug module is on.
var authStats = expvar.NewMap("auth")

type AuthService struct {
	Repo      repo.UserRepository
	JWT       *helpers.JWTManager
	Hasher    *helpers.PasswordHasher
	Notifier  mailer.Notifier
	Logger    logrus.FieldLogger
	AccessTTL time.Duration
	ResetTTL  time.Duration
	Now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(repo repo.UserRepository, jwt *helpers.JWTManager, hasher *helpers.PasswordHasher, notifier mailer.Notifier, logger logrus.FieldLogger, accessTTL, resetTTL time.Duration) *AuthService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if resetTTL <= 0 {
		resetTTL = DefaultResetTTL
	}
	return &AuthService{
		Repo:      repo,
		JWT:       jwt,
		Hasher:    hasher,
		Notifier:  notifier,
		Logger:    logger,
		AccessTTL: accessTTL,
		ResetTTL:  resetTTL,
		Now:       time.Now,
	}
}

// Signup creates an account and returns a session token for it.
func (s *AuthService) Signup(ctx context.Context, in entity.Signup) (string, *entity.User, error) {
	in = in.Normalize()
	if err := entity.ValidateSignup(in); err != nil {
		return "", nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return "", nil, apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}

	now := s.Now().UTC()
	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.MobileNumber != nil {
		u.MobileNumber = *in.MobileNumber
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return "", nil, apperror.Wrap(apperror.KindDuplicateEmail, msgEmailExists, err)
		}
		return "", nil, apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}

	token, _, err := s.JWT.Issue(u.ID, s.AccessTTL)
	if err != nil {
		return "", nil, apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	authStats.Add("signup", 1)
	s.Logger.WithField("user_id", u.ID).Info("user signed up")
	return token, u, nil
}

// Login verifies credentials and returns a session token. An unknown email
// and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		return "", nil, apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	if u == nil {
		s.Hasher.Compare(s.dummy(), password)
		authStats.Add("login_failure", 1)
		return "", nil, apperror.New(apperror.KindInvalidCredentials, msgInvalidCredentials)
	}
	if !s.Hasher.Compare(u.PasswordHash, password) {
		authStats.Add("login_failure", 1)
		s.Logger.WithField("user_id", u.ID).Debug("password mismatch")
		return "", nil, apperror.New(apperror.KindInvalidCredentials, msgInvalidCredentials)
	}

	token, _, err := s.JWT.Issue(u.ID, s.AccessTTL)
	if err != nil {
		return "", nil, apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	authStats.Add("login_success", 1)
	return token, u, nil
}

// dummy returns a hash of a throwaway password so that lookups for unknown
// users still pay the KDF cost.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash(uuid.NewString())
		if err != nil {
			s.Logger.WithError(err).Warn("dummy hash failed")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// ForgetPassword issues a reset token for the account behind email, stores
// it with its expiry and hands it to the notifier.
func (s *AuthService) ForgetPassword(ctx context.Context, email string) error {
	email = entity.NormalizeEmail(email)
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	if u == nil {
		return apperror.New(apperror.KindNotFound, msgUserNotFound)
	}

	token, exp, err := s.JWT.IssueReset(u.ID, s.ResetTTL)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	if err := s.Repo.SetResetToken(ctx, u.ID, token, exp); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return apperror.Wrap(apperror.KindNotFound, msgUserNotFound, err)
		}
		return apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	authStats.Add("reset_issued", 1)

	if s.Notifier != nil {
		notice := mailer.ResetNotice{UserID: u.ID, Email: u.Email, Token: token, ExpiresAt: exp}
		if err := s.Notifier.NotifyPasswordReset(ctx, notice); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("reset notification failed")
		}
	}
	return nil
}

// ResetPassword consumes a pending reset token and replaces the password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if err := entity.ValidatePassword(password); err != nil {
		return err
	}

	claims, err := s.JWT.Verify(token)
	if err != nil {
		s.Logger.WithError(err).Debug("reset token rejected")
		return apperror.Wrap(apperror.KindValidation, msgInvalidReset, err)
	}
	if claims.Purpose != helpers.PurposeReset {
		return apperror.New(apperror.KindValidation, msgInvalidReset)
	}

	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	if u == nil || !u.HasPendingReset(s.Now()) {
		return apperror.New(apperror.KindValidation, msgInvalidReset)
	}
	if subtle.ConstantTimeCompare([]byte(u.ResetToken), []byte(token)) != 1 {
		return apperror.New(apperror.KindValidation, msgInvalidReset)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return apperror.Wrap(apperror.KindValidation, msgInvalidReset, err)
		}
		return apperror.Wrap(apperror.KindInternal, msgInternal, err)
	}
	authStats.Add("reset_completed", 1)
	s.Logger.WithField("user_id", u.ID).Info("password reset completed")
	return nil
}

// Authenticate resolves a session token to the user id it was issued for.
func (s *AuthService) Authenticate(token string) (string, error) {
	claims, err := s.JWT.Verify(token)
	if err != nil {
		return "", err
	}
	if claims.Purpose != helpers.PurposeAccess {
		return "", helpers.ErrTokenMalformed
	}
	return claims.UserID, nil
}
