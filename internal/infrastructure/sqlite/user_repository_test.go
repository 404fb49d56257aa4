package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-auth-service/internal/domain/entity"
	"github.com/oksasatya/user-auth-service/internal/domain/repository"
)

func openTestStore(t *testing.T) (*UserRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.db")
	logger, _ := test.NewNullLogger()
	repo, err := Open(path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, path
}

func strPtr(s string) *string { return &s }

func TestOpenRequiresPath(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := Open("  ", logger)
	assert.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	repo, path := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Email: "a@x.com", PasswordHash: "h"}))
	require.NoError(t, repo.Close())

	logger, _ := test.NewNullLogger()
	again, err := Open(path, logger)
	require.NoError(t, err)
	defer func() { _ = again.Close() }()

	u, err := again.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)
	assert.NoError(t, again.Ping(ctx))
}

func TestCreateAndGet(t *testing.T) {
	repo, _ := openTestStore(t)
	ctx := context.Background()

	in := &entity.User{ID: "u1", Email: "a@x.com", PasswordHash: "hash", Name: "Ada"}
	require.NoError(t, repo.Create(ctx, in))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, "Ada", got.Name)
	assert.Empty(t, got.MobileNumber)
	assert.Nil(t, got.ResetTokenExpiry)
	assert.Equal(t, in.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	got, err = repo.GetByID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
	got, err = repo.GetByEmail(ctx, "missing@x.com")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Email: "a@x.com", PasswordHash: "h1"}))
	err := repo.Create(ctx, &entity.User{ID: "u2", Email: "a@x.com", PasswordHash: "h2", Name: "Other"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUpdateProfilePartial(t *testing.T) {
	repo, _ := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Email: "a@x.com", PasswordHash: "h", Name: "Ada", MobileNumber: "+15551234567"}))

	got, err := repo.UpdateProfile(ctx, "u1", entity.ProfileUpdate{Name: strPtr("Grace")})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Grace", got.Name)
	assert.Equal(t, "+15551234567", got.MobileNumber)

	got, err = repo.UpdateProfile(ctx, "u1", entity.ProfileUpdate{MobileNumber: strPtr("+447946095800")})
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)
	assert.Equal(t, "+447946095800", got.MobileNumber)

	got, err = repo.UpdateProfile(ctx, "missing", entity.ProfileUpdate{Name: strPtr("x")})
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestResetTokenLifecycle(t *testing.T) {
	repo, _ := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Email: "a@x.com", PasswordHash: "old"}))

	exp := time.Now().Add(time.Hour)
	require.NoError(t, repo.SetResetToken(ctx, "u1", "tok", exp))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.ResetToken)
	require.NotNil(t, got.ResetTokenExpiry)
	assert.Equal(t, exp.UnixMilli(), got.ResetTokenExpiry.UnixMilli())

	require.NoError(t, repo.UpdatePassword(ctx, "u1", "new"))
	got, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)
	assert.Empty(t, got.ResetToken)
	assert.Nil(t, got.ResetTokenExpiry)

	assert.ErrorIs(t, repo.SetResetToken(ctx, "missing", "tok", exp), repository.ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "h"), repository.ErrUserNotFound)
}
