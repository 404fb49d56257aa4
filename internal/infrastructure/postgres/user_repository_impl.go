package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/user-auth-service/internal/domain/entity"
	"github.com/oksasatya/user-auth-service/internal/domain/repository"
)

const (
	codeUniqueViolation  = "23505"
	codeInvalidTextValue = "22P02"

	userColumns = `id, email, password_hash, name, mobile_number, reset_token, reset_token_expiry, created_at, updated_at`
)

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type UserRepository struct {
	pool Querier
}

func NewUserRepository(pool Querier) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name, mobile_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.PasswordHash, nullable(u.Name), nullable(u.MobileNumber))

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// UpdateProfile only touches the supplied columns, in a single statement.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = COALESCE($2, name),
		    mobile_number = COALESCE($3, mobile_number),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, upd.Name, upd.MobileNumber))
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	return r.execOne(ctx, `
		UPDATE users SET reset_token = $2, reset_token_expiry = $3, updated_at = now() WHERE id = $1
	`, id, token, expiry.UTC())
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.execOne(ctx, `
		UPDATE users
		SET password_hash = $2, reset_token = NULL, reset_token_expiry = NULL, updated_at = now()
		WHERE id = $1
	`, id, hash)
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if pgCode(err) == codeInvalidTextValue {
			return repository.ErrUserNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u                      entity.User
		name, mobile, resetTok *string
		resetExp               *time.Time
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &mobile, &resetTok, &resetExp, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if name != nil {
		u.Name = *name
	}
	if mobile != nil {
		u.MobileNumber = *mobile
	}
	if resetTok != nil {
		u.ResetToken = *resetTok
	}
	if resetExp != nil {
		exp := resetExp.UTC()
		u.ResetTokenExpiry = &exp
	}
	return &u, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isMissing treats unknown rows and ids that are not valid uuids alike.
func isMissing(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidTextValue
}

var _ repository.UserRepository = (*UserRepository)(nil)
