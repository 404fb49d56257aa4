package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/oksasatya/user-auth-service/internal/domain/entity"
	"github.com/oksasatya/user-auth-service/internal/domain/repository"
	"github.com/oksasatya/user-auth-service/internal/infrastructure/migrations"
)

const userColumns = `id, email, password_hash, name, mobile_number, reset_token, reset_token_expiry, created_at, updated_at`

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// UserRepository implements user persistence over a single SQLite file.
type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the SQLite database at path and applies the bundled migrations.
func Open(path string, logger logrus.FieldLogger) (*UserRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrations.RunSQLite(db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &UserRepository{db: db, now: time.Now}, nil
}

func (r *UserRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	now := r.now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, mobile_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, nullable(u.Name), nullable(u.MobileNumber), toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	var name, mobile sql.NullString
	if upd.Name != nil {
		name = sql.NullString{String: *upd.Name, Valid: true}
	}
	if upd.MobileNumber != nil {
		mobile = sql.NullString{String: *upd.MobileNumber, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET name = COALESCE(?, name), mobile_number = COALESCE(?, mobile_number), updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns, name, mobile, toMillis(r.now()), id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	return r.execOne(ctx, `
		UPDATE users SET reset_token = ?, reset_token_expiry = ?, updated_at = ? WHERE id = ?
	`, token, toMillis(expiry), toMillis(r.now()), id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.execOne(ctx, `
		UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expiry = NULL, updated_at = ? WHERE id = ?
	`, hash, toMillis(r.now()), id)
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*entity.User, error) {
	var (
		u                      entity.User
		name, mobile, resetTok sql.NullString
		resetExp               sql.NullInt64
		createdAt, updatedAt   int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &mobile, &resetTok, &resetExp, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.Name = name.String
	u.MobileNumber = mobile.String
	u.ResetToken = resetTok.String
	if resetExp.Valid {
		exp := fromMillis(resetExp.Int64)
		u.ResetTokenExpiry = &exp
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") && strings.Contains(message, "users.email")
}

var _ repository.UserRepository = (*UserRepository)(nil)
