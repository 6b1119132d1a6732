package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repository is the read/write contract the auth core holds against the
// user-account store. Handed in at construction so tests can substitute the
// memory implementation.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const pgUniqueViolation = "23505"

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	const q = `
INSERT INTO users (id, email, password_hash, nickname, avatar, role, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id, email, password_hash, nickname, avatar, role, is_active, last_login, created_at
`
	var out User
	err := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Nickname,
		u.Avatar,
		u.Role,
		u.IsActive,
		u.CreatedAt,
	).Scan(
		&out.ID,
		&out.Email,
		&out.PasswordHash,
		&out.Nickname,
		&out.Avatar,
		&out.Role,
		&out.IsActive,
		&out.LastLogin,
		&out.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return out, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	const q = `
SELECT id, email, password_hash, nickname, avatar, role, is_active, last_login, created_at
FROM users
WHERE email = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	const q = `
SELECT id, email, password_hash, nickname, avatar, role, is_active, last_login, created_at
FROM users
WHERE id = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE users SET last_login = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Nickname,
		&u.Avatar,
		&u.Role,
		&u.IsActive,
		&u.LastLogin,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}
