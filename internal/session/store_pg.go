package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"workspace-platform/pkg/utils"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, userID, token string, expiresAt time.Time) error {
	// Delete-then-insert must be one transaction: two concurrent logins for
	// the same user may each see zero prior rows, and only serialization of
	// the delete guarantees a single surviving record.
	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO refresh_tokens (token, user_id, expires_at, created_at)
VALUES ($1,$2,$3,$4)
`, token, userID, expiresAt, time.Now().UTC())
		return err
	})
}

func (s *PostgresStore) Lookup(ctx context.Context, token string) (Record, error) {
	const q = `
SELECT rt.token, rt.user_id, rt.expires_at, rt.created_at,
       u.id, u.email, u.nickname, u.avatar, u.role, u.is_active
FROM refresh_tokens rt
JOIN users u ON u.id = rt.user_id
WHERE rt.token = $1
`
	var rec Record
	err := s.db.QueryRowContext(ctx, q, token).Scan(
		&rec.Token,
		&rec.UserID,
		&rec.ExpiresAt,
		&rec.CreatedAt,
		&rec.User.ID,
		&rec.User.Email,
		&rec.User.Nickname,
		&rec.User.Avatar,
		&rec.User.Role,
		&rec.User.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *PostgresStore) Invalidate(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (s *PostgresStore) InvalidateAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
