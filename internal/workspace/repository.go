package workspace

import (
	"context"
	"database/sql"
	"errors"
)

// Workspace absence and membership absence are distinct failure kinds; the
// middleware maps the former to 404 and the latter to 403.
var (
	ErrNotFound       = errors.New("workspace not found")
	ErrMemberNotFound = errors.New("workspace member not found")
)

// Repository is the read contract needed to resolve a caller's workspace
// role. Injected so tests can use the memory implementation.
type Repository interface {
	FindWorkspace(ctx context.Context, id string) (Workspace, error)
	FindAcceptedMember(ctx context.Context, workspaceID, userID string) (Member, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindWorkspace(ctx context.Context, id string) (Workspace, error) {
	const q = `
SELECT id, owner_id, name, created_at
FROM workspaces
WHERE id = $1
`
	var w Workspace
	err := r.db.QueryRowContext(ctx, q, id).Scan(&w.ID, &w.OwnerID, &w.Name, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workspace{}, ErrNotFound
		}
		return Workspace{}, err
	}
	return w, nil
}

func (r *PostgresRepository) FindAcceptedMember(ctx context.Context, workspaceID, userID string) (Member, error) {
	const q = `
SELECT workspace_id, user_id, accepted, created_at
FROM workspace_members
WHERE workspace_id = $1 AND user_id = $2 AND accepted = TRUE
`
	var m Member
	err := r.db.QueryRowContext(ctx, q, workspaceID, userID).Scan(&m.WorkspaceID, &m.UserID, &m.Accepted, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Member{}, ErrMemberNotFound
		}
		return Member{}, err
	}
	return m, nil
}
