package session

import (
	"context"
	"errors"
	"time"

	"workspace-platform/internal/users"
)

var ErrRecordNotFound = errors.New("refresh token not found")

// Record maps an opaque refresh token string to its owning user. User is
// denormalized at lookup time so the refresh flow needs no second query;
// the password hash is never loaded.
type Record struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	User      users.User
}

// Store is the durable refresh-token mapping. Implementations must keep Put
// atomic: replacing a user's tokens may never leave two live records, even
// under concurrent logins for the same user.
type Store interface {
	// Put deletes all existing records for userID and inserts the new one,
	// in a single transaction. Last writer wins.
	Put(ctx context.Context, userID, token string, expiresAt time.Time) error

	// Lookup returns the record for token, with denormalized user fields.
	Lookup(ctx context.Context, token string) (Record, error)

	// Invalidate deletes the matching record. Deleting an absent token is
	// not an error.
	Invalidate(ctx context.Context, token string) error

	// InvalidateAllForUser deletes every record for userID and returns the
	// count deleted; zero is a valid result.
	InvalidateAllForUser(ctx context.Context, userID string) (int64, error)
}
