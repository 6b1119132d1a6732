package session

import (
	"context"
	"errors"
	"time"

	"workspace-platform/internal/auth"
	"workspace-platform/internal/users"
	"workspace-platform/pkg/password"
)

// Refresh failure kinds. The HTTP layer collapses all of them into one
// uniform 401 body so error variance cannot be used as a token-existence
// oracle; the distinction exists for logs and tests only.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrUserInactive        = errors.New("user is inactive")
)

// Service orchestrates the session lifecycle: login issues a token pair and
// persists the refresh record, refresh exchanges a live record for a new
// access token, logout invalidates every record for the user.
type Service struct {
	codec      *auth.Codec
	store      Store
	users      users.Repository
	refreshTTL time.Duration

	now func() time.Time
}

func NewService(codec *auth.Codec, store Store, usersRepo users.Repository, refreshTTL time.Duration) *Service {
	return &Service{
		codec:      codec,
		store:      store,
		users:      usersRepo,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

type LoginResult struct {
	User         users.Public
	AccessToken  string
	RefreshToken string
}

type RefreshResult struct {
	User        users.Public
	AccessToken string
}

// Login verifies credentials, updates last_login, issues a token pair and
// replaces any previous refresh record for the user. Unknown email, wrong
// password and deactivated account all collapse into ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !u.IsActive {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !password.Compare(u.PasswordHash, plainPassword) {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return LoginResult{}, err
	}

	access, err := s.codec.IssueAccess(now, u.ID, u.Email, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := s.codec.IssueRefresh(now, u.ID, u.Email, u.Role)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.store.Put(ctx, u.ID, refresh, now.Add(s.refreshTTL)); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		User:         u.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself is not rotated; rotation happens only at login/logout
// boundaries, and the single-record-per-user invariant bounds the blast
// radius of a leaked token.
//
// Check order matters: store row first, then row expiry, then account
// status, then signature. An expired or cryptographically invalid token is
// lazily deleted; an inactive user's record is kept so reactivation does not
// force a re-login.
func (s *Service) Refresh(ctx context.Context, token string) (RefreshResult, error) {
	rec, err := s.store.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return RefreshResult{}, ErrInvalidRefreshToken
		}
		return RefreshResult{}, err
	}

	now := s.now().UTC()
	if rec.ExpiresAt.Before(now) {
		if err := s.store.Invalidate(ctx, token); err != nil {
			return RefreshResult{}, err
		}
		return RefreshResult{}, ErrRefreshTokenExpired
	}

	if !rec.User.IsActive {
		return RefreshResult{}, ErrUserInactive
	}

	if _, err := s.codec.Verify(token, auth.TokenTypeRefresh, now); err != nil {
		if errors.Is(err, auth.ErrSecretUnset) {
			return RefreshResult{}, err
		}
		if invErr := s.store.Invalidate(ctx, token); invErr != nil {
			return RefreshResult{}, invErr
		}
		return RefreshResult{}, ErrInvalidRefreshToken
	}

	access, err := s.codec.IssueAccess(now, rec.User.ID, rec.User.Email, rec.User.Role)
	if err != nil {
		return RefreshResult{}, err
	}

	return RefreshResult{
		User:        rec.User.Public(),
		AccessToken: access,
	}, nil
}

// Logout deletes every refresh record for the user ("logout everywhere").
// Idempotent; zero deletions is a valid outcome.
func (s *Service) Logout(ctx context.Context, userID string) (int64, error) {
	return s.store.InvalidateAllForUser(ctx, userID)
}
