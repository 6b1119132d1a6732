package users

import "time"

// User is the account record as stored. The auth core reads it and updates
// last_login on successful login; everything else belongs to account
// management.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Nickname     string
	Avatar       string
	Role         string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// Public is the client-facing view. It must never carry the password hash.
type Public struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() Public {
	return Public{
		ID:        u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		Role:      u.Role,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}
