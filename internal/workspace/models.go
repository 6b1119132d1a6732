package workspace

import "time"

type Workspace struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time
}

// Member is an invitation row; Accepted gates authorization. The owner needs
// no Member row at all.
type Member struct {
	WorkspaceID string
	UserID      string
	Accepted    bool
	CreatedAt   time.Time
}

// Role is computed per request from the workspace owner and member rows.
// It is never stored or cached.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
	RoleNone   Role = "none"
)
