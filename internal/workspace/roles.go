package workspace

import (
	"context"
	"errors"
)

// ResolveRole computes the caller's role for a workspace. Owner wins without
// a member row; an accepted member row grants Member; anything else is None.
// ErrNotFound propagates when the workspace itself does not exist.
func ResolveRole(ctx context.Context, repo Repository, workspaceID, userID string) (Role, error) {
	ws, err := repo.FindWorkspace(ctx, workspaceID)
	if err != nil {
		return RoleNone, err
	}
	if ws.OwnerID == userID {
		return RoleOwner, nil
	}

	if _, err := repo.FindAcceptedMember(ctx, workspaceID, userID); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return RoleNone, nil
		}
		return RoleNone, err
	}
	return RoleMember, nil
}
