package workspace

import (
	"context"
	"errors"
	"net/http"

	"workspace-platform/internal/auth"
	"workspace-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ParamWorkspaceID is the route parameter consumed by both middleware
// variants (e.g. /v1/workspaces/:workspace_id/...).
const ParamWorkspaceID = "workspace_id"

const (
	CodeMissingWorkspaceID  = "MISSING_WORKSPACE_ID"
	CodeWorkspaceNotFound   = "WORKSPACE_NOT_FOUND"
	CodeAccessDenied        = "ACCESS_DENIED"
	CodeOwnerAccessRequired = "OWNER_ACCESS_REQUIRED"
	CodeServerError         = "SERVER_ERROR"
)

type isOwnerKey struct{}

func withIsOwner(ctx context.Context, isOwner bool) context.Context {
	return context.WithValue(ctx, isOwnerKey{}, isOwner)
}

// IsOwner reports whether the gated request was made by the workspace owner.
// Only meaningful after RequireMember or RequireOwner has run.
func IsOwner(ctx context.Context) bool {
	v, _ := ctx.Value(isOwnerKey{}).(bool)
	return v
}

// RequireMember grants owners and accepted members, annotating is_owner.
// Must run after auth.RequireAccessToken. The workspace id is validated
// before any query.
func RequireMember(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := gate(c, repo)
		if !ok {
			return
		}
		if role == RoleNone {
			abort(c, http.StatusForbidden, CodeAccessDenied, "no access to this workspace")
			return
		}
		attachRole(c, role)
		c.Next()
	}
}

// RequireOwner grants only the workspace owner.
func RequireOwner(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := gate(c, repo)
		if !ok {
			return
		}
		if role != RoleOwner {
			abort(c, http.StatusForbidden, CodeOwnerAccessRequired, "workspace owner access required")
			return
		}
		attachRole(c, role)
		c.Next()
	}
}

// gate runs the shared checks: workspace id present, identity present,
// workspace exists. Returns ok=false when the request was already aborted.
func gate(c *gin.Context, repo Repository) (Role, bool) {
	wsID := c.Param(ParamWorkspaceID)
	if wsID == "" {
		abort(c, http.StatusBadRequest, CodeMissingWorkspaceID, "workspace id required")
		return RoleNone, false
	}

	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		abort(c, http.StatusUnauthorized, auth.CodeMissingToken, "authorization token required")
		return RoleNone, false
	}

	role, err := ResolveRole(c.Request.Context(), repo, wsID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			abort(c, http.StatusNotFound, CodeWorkspaceNotFound, "workspace not found")
			return RoleNone, false
		}
		logger.FromGin(c).Error("workspace role resolution failed", "workspace_id", wsID, "err", err)
		abort(c, http.StatusInternalServerError, CodeServerError, "server error")
		return RoleNone, false
	}
	return role, true
}

func attachRole(c *gin.Context, role Role) {
	isOwner := role == RoleOwner
	c.Request = c.Request.WithContext(withIsOwner(c.Request.Context(), isOwner))
	c.Set("is_owner", isOwner)
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}
