package httpapi

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"workspace-platform/internal/auth"
	"workspace-platform/internal/presence"
	"workspace-platform/internal/session"
	"workspace-platform/internal/users"
	"workspace-platform/internal/workspace"
	"workspace-platform/pkg/logger"
	"workspace-platform/pkg/password"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeServerError         = "SERVER_ERROR"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const defaultRole = "user"

// Handlers carries the wired dependencies for all API endpoints.
// Construction happens in cmd/api; tests construct it over the memory
// implementations.
type Handlers struct {
	Sessions *session.Service
	Users    users.Repository
	Presence *presence.Service
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

func (h *Handlers) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeValidationError, "email, password and nickname are required")
		return
	}
	if req.Email == "" || req.Password == "" || req.Nickname == "" {
		fail(c, http.StatusBadRequest, CodeValidationError, "email, password and nickname are required")
		return
	}
	if !emailRe.MatchString(req.Email) {
		fail(c, http.StatusBadRequest, CodeValidationError, "invalid email format")
		return
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) {
			fail(c, http.StatusBadRequest, CodeValidationError, "password must be at least 6 characters")
			return
		}
		serverError(c, "password hashing failed", err)
		return
	}

	u, err := h.Users.Create(c.Request.Context(), users.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Nickname:     req.Nickname,
		Role:         defaultRole,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			fail(c, http.StatusConflict, CodeEmailTaken, "email already registered")
			return
		}
		serverError(c, "user creation failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": u.Public()})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, CodeValidationError, "email and password are required")
		return
	}

	res, err := h.Sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, CodeInvalidCredentials, "invalid email or password")
			return
		}
		serverError(c, "login failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         res.User,
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		// Same body as every other refresh 401; a missing token reveals
		// nothing the client did not already know.
		refreshDenied(c)
		return
	}

	res, err := h.Sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidRefreshToken),
			errors.Is(err, session.ErrRefreshTokenExpired),
			errors.Is(err, session.ErrUserInactive):
			// Uniform 401: the specific check that failed goes to the log,
			// never to the client, so error variance cannot be used as a
			// token-existence oracle.
			logger.FromGin(c).Info("refresh denied", "reason", err.Error())
			refreshDenied(c)
		default:
			serverError(c, "refresh failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": res.AccessToken,
		"user":        res.User,
	})
}

func (h *Handlers) Logout(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		fail(c, http.StatusUnauthorized, auth.CodeMissingToken, "authorization token required")
		return
	}

	n, err := h.Sessions.Logout(c.Request.Context(), userID)
	if err != nil {
		serverError(c, "logout failed", err)
		return
	}
	logger.FromGin(c).Info("logout", "user_id", userID, "tokens_deleted", n)

	c.Status(http.StatusNoContent)
}

func (h *Handlers) Me(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		fail(c, http.StatusUnauthorized, auth.CodeMissingToken, "authorization token required")
		return
	}

	u, err := h.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			fail(c, http.StatusUnauthorized, auth.CodeInvalidToken, "unknown user")
			return
		}
		serverError(c, "user lookup failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u.Public()})
}

func (h *Handlers) PresenceHeartbeat(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		fail(c, http.StatusUnauthorized, auth.CodeMissingToken, "authorization token required")
		return
	}
	wsID := c.Param(workspace.ParamWorkspaceID)

	if err := h.Presence.Heartbeat(c.Request.Context(), wsID, userID); err != nil {
		serverError(c, "presence heartbeat failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) PresenceOnline(c *gin.Context) {
	wsID := c.Param(workspace.ParamWorkspaceID)

	online, err := h.Presence.Online(c.Request.Context(), wsID)
	if err != nil {
		serverError(c, "presence lookup failed", err)
		return
	}
	if online == nil {
		online = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"online": online, "isOwner": workspace.IsOwner(c.Request.Context())})
}

func fail(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

func refreshDenied(c *gin.Context) {
	fail(c, http.StatusUnauthorized, CodeInvalidRefreshToken, "invalid refresh token")
}

func serverError(c *gin.Context, logMsg string, err error) {
	logger.FromGin(c).Error(logMsg, "err", err)
	fail(c, http.StatusInternalServerError, CodeServerError, "server error")
}
