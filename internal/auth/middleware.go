package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"workspace-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// Client-visible error codes. Clients branch on TOKEN_EXPIRED to trigger the
// refresh flow, so it must stay distinguishable from every other 401.
const (
	CodeMissingToken       = "MISSING_TOKEN"
	CodeInvalidTokenFormat = "INVALID_TOKEN_FORMAT"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidTokenType   = "INVALID_TOKEN_TYPE"
	CodeServerConfigError  = "SERVER_CONFIG_ERROR"
)

// RequireAccessToken verifies a bearer access token and injects the caller
// identity into request context. Workspace authorization is a separate stage;
// see internal/workspace.
func RequireAccessToken(codec *Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" {
			abort(c, http.StatusUnauthorized, CodeMissingToken, "authorization token required")
			return
		}
		if !strings.HasPrefix(raw, bearerPrefix) || strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix)) == "" {
			abort(c, http.StatusUnauthorized, CodeInvalidTokenFormat, "malformed authorization header")
			return
		}
		tok := strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))

		claims, err := codec.Verify(tok, TokenTypeAccess, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, ErrSecretUnset):
				logger.FromGin(c).Error("access token verification misconfigured", "err", err)
				abort(c, http.StatusInternalServerError, CodeServerConfigError, "server configuration error")
			case errors.Is(err, ErrTokenExpired):
				abort(c, http.StatusUnauthorized, CodeTokenExpired, "token expired")
			case errors.Is(err, ErrTokenTypeMismatch):
				abort(c, http.StatusForbidden, CodeInvalidTokenType, "wrong token type")
			default:
				abort(c, http.StatusForbidden, CodeInvalidToken, "invalid token")
			}
			return
		}

		id := Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))

		// Also store on gin context for handler convenience.
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)

		c.Next()
	}
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}
