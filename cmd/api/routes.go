package main

import (
	"database/sql"
	"net/http"
	"time"

	"workspace-platform/internal/httpapi"
	"workspace-platform/internal/workspace"
	"workspace-platform/pkg/utils"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	handlers *httpapi.Handlers
	authMW   gin.HandlerFunc
	wsRepo   workspace.Repository
	db       *sql.DB
	metrics  gin.HandlerFunc
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, deps routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), deps.db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", deps.metrics)

	v1 := r.Group("/v1")
	{
		// Session lifecycle. Login/signup/refresh are anonymous by nature;
		// logout identifies the caller through the access token.
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", deps.handlers.Signup)
			authGroup.POST("/login", deps.handlers.Login)
			authGroup.POST("/refresh", deps.handlers.Refresh)
			authGroup.POST("/logout", deps.authMW, deps.handlers.Logout)
		}

		v1.GET("/me", deps.authMW, deps.handlers.Me)

		// Workspace-scoped routes: identity first, then membership.
		ws := v1.Group("/workspaces/:workspace_id")
		ws.Use(deps.authMW)
		{
			member := ws.Group("")
			member.Use(workspace.RequireMember(deps.wsRepo))
			{
				member.POST("/presence", deps.handlers.PresenceHeartbeat)
				member.GET("/presence", deps.handlers.PresenceOnline)
			}
		}
	}
}
