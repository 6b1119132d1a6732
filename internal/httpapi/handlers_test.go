package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workspace-platform/internal/auth"
	"workspace-platform/internal/config"
	"workspace-platform/internal/presence"
	"workspace-platform/internal/session"
	"workspace-platform/internal/users"
	"workspace-platform/internal/workspace"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type testAPI struct {
	router *gin.Engine
	repo   *users.MemoryRepository
	wsRepo *workspace.MemoryRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := auth.NewCodec(config.AuthConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	repo := users.NewMemoryRepository()
	store := session.NewMemoryStore(repo)
	sessions := session.NewService(codec, store, repo, 7*24*time.Hour)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	wsRepo := workspace.NewMemoryRepository()

	h := &Handlers{
		Sessions: sessions,
		Users:    repo,
		Presence: presence.NewService(rdb, time.Minute),
	}

	r := gin.New()
	v1 := r.Group("/v1")
	{
		ag := v1.Group("/auth")
		ag.POST("/signup", h.Signup)
		ag.POST("/login", h.Login)
		ag.POST("/refresh", h.Refresh)
		ag.POST("/logout", auth.RequireAccessToken(codec), h.Logout)

		v1.GET("/me", auth.RequireAccessToken(codec), h.Me)

		ws := v1.Group("/workspaces/:workspace_id")
		ws.Use(auth.RequireAccessToken(codec))
		{
			ws.POST("/presence", workspace.RequireMember(wsRepo), h.PresenceHeartbeat)
			ws.GET("/presence", workspace.RequireMember(wsRepo), h.PresenceOnline)
		}
	}

	return &testAPI{router: r, repo: repo, wsRepo: wsRepo}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestSignupLoginMeRefreshLogoutFlow(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/v1/auth/signup", gin.H{
		"email": "a@x.com", "password": "correct-password", "nickname": "alice",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		User users.Public `json:"user"`
	}
	decode(t, w, &created)
	if created.User.Email != "a@x.com" || created.User.ID == "" {
		t.Fatalf("unexpected signup user: %+v", created.User)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Fatalf("signup response leaked password material: %s", w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/v1/auth/login", gin.H{
		"email": "a@x.com", "password": "correct-password",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var login struct {
		User         users.Public `json:"user"`
		AccessToken  string       `json:"accessToken"`
		RefreshToken string       `json:"refreshToken"`
	}
	decode(t, w, &login)
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatalf("login missing tokens: %s", w.Body.String())
	}

	w = a.do(t, http.MethodGet, "/v1/me", nil, login.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/v1/auth/refresh", gin.H{"refreshToken": login.RefreshToken}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", w.Code, w.Body.String())
	}
	var refreshed struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, w, &refreshed)
	if refreshed.AccessToken == "" {
		t.Fatalf("refresh missing access token: %s", w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/v1/auth/logout", nil, login.AccessToken)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/v1/auth/refresh", gin.H{"refreshToken": login.RefreshToken}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: %d %s", w.Code, w.Body.String())
	}
}

func TestSignupValidation(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/v1/auth/signup", gin.H{"email": "a@x.com"}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: %d", w.Code)
	}

	w = a.do(t, http.MethodPost, "/v1/auth/signup", gin.H{
		"email": "not-an-email", "password": "correct-password", "nickname": "n",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad email: %d", w.Code)
	}

	w = a.do(t, http.MethodPost, "/v1/auth/signup", gin.H{
		"email": "b@x.com", "password": "short", "nickname": "n",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password: %d", w.Code)
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	a := newTestAPI(t)

	body := gin.H{"email": "a@x.com", "password": "correct-password", "nickname": "alice"}
	if w := a.do(t, http.MethodPost, "/v1/auth/signup", body, ""); w.Code != http.StatusCreated {
		t.Fatalf("signup: %d", w.Code)
	}
	w := a.do(t, http.MethodPost, "/v1/auth/signup", body, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: %d %s", w.Code, w.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	a := newTestAPI(t)

	a.do(t, http.MethodPost, "/v1/auth/signup", gin.H{
		"email": "a@x.com", "password": "correct-password", "nickname": "alice",
	}, "")

	w := a.do(t, http.MethodPost, "/v1/auth/login", gin.H{
		"email": "a@x.com", "password": "wrong-password",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d %s", w.Code, w.Body.String())
	}
}

func TestRefreshFailuresAreIndistinguishable(t *testing.T) {
	a := newTestAPI(t)

	a.do(t, http.MethodPost, "/v1/auth/signup", gin.H{
		"email": "a@x.com", "password": "correct-password", "nickname": "alice",
	}, "")
	w := a.do(t, http.MethodPost, "/v1/auth/login", gin.H{
		"email": "a@x.com", "password": "correct-password",
	}, "")
	var login struct {
		User         users.Public `json:"user"`
		RefreshToken string       `json:"refreshToken"`
	}
	decode(t, w, &login)

	unknown := a.do(t, http.MethodPost, "/v1/auth/refresh", gin.H{"refreshToken": "never-issued"}, "")
	missing := a.do(t, http.MethodPost, "/v1/auth/refresh", gin.H{}, "")

	a.repo.SetActive(login.User.ID, false)
	inactive := a.do(t, http.MethodPost, "/v1/auth/refresh", gin.H{"refreshToken": login.RefreshToken}, "")

	for name, rec := range map[string]*httptest.ResponseRecorder{
		"unknown": unknown, "missing": missing, "inactive": inactive,
	} {
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
		if rec.Body.String() != unknown.Body.String() {
			t.Fatalf("%s: body differs: %q vs %q", name, rec.Body.String(), unknown.Body.String())
		}
	}
}

func TestPresenceThroughWorkspaceGate(t *testing.T) {
	a := newTestAPI(t)

	a.do(t, http.MethodPost, "/v1/auth/signup", gin.H{
		"email": "a@x.com", "password": "correct-password", "nickname": "alice",
	}, "")
	w := a.do(t, http.MethodPost, "/v1/auth/login", gin.H{
		"email": "a@x.com", "password": "correct-password",
	}, "")
	var login struct {
		User        users.Public `json:"user"`
		AccessToken string       `json:"accessToken"`
	}
	decode(t, w, &login)

	a.wsRepo.AddWorkspace(workspace.Workspace{ID: "ws-1", OwnerID: login.User.ID, Name: "general"})

	w = a.do(t, http.MethodPost, "/v1/workspaces/ws-1/presence", nil, login.AccessToken)
	if w.Code != http.StatusNoContent {
		t.Fatalf("heartbeat: %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodGet, "/v1/workspaces/ws-1/presence", nil, login.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("online: %d %s", w.Code, w.Body.String())
	}
	var online struct {
		Online  []string `json:"online"`
		IsOwner bool     `json:"isOwner"`
	}
	decode(t, w, &online)
	if len(online.Online) != 1 || online.Online[0] != login.User.ID || !online.IsOwner {
		t.Fatalf("unexpected presence payload: %s", w.Body.String())
	}

	// Not a member of this one.
	a.wsRepo.AddWorkspace(workspace.Workspace{ID: "ws-2", OwnerID: "someone-else"})
	w = a.do(t, http.MethodGet, "/v1/workspaces/ws-2/presence", nil, login.AccessToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-member, got %d %s", w.Code, w.Body.String())
	}

	// Gone workspace.
	w = a.do(t, http.MethodGet, "/v1/workspaces/ws-gone/presence", nil, login.AccessToken)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown workspace, got %d %s", w.Code, w.Body.String())
	}
}
