package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-auth-service/config"
	"github.com/oksasatya/user-auth-service/internal/container"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newApp(t *testing.T, mutate func(*config.Config)) (*gin.Engine, *container.Container) {
	t.Helper()
	cfg := &config.Config{
		AppName:            "User Authentication API",
		Env:                "test",
		JWTSecret:          "router-secret",
		AccessTTL:          time.Hour,
		ResetTokenTTL:      time.Hour,
		PasswordHasher:     "argon2id",
		Argon2Memory:       8 * 1024,
		Argon2Time:         1,
		Argon2Parallelism:  1,
		StoreDriver:        config.StoreMemory,
		CORSAllowedOrigins: "*",
	}
	if mutate != nil {
		mutate(cfg)
	}
	logger, _ := test.NewNullLogger()
	c, err := container.Build(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return NewEngine(c), c
}

func call(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func field(t *testing.T, w *httptest.ResponseRecorder, key string) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	s, _ := m[key].(string)
	return s
}

func TestAccountLifecycle(t *testing.T) {
	r, c := newApp(t, nil)

	w := call(r, http.MethodPost, "/api/auth/signup", `{"email":"Ada@Example.com","password":"secret1","name":"Ada"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	signupToken := field(t, w, "token")

	w = call(r, http.MethodGet, "/api/profile", "", signupToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", field(t, w, "email"))
	assert.Equal(t, "Ada", field(t, w, "name"))

	w = call(r, http.MethodPut, "/api/profile", `{"mobileNumber":"+44 20 7946 0958"}`, signupToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ada", field(t, w, "name"))
	assert.NotEmpty(t, field(t, w, "mobileNumber"))

	w = call(r, http.MethodPost, "/api/auth/forget-password", `{"email":"ADA@example.com"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	u, err := c.Repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, u.ResetToken)

	w = call(r, http.MethodPost, "/api/auth/reset-password", `{"token":"`+u.ResetToken+`","password":"brandnew"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(r, http.MethodPost, "/api/auth/reset-password", `{"token":"`+u.ResetToken+`","password":"again123"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"brandnew"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, field(t, w, "token"))
}

func TestResetTokenIsNotASession(t *testing.T) {
	r, c := newApp(t, nil)
	call(r, http.MethodPost, "/api/auth/signup", `{"email":"a@x.com","password":"secret1"}`, "")
	call(r, http.MethodPost, "/api/auth/forget-password", `{"email":"a@x.com"}`, "")
	u, err := c.Repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	w := call(r, http.MethodGet, "/api/profile", "", u.ResetToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSystemRoutes(t *testing.T) {
	r, _ := newApp(t, nil)

	w := call(r, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Version, field(t, w, "version"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = call(r, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, "ok", field(t, w, "status"))

	w = call(r, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", field(t, w, "error"))
}

func TestDebugVarsToggle(t *testing.T) {
	r, _ := newApp(t, nil)
	w := call(r, http.MethodGet, "/api/debug/vars", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	r, _ = newApp(t, func(cfg *config.Config) { cfg.DebugMetricsEnabled = true })
	call(r, http.MethodPost, "/api/auth/signup", `{"email":"a@x.com","password":"secret1"}`, "")
	w = call(r, http.MethodGet, "/api/debug/vars", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var vars struct {
		Auth map[string]int64 `json:"auth"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vars))
	assert.GreaterOrEqual(t, vars.Auth["signup"], int64(1))
}

func TestCORS(t *testing.T) {
	r, _ := newApp(t, func(cfg *config.Config) { cfg.CORSAllowedOrigins = "https://app.example" })

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOversizedBody(t *testing.T) {
	r, _ := newApp(t, nil)
	big := `{"email":"a@x.com","password":"` + strings.Repeat("x", 2<<20) + `"}`

	w := call(r, http.MethodPost, "/api/auth/signup", big, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "request body is too large")
}
