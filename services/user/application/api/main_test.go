package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/facebookgo/clock"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/pkg/logger"
	appsvcs "github.com/ghuser/auctionhouse/services/user/application/services"
	"github.com/ghuser/auctionhouse/services/user/infrastructure/persistence/memory"
)

func newRouter() http.Handler {
	a := &app.Application{
		Logger: logger.Discard(),
		SessionStore: sessions.NewCookieStore(
			[]byte("test-auth-key-must-be-32-bytes!!"),
			[]byte("test-enc-key-must-be-32-bytes!!!"),
		),
	}
	svcs := &appsvcs.Services{
		User: appsvcs.NewUserService(memory.NewUserRepository(), clock.NewMock(), a.Logger),
	}
	r := chi.NewRouter()
	Mount(r, svcs, a)
	return r
}

func do(h http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuthFlow(t *testing.T) {
	h := newRouter()

	w := do(h, http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"s3cret-pass"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotEmpty(t, w.Result().Cookies())
	require.NotContains(t, w.Body.String(), "password")

	var registered map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	require.Equal(t, "alice", registered["username"])

	me := do(h, http.MethodGet, "/auth/me", "", w.Result().Cookies())
	require.Equal(t, http.StatusOK, me.Code)
	require.Contains(t, me.Body.String(), `"alice@example.com"`)

	require.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/auth/me", "", nil).Code)

	login := do(h, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"s3cret-pass"}`, nil)
	require.Equal(t, http.StatusOK, login.Code)
	require.NotEmpty(t, login.Result().Cookies())

	logout := do(h, http.MethodPost, "/auth/logout", "", login.Result().Cookies())
	require.Equal(t, http.StatusNoContent, logout.Code)
	for _, c := range logout.Result().Cookies() {
		require.Less(t, c.MaxAge, 0)
	}
}

func TestAuthErrors(t *testing.T) {
	h := newRouter()
	require.Equal(t, http.StatusCreated,
		do(h, http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"s3cret-pass"}`, nil).Code)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"duplicate user", "/auth/register", `{"username":"Alice","email":"a2@example.com","password":"s3cret-pass"}`, http.StatusConflict},
		{"invalid json", "/auth/register", `{`, http.StatusBadRequest},
		{"short password", "/auth/register", `{"username":"bob","email":"bob@example.com","password":"x"}`, http.StatusUnprocessableEntity},
		{"bad username", "/auth/register", `{"username":"bob smith","email":"bob@example.com","password":"s3cret-pass"}`, http.StatusUnprocessableEntity},
		{"wrong password", "/auth/login", `{"email":"alice@example.com","password":"nope-nope"}`, http.StatusUnauthorized},
		{"unknown email", "/auth/login", `{"email":"carol@example.com","password":"s3cret-pass"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, http.MethodPost, tt.path, tt.body, nil)
			require.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
