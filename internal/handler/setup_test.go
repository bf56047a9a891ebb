package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/grassly/grassly/internal/cache"
	"github.com/grassly/grassly/internal/config"
	"github.com/grassly/grassly/internal/database"
	"github.com/grassly/grassly/internal/handler"
	appmw "github.com/grassly/grassly/internal/middleware"
	"github.com/grassly/grassly/internal/repository"
	"github.com/grassly/grassly/internal/router"
)

// testServer runs the full route stack against a fresh in-memory database.
// Rate limiting and caching are switched off so the tests exercise the
// handlers themselves; both have their own tests.
type testServer struct {
	*httptest.Server
	Cfg config.Config
	DB  *sql.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	cfg := config.Config{
		Env:            "test",
		Port:           "0",
		DBPath:         ":memory:",
		JWTSecret:      "test-access-secret",
		RefreshSecret:  "test-refresh-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
		CORSOrigin:     "http://localhost:5173",
	}

	users := repository.NewUserRepo(db)
	fields := repository.NewFieldRepo(db)
	fc := cache.NewFields(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	limiter := appmw.NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	router.Register(e, cfg, handler.NewAuthHandler(cfg, users), handler.NewFieldHandler(fields, fc), limiter, fc)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, Cfg: cfg, DB: db}
}

// postJSON sends a JSON body with an optional bearer token.
func (ts *testServer) postJSON(t *testing.T, path, token string, body any) *http.Response {
	t.Helper()
	return ts.doJSON(t, http.MethodPost, path, token, body)
}

func (ts *testServer) doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(bs)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// get performs an authenticated GET.
func (ts *testServer) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	return ts.doJSON(t, http.MethodGet, path, token, nil)
}

// decode reads a JSON response body into out and closes it.
func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// register creates a user through the API.
func (ts *testServer) register(t *testing.T, name, email, password string) {
	t.Helper()
	resp := ts.postJSON(t, "/api/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// login signs a user in and returns the access token and refresh cookie.
func (ts *testServer) login(t *testing.T, email, password string) (string, *http.Cookie) {
	t.Helper()
	resp := ts.postJSON(t, "/api/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	cookies := resp.Cookies()
	decode(t, resp, &out)
	require.NotEmpty(t, out.AccessToken)

	for _, ck := range cookies {
		if ck.Name == "refreshToken" {
			return out.AccessToken, ck
		}
	}
	t.Fatal("login response did not set the refreshToken cookie")
	return "", nil
}
