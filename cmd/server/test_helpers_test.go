package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zapzatron/ToDo-List-API/internal/config"
	"github.com/Zapzatron/ToDo-List-API/internal/mocks"
)

const testJWTSecret = "test-secret-that-is-at-least-32-characters-long"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:                   8080,
			LogLevel:               "debug",
			ShutdownTimeoutSeconds: 1,
		},
		Database: config.DatabaseConfig{URL: "postgres://localhost/todo"},
		Auth: config.AuthConfig{
			JWTSecret:            testJWTSecret,
			TokenLifetimeMinutes: 30,
			BcryptCost:           4,
			GrantPolicy:          config.GrantPolicyAny,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer runs the full router over in-memory stores.
type testServer struct {
	t      *testing.T
	app    *application
	server *httptest.Server
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore()
	tasks.Users = users

	app, err := newApplicationWithStores(cfg, testLogger(), nil, users, tasks)
	require.NoError(t, err)

	server := httptest.NewServer(app.setupRouter())
	t.Cleanup(server.Close)

	return &testServer{t: t, app: app, server: server}
}

// do sends a request and decodes a JSON response into out when out is non-nil.
func (s *testServer) do(method, path, token string, body any, out any) int {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(s.t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) post(path, token string, body any, out any) int {
	s.t.Helper()
	return s.do(http.MethodPost, path, token, body, out)
}

// register creates a user and returns its ID.
func (s *testServer) register(username, password string) int64 {
	s.t.Helper()

	var user struct {
		ID int64 `json:"id"`
	}
	status := s.post("/users/create", "", map[string]string{"username": username, "password": password}, &user)
	require.Equal(s.t, http.StatusOK, status)
	return user.ID
}

// login returns an access token for the user.
func (s *testServer) login(username, password string) string {
	s.t.Helper()

	var token struct {
		AccessToken string `json:"access_token"`
	}
	status := s.post("/users/get_token", "", map[string]string{"username": username, "password": password}, &token)
	require.Equal(s.t, http.StatusOK, status)
	require.NotEmpty(s.t, token.AccessToken)
	return token.AccessToken
}
