//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kiva-console/internal/app"
	"kiva-console/internal/config"
	"kiva-console/internal/handler"
	"kiva-console/internal/router"
	"kiva-console/internal/tokenstore/tokentest"
	"kiva-console/internal/view"
)

// shop is a stand-in for the repair shop backend.
type shop struct {
	srv     *httptest.Server
	logouts atomic.Int32
	bearer  atomic.Value
}

func newShop(t *testing.T) *shop {
	t.Helper()

	s := &shop{}
	s.bearer.Store("")
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct horse" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		role := "TECHNICIAN"
		if req.Username == "alice" {
			role = "ADMIN"
		}
		writeJSON(w, map[string]string{
			"token":    tokentest.Valid(t, req.Username, role),
			"username": req.Username,
			"fullName": strings.ToUpper(req.Username[:1]) + req.Username[1:],
		})
	})
	mux.HandleFunc("POST /users/logout", func(w http.ResponseWriter, _ *http.Request) {
		s.logouts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /orders/filter", func(w http.ResponseWriter, r *http.Request) {
		s.bearer.Store(r.Header.Get("Authorization"))
		writeJSON(w, map[string]any{
			"content":       []map[string]any{{"id": 1, "orderNumber": "ORD-1", "status": "RECEIVED"}},
			"totalElements": 1,
			"totalPages":    1,
		})
	})
	mux.HandleFunc("GET /users/all", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]any{{"id": 1, "username": "alice", "role": "ADMIN"}})
	})

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func testConfig(t *testing.T, backend string, statePath string) *config.Config {
	t.Helper()
	return &config.Config{
		APIBaseURL:        backend,
		RequestTimeout:    5 * time.Second,
		APITimeout:        2 * time.Second,
		LoginTimeout:      2 * time.Second,
		RestoreTimeout:    time.Second,
		LoginRateLimitRPM: 100,
		CORSOrigins:       []string{"*"},
		StorageDriver:     config.StorageDriverFile,
		StoragePath:       statePath,
		StorageKey:        "integration passphrase",
	}
}

// console boots the core the way cmd/console does and serves it.
type console struct {
	core   *app.Core
	srv    *httptest.Server
	client *http.Client
}

func startConsole(t *testing.T, cfg *config.Config) *console {
	t.Helper()

	core, err := app.NewCore(context.Background(), cfg)
	require.NoError(t, err)
	core.Session.Initialize(context.Background())

	views, err := view.New()
	require.NoError(t, err)
	presenter := handler.NewPresenter(views, core.Session)

	srv := httptest.NewServer(router.New(cfg, core.Session, router.Handlers{
		Presenter: presenter,
		Auth:      handler.NewAuthHandler(core.Session, presenter),
		Screens:   handler.NewScreenHandler(core.Gateway, presenter),
		Users:     handler.NewUserHandler(core.Session, core.Gateway.Users, presenter),
		QR:        handler.NewQRHandler(core.Gateway.Scan, presenter),
	}))

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	c := &console{
		core: core,
		srv:  srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	t.Cleanup(c.stop)
	return c
}

func (c *console) stop() {
	c.srv.Close()
	_ = c.core.Close()
}

func (c *console) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := c.client.Get(c.srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (c *console) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.client.PostForm(c.srv.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func statePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "session.json")
}
