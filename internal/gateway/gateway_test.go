package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiva-console/internal/model"
	"kiva-console/pkg/apierror"
)

type staticToken string

func (s staticToken) GetToken(context.Context) (string, bool) {
	return string(s), s != ""
}

type captured struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

func backend(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.header = r.Header.Clone()
		got.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestBearerHeaderAttached(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"id":7,"username":"alice","role":"ADMIN"}`)
	gw := New(srv.URL+"/api", staticToken("abc.def.ghi"), Options{})

	user, err := gw.Users.Me(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer abc.def.ghi", got.header.Get("Authorization"))
	assert.NotEmpty(t, got.header.Get("X-Request-ID"))
	assert.Equal(t, "/api/users/me", got.path)
	assert.Equal(t, model.ID("7"), user.ID)
}

func TestNoTokenNoHeader(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"orderId":"1","status":"READY"}`)
	gw := New(srv.URL, staticToken(""), Options{})

	status, err := gw.Scan.Lookup(context.Background(), " tok 1 ")

	require.NoError(t, err)
	assert.Empty(t, got.header.Get("Authorization"))
	assert.Equal(t, "/qr/scan/tok 1", got.path)
	assert.Equal(t, "READY", status.Status)
}

func TestLoginPostsCredentials(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"token":"t","role":"ADMIN"}`)
	gw := New(srv.URL, nil, Options{})

	resp, err := gw.Auth.Login(context.Background(), "alice", "pw")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/users/login", got.path)
	assert.JSONEq(t, `{"username":"alice","password":"pw"}`, string(got.body))
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Equal(t, "t", resp.Token)
}

func TestForbiddenIsLoggedAndReturned(t *testing.T) {
	srv, _ := backend(t, http.StatusForbidden, `{"message":"admins only"}`)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	gw := New(srv.URL, staticToken("tok"), Options{Logger: logger})

	_, err := gw.Users.All(context.Background())

	require.Error(t, err)
	var httpErr *apierror.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.Status)
	assert.Equal(t, "admins only", httpErr.Message)
	assert.Equal(t, `{"message":"admins only"}`, httpErr.Body)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, http.MethodGet, entry["method"])
	assert.Contains(t, entry["url"], "/users/all")
	assert.Equal(t, `{"message":"admins only"}`, entry["body"])
}

func TestOtherErrorsAreNotLogged(t *testing.T) {
	srv, _ := backend(t, http.StatusUnauthorized, `{"message":"bad credentials"}`)

	var logs bytes.Buffer
	gw := New(srv.URL, nil, Options{Logger: slog.New(slog.NewJSONHandler(&logs, nil))})

	_, err := gw.Auth.Login(context.Background(), "alice", "nope")

	assert.Equal(t, http.StatusUnauthorized, apierror.StatusOf(err))
	assert.Equal(t, "bad credentials", apierror.MessageOf(err))
	assert.Empty(t, logs.String())
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	gw := New(srv.URL, nil, Options{Timeout: time.Second})
	_, err := gw.Orders.List(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Zero(t, apierror.StatusOf(err))
}

func TestFilterQuery(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{"content":[{"id":"1","status":"DONE"}],"totalElements":1,"totalPages":1,"number":0,"size":5}`)
	gw := New(srv.URL, nil, Options{})

	page, err := gw.Orders.Filter(context.Background(), model.FilterParams{SearchTerm: "iphone", Kind: "DONE", Page: 0, Size: 5})

	require.NoError(t, err)
	assert.Equal(t, "/orders/filter", got.path)
	assert.Equal(t, "page=0&searchTerm=iphone&size=5&status=DONE", got.query)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "DONE", page.Content[0].Status)

	_, err = gw.Devices.Filter(context.Background(), model.FilterParams{Kind: "PHONE"})
	require.NoError(t, err)
	assert.Equal(t, "/devices/filter", got.path)
	assert.Equal(t, "page=0&size=10&type=PHONE", got.query)
}

func TestResourcePaths(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `{}`)
	gw := New(srv.URL, nil, Options{})
	ctx := context.Background()

	_, err := gw.Clients.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "/clients/42", got.path)

	_, err = gw.Clients.Update(ctx, "42", model.Client{})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/clients/update/42", got.path)

	require.NoError(t, gw.Devices.Delete(ctx, "9"))
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/devices/delete/9", got.path)

	_, err = gw.Orders.Create(ctx, model.Order{Status: "RECEIVED"})
	require.NoError(t, err)
	assert.Equal(t, "/orders/create", got.path)
}

func TestOrderLogsByOrder(t *testing.T) {
	srv, got := backend(t, http.StatusOK, `[{"id":1,"status":"RECEIVED"}]`)
	gw := New(srv.URL, nil, Options{})

	logs, err := gw.OrderLogs.ByOrder(context.Background(), "5")

	require.NoError(t, err)
	assert.Equal(t, "/order-logs/by-order/5", got.path)
	assert.Len(t, logs, 1)
}

func TestLogoutWithEmptyBody(t *testing.T) {
	srv, got := backend(t, http.StatusNoContent, "")
	gw := New(srv.URL, staticToken("tok"), Options{})

	require.NoError(t, gw.Auth.Logout(context.Background()))
	assert.Equal(t, "/users/logout", got.path)
	assert.Equal(t, "Bearer tok", got.header.Get("Authorization"))
}

func TestRateLimitHonorsContext(t *testing.T) {
	srv, _ := backend(t, http.StatusOK, `[]`)
	gw := New(srv.URL, nil, Options{RateLimitRPS: 0.001})

	_, err := gw.Orders.List(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = gw.Orders.List(ctx)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestForbiddenBodyReachesCallerWhole(t *testing.T) {
	large := `{"message":"denied","detail":"` + strings.Repeat("x", maxLoggedBodySize+1024) + `"}`
	srv, _ := backend(t, http.StatusForbidden, large)

	var logs bytes.Buffer
	gw := New(srv.URL, staticToken("tok"), Options{Logger: slog.New(slog.NewJSONHandler(&logs, nil))})

	_, err := gw.Users.All(context.Background())

	var httpErr *apierror.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, large, httpErr.Body)
	assert.Equal(t, "denied", httpErr.Message)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Len(t, entry["body"], maxLoggedBodySize)
	assert.Equal(t, true, entry["body_truncated"])
}
