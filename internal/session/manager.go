// Package session owns the console's authentication state: restoring it from
// storage at start, logging in and out, and registering accounts on behalf of
// an administrator.
//
// The role checks exposed here only decide what to render. The backend
// re-authorizes every request on its own.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"kiva-console/internal/event"
	"kiva-console/internal/model"
)

// AuthClient is the backend's auth endpoint group.
type AuthClient interface {
	Login(ctx context.Context, username string, password string) (*model.LoginResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Logout(ctx context.Context) error
}

// TokenStore persists the credential and the serialized session user.
type TokenStore interface {
	GetToken(ctx context.Context) (string, bool)
	SetToken(ctx context.Context, token string) error
	RemoveToken(ctx context.Context) error
	SaveUser(ctx context.Context, user model.SessionUser) error
	LoadUser(ctx context.Context) (*model.SessionUser, error)
	DecodeToken(token string) (*model.Claims, bool)
	IsTokenValid(token string) bool
}

type Options struct {
	// LoginTimeout bounds one backend login call. Zero means no bound.
	LoginTimeout time.Duration
	// RestoreTimeout bounds the restore procedure. Zero means no bound.
	RestoreTimeout time.Duration
	// LogoutTimeout bounds the best-effort backend logout call.
	LogoutTimeout time.Duration
	// DefaultRole is sent on registration when none is given.
	DefaultRole string
	Bus         event.Bus
	Logger      *slog.Logger
}

type Manager struct {
	auth   AuthClient
	tokens TokenStore
	opts   Options
	log    *slog.Logger

	mu    sync.RWMutex
	state State

	initOnce    sync.Once
	initialized chan struct{}
	loggingIn   atomic.Bool
}

func NewManager(auth AuthClient, tokens TokenStore, opts Options) *Manager {
	if opts.DefaultRole == "" {
		opts.DefaultRole = model.RoleUser
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Manager{
		auth:   auth,
		tokens: tokens,
		opts:   opts,
		log:    log.With("component", "session"),
		state: State{
			Status:    StatusUninitialized,
			IsLoading: true,
		},
		initialized: make(chan struct{}),
	}
}

// State returns a copy of the current session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

// Initialized is closed once the first restore has finished.
func (m *Manager) Initialized() <-chan struct{} {
	return m.initialized
}

// Initialize restores the session from storage. Only the first call does any
// work; later calls wait for it and return the same outcome.
func (m *Manager) Initialize(ctx context.Context) State {
	m.initOnce.Do(func() {
		m.mu.Lock()
		m.state.Status = StatusRestoring
		m.state.IsLoading = true
		m.mu.Unlock()

		user := m.restore(ctx)

		m.mu.Lock()
		if user != nil {
			m.state.Status = StatusAuthenticated
		} else {
			m.state.Status = StatusUnauthenticated
		}
		m.state.CurrentUser = user
		m.state.IsAuthenticated = user != nil
		m.state.AuthInitialized = true
		m.state.IsLoading = false
		snapshot := m.state.clone()
		m.mu.Unlock()

		close(m.initialized)
		m.publish(event.TypeSessionRestored, snapshot)
		m.log.Info("session restored", "authenticated", snapshot.IsAuthenticated, "username", snapshot.Username())
	})

	<-m.initialized
	return m.State()
}

// restore returns the stored session user, or nil after clearing storage.
// It never fails open: any error or panic ends in an empty session.
func (m *Manager) restore(ctx context.Context) (user *model.SessionUser) {
	if m.opts.RestoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.RestoreTimeout)
		defer cancel()
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			m.log.Warn("session restore panicked", "error", fmt.Sprint(recovered))
			m.clearStorage(ctx)
			user = nil
		}
	}()

	token, ok := m.tokens.GetToken(ctx)
	if ok && m.tokens.IsTokenValid(token) {
		stored, err := m.tokens.LoadUser(ctx)
		if err != nil {
			m.log.Warn("stored session user unreadable", "error", err)
		}
		if err == nil && stored != nil {
			if claims, ok := m.tokens.DecodeToken(token); ok {
				if claims.Role != "" {
					stored.Role = claims.Role
				}
				if claims.ExpiresAt != nil {
					stored.Exp = claims.ExpiresAt.Unix()
				}
			}
			stored.Token = token
			return stored
		}
	}

	m.clearStorage(ctx)
	return nil
}

// Login authenticates against the backend. A second call while one is in
// flight fails with ErrLoginInProgress and leaves the session untouched.
// Errors are always *AuthError.
func (m *Manager) Login(ctx context.Context, username string, password string) (*model.SessionUser, error) {
	if !m.loggingIn.CompareAndSwap(false, true) {
		return nil, &AuthError{Message: MsgLoginInProgress, Err: ErrLoginInProgress}
	}
	defer m.loggingIn.Store(false)

	m.setLoading(true)
	defer m.setLoading(false)

	user, err := m.login(ctx, username, password)
	if err != nil {
		m.log.Warn("login failed", "username", username, "error", err.Unwrap())
		m.publish(event.TypeSessionLoginFailed, m.State())
		return nil, err
	}

	m.mu.Lock()
	m.state.Status = StatusAuthenticated
	m.state.CurrentUser = user
	m.state.IsAuthenticated = true
	snapshot := m.state.clone()
	m.mu.Unlock()

	m.log.Info("logged in", "username", user.Username, "role", user.Role)
	m.publish(event.TypeSessionLoggedIn, snapshot)

	out := *user
	return &out, nil
}

func (m *Manager) login(ctx context.Context, username string, password string) (user *model.SessionUser, authErr *AuthError) {
	defer func() {
		if recovered := recover(); recovered != nil {
			user = nil
			authErr = &AuthError{Message: MsgLoginFailed, Err: fmt.Errorf("login panicked: %v", recovered)}
		}
	}()

	if m.opts.LoginTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.LoginTimeout)
		defer cancel()
	}

	resp, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return nil, &AuthError{Message: describeLoginError(err), Err: err}
	}
	if resp == nil || strings.TrimSpace(resp.Token) == "" {
		return nil, &AuthError{Message: MsgNoToken, Err: ErrNoToken}
	}

	token := strings.TrimSpace(resp.Token)
	claims, ok := m.tokens.DecodeToken(token)
	if !ok {
		claims = &model.Claims{}
	}
	built := buildUser(resp, claims, username, token)

	previous := m.State().CurrentUser

	if err := m.tokens.SetToken(ctx, token); err != nil {
		m.rollback(ctx, previous)
		return nil, &AuthError{Message: MsgLoginFailed, Err: err}
	}
	if err := m.tokens.SaveUser(ctx, *built); err != nil {
		m.rollback(ctx, previous)
		return nil, &AuthError{Message: MsgLoginFailed, Err: err}
	}

	return built, nil
}

// rollback puts the previous session back into storage after a half-written
// login. When that is impossible the session is dropped from memory too, so
// memory and storage never disagree.
func (m *Manager) rollback(ctx context.Context, previous *model.SessionUser) {
	ctx = context.WithoutCancel(ctx)

	if previous != nil && previous.Token != "" {
		err := m.tokens.SetToken(ctx, previous.Token)
		if err == nil {
			err = m.tokens.SaveUser(ctx, *previous)
		}
		if err == nil {
			return
		}
		m.log.Warn("restoring previous session failed; signing out", "username", previous.Username, "error", err)
	}

	m.clearStorage(ctx)
	if previous == nil {
		return
	}

	m.mu.Lock()
	m.state.Status = StatusUnauthenticated
	m.state.CurrentUser = nil
	m.state.IsAuthenticated = false
	snapshot := m.state.clone()
	m.mu.Unlock()

	m.publish(event.TypeSessionLoggedOut, snapshot)
}

// buildUser applies the field precedence: login response, then token
// claims, then what the caller typed.
func buildUser(resp *model.LoginResponse, claims *model.Claims, username string, token string) *model.SessionUser {
	user := &model.SessionUser{
		Username: firstNonEmpty(resp.Username, claims.Subject, username),
		Role:     firstNonEmpty(resp.Role, claims.Role, model.RoleUser),
		FullName: firstNonEmpty(resp.FullName, resp.Name, claims.FullName),
		Email:    firstNonEmpty(resp.Email, claims.Email),
		UserID:   model.ID(firstNonEmpty(resp.UserID.String(), claims.UserID.String())),
		Token:    token,
	}
	if claims.ExpiresAt != nil {
		user.Exp = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		user.Iat = claims.IssuedAt.Unix()
	}
	return user
}

// Logout tells the backend on a best-effort basis and then always clears the
// local session.
func (m *Manager) Logout(ctx context.Context) {
	username := m.State().Username()

	m.notifyLogout(ctx)

	cleanup := context.WithoutCancel(ctx)
	m.clearStorage(cleanup)

	m.mu.Lock()
	m.state.Status = StatusUnauthenticated
	m.state.CurrentUser = nil
	m.state.IsAuthenticated = false
	snapshot := m.state.clone()
	m.mu.Unlock()

	m.log.Info("logged out", "username", username)
	m.publish(event.TypeSessionLoggedOut, snapshot)
}

func (m *Manager) notifyLogout(ctx context.Context) {
	defer func() {
		if recovered := recover(); recovered != nil {
			m.log.Warn("backend logout panicked", "error", fmt.Sprint(recovered))
		}
	}()

	if m.opts.LogoutTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.LogoutTimeout)
		defer cancel()
	}

	if err := m.auth.Logout(ctx); err != nil {
		m.log.Warn("backend logout failed; clearing local session anyway", "error", err)
	}
}

// Register creates an account. It does not touch the current session.
func (m *Manager) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		req.Role = m.opts.DefaultRole
	}

	created, err := m.auth.Register(ctx, req)
	if err != nil {
		m.log.Warn("registration failed", "username", req.Username, "error", err)
		return nil, &AuthError{Message: describeRegisterError(err), Err: err}
	}
	if created == nil {
		created = &model.User{Username: req.Username, Email: req.Email, Phone: req.Phone, Role: req.Role}
	}

	m.log.Info("user registered", "username", req.Username, "role", req.Role)
	return created, nil
}

// HasRole is an exact, case-sensitive role match.
func (m *Manager) HasRole(role string) bool {
	current := m.State()
	return current.CurrentUser != nil && current.CurrentUser.Role == role
}

// IsAdmin accepts ADMIN or ADMINISTRATOR in any case.
func (m *Manager) IsAdmin() bool {
	current := m.State()
	return current.CurrentUser != nil && model.IsAdminRole(current.CurrentUser.Role)
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	m.state.IsLoading = loading
	snapshot := m.state.clone()
	m.mu.Unlock()

	if loading {
		m.publish(event.TypeSessionLoading, snapshot)
	}
}

func (m *Manager) clearStorage(ctx context.Context) {
	if err := m.tokens.RemoveToken(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			err = m.tokens.RemoveToken(context.WithoutCancel(ctx))
		}
		if err != nil {
			m.log.Warn("clearing stored session failed", "error", err)
		}
	}
}

func (m *Manager) publish(t event.Type, snapshot State) {
	if m.opts.Bus == nil {
		return
	}
	public := snapshot.Public()
	m.opts.Bus.Publish(event.New(t, public.Username(), public))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
