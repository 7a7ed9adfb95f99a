// Package tokenstore persists the bearer credential and the serialized
// session user, and answers whether a credential is still usable.
//
// Nothing in this package returns an error for a malformed credential: a
// token that cannot be decoded is simply not valid.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kiva-console/internal/model"
	"kiva-console/internal/storage"
)

const (
	TokenKey = "kivaToken"
	UserKey  = "kivaUser"
)

type Store struct {
	storage storage.Storage
	parser  *jwt.Parser
	now     func() time.Time
}

func New(s storage.Storage) *Store {
	return &Store{
		storage: s,
		parser:  jwt.NewParser(jwt.WithPaddingAllowed()),
		now:     time.Now,
	}
}

// WithClock replaces the time source used by IsTokenValid.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// GetToken returns the stored credential. A read failure is reported as
// absent.
func (s *Store) GetToken(ctx context.Context) (string, bool) {
	token, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("token read failed", "error", err)
		}
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// RemoveToken clears both the credential and the serialized user.
func (s *Store) RemoveToken(ctx context.Context) error {
	if err := s.storage.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

func (s *Store) SaveUser(ctx context.Context, user model.SessionUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, UserKey, string(data)); err != nil {
		return fmt.Errorf("persist session user: %w", err)
	}
	return nil
}

// LoadUser returns the serialized session user, nil when none is stored, or an
// error when the stored value cannot be read or parsed.
func (s *Store) LoadUser(ctx context.Context) (*model.SessionUser, error) {
	raw, err := s.storage.Get(ctx, UserKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var user model.SessionUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: session user: %v", storage.ErrCorrupt, err)
	}
	return &user, nil
}

// DecodeToken parses the payload segment without verifying the signature.
// The backend re-authorizes every request, so the claims are only used to
// decide what to render.
func (s *Store) DecodeToken(token string) (*model.Claims, bool) {
	payload, ok := s.payload(token)
	if !ok {
		return nil, false
	}

	var claims model.Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}
	return &claims, true
}

// IsTokenValid reports whether token decodes and its exp lies strictly in the
// future. exp is compared as sent, fractional seconds included.
func (s *Store) IsTokenValid(token string) bool {
	payload, ok := s.payload(token)
	if !ok {
		return false
	}

	var claims model.Claims
	if err := json.Unmarshal(payload, &claims); err != nil || claims.ExpiresAt == nil {
		return false
	}

	// NumericDate truncates to whole seconds; read exp again as sent.
	var raw struct {
		Exp json.Number `json:"exp"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return false
	}
	exp, err := raw.Exp.Float64()
	if err != nil {
		return false
	}

	now := s.now()
	return exp > float64(now.Unix())+float64(now.Nanosecond())/1e9
}

func (s *Store) payload(token string) ([]byte, bool) {
	segments := strings.Split(strings.TrimSpace(token), ".")
	if len(segments) != 3 || segments[1] == "" {
		return nil, false
	}

	payload, err := s.parser.DecodeSegment(segments[1])
	if err != nil {
		return nil, false
	}
	return payload, true
}
