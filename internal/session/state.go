package session

import (
	"fmt"

	"kiva-console/internal/model"
)

type Status int

const (
	StatusUninitialized Status = iota
	StatusRestoring
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusRestoring:
		return "restoring"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{StatusUninitialized, StatusRestoring, StatusAuthenticated, StatusUnauthenticated} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown session status %q", text)
}

// State is a snapshot of the session. IsAuthenticated is true exactly when
// CurrentUser is set.
type State struct {
	Status          Status             `json:"status"`
	CurrentUser     *model.SessionUser `json:"currentUser,omitempty"`
	IsAuthenticated bool               `json:"isAuthenticated"`
	IsLoading       bool               `json:"isLoading"`
	AuthInitialized bool               `json:"authInitialized"`
}

// Role is the current user's role, or "".
func (s State) Role() string {
	if s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.Role
}

// Username is the current user's username, or "".
func (s State) Username() string {
	if s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.Username
}

// Public strips the bearer credential so the snapshot can leave the process.
func (s State) Public() State {
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		u.Token = ""
		s.CurrentUser = &u
	}
	return s
}

func (s State) clone() State {
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		s.CurrentUser = &u
	}
	return s
}
