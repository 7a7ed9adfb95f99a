// Package guard decides whether a protected console screen may render for
// the current session.
package guard

import (
	"strings"

	"kiva-console/internal/model"
	"kiva-console/internal/session"
)

type Verdict int

const (
	// Render means the protected screen is shown unchanged.
	Render Verdict = iota
	// Loading means the session is not decidable yet.
	Loading
	// Login means the login view takes the screen's place.
	Login
	// Denied means the user is signed in but lacks the required role.
	Denied
)

func (v Verdict) String() string {
	switch v {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Login:
		return "login"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Decide. UserRole and RequiredRole are filled in
// for Denied so the view can show both.
type Decision struct {
	Verdict      Verdict
	UserRole     string
	RequiredRole string
}

// Decide is a pure function of the session snapshot. An empty requiredRole
// means any signed-in user may see the screen.
func Decide(s session.State, requiredRole string) Decision {
	if s.IsLoading || !s.AuthInitialized {
		return Decision{Verdict: Loading}
	}

	if !s.IsAuthenticated || s.CurrentUser == nil {
		return Decision{Verdict: Login}
	}

	if requiredRole != "" && !RoleSatisfies(s.CurrentUser.Role, requiredRole) {
		return Decision{
			Verdict:      Denied,
			UserRole:     s.CurrentUser.Role,
			RequiredRole: requiredRole,
		}
	}

	return Decision{Verdict: Render}
}

// RoleSatisfies reports whether role meets required. Requiring ADMIN (in any
// case) uses the case-insensitive admin check; any other requirement is an
// exact match.
func RoleSatisfies(role string, required string) bool {
	if strings.EqualFold(strings.TrimSpace(required), model.RoleAdmin) {
		return model.IsAdminRole(role)
	}
	return role == required
}
