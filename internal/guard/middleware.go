package guard

import (
	"net/http"

	"kiva-console/internal/session"
)

// StateSource yields the current session snapshot.
type StateSource interface {
	State() session.State
}

// Presenter draws the screens that take a protected screen's place.
type Presenter interface {
	Loading(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Denied(w http.ResponseWriter, r *http.Request, d Decision)
}

// Require gates next behind Decide. The substitute screens are rendered at
// the requested URL rather than redirecting.
func Require(src StateSource, p Presenter, requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Decide(src.State(), requiredRole)

			switch d.Verdict {
			case Loading:
				p.Loading(w, r)
			case Login:
				p.Login(w, r)
			case Denied:
				p.Denied(w, r, d)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
