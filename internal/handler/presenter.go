package handler

import (
	"net/http"
	"strconv"
	"strings"

	"kiva-console/internal/guard"
	"kiva-console/internal/model"
	"kiva-console/internal/view"
)

// Presenter fills the layout from the session and draws the screens the
// guard substitutes for protected ones.
type Presenter struct {
	views   *view.Renderer
	session guard.StateSource
}

func NewPresenter(views *view.Renderer, session guard.StateSource) *Presenter {
	return &Presenter{views: views, session: session}
}

func (p *Presenter) Page(r *http.Request, title string, data any) view.Page {
	s := p.session.State()
	return view.Page{
		Title:   title,
		Path:    r.URL.RequestURI(),
		User:    s.CurrentUser,
		IsAdmin: s.CurrentUser != nil && model.IsAdminRole(s.CurrentUser.Role),
		Data:    data,
	}
}

func (p *Presenter) Render(w http.ResponseWriter, status int, name string, page view.Page) {
	p.views.Render(w, status, name, page)
}

func (p *Presenter) Loading(w http.ResponseWriter, r *http.Request) {
	page := p.Page(r, "Authenticating", nil)
	page.Refresh = view.RetryAfter
	w.Header().Set("Retry-After", strconv.Itoa(view.RetryAfter))
	p.views.Render(w, http.StatusServiceUnavailable, view.PageLoading, page)
}

func (p *Presenter) Login(w http.ResponseWriter, r *http.Request) {
	p.LoginForm(w, r, http.StatusUnauthorized, view.LoginData{Next: view.SafeNext(r.URL.RequestURI())}, "")
}

func (p *Presenter) LoginForm(w http.ResponseWriter, r *http.Request, status int, data view.LoginData, bannerText string) {
	page := p.Page(r, "Sign in", data)
	page.User = nil
	page.IsAdmin = false
	page.Banner = bannerText
	p.views.Render(w, status, view.PageLogin, page)
}

func (p *Presenter) Denied(w http.ResponseWriter, r *http.Request, d guard.Decision) {
	p.views.Render(w, http.StatusForbidden, view.PageDenied, p.Page(r, "Access denied", view.DeniedData{
		UserRole:     d.UserRole,
		RequiredRole: d.RequiredRole,
	}))
}

// NotFound answers API paths with the JSON envelope and everything else
// with the error page.
func (p *Presenter) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "No such endpoint")
		return
	}
	p.views.Render(w, http.StatusNotFound, view.PageError, p.Page(r, "Page not found", nil))
}
