package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"kiva-console/internal/model"
	"kiva-console/internal/session"
	"kiva-console/internal/view"
)

type sessionService interface {
	State() session.State
	Login(ctx context.Context, username string, password string) (*model.SessionUser, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
}

type AuthHandler struct {
	session   sessionService
	presenter *Presenter
}

func NewAuthHandler(session sessionService, presenter *Presenter) *AuthHandler {
	return &AuthHandler{session: session, presenter: presenter}
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := view.SafeNext(r.URL.Query().Get("next"))

	s := h.session.State()
	if s.AuthInitialized && s.IsAuthenticated {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	h.presenter.LoginForm(w, r, http.StatusOK, view.LoginData{Next: next, Busy: s.IsLoading && s.AuthInitialized}, "")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.presenter.LoginForm(w, r, http.StatusBadRequest, view.LoginData{}, "Invalid form submission")
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	next := view.SafeNext(r.PostForm.Get("next"))
	data := view.LoginData{Next: next, Username: username}

	if _, err := h.session.Login(r.Context(), username, password); err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, session.ErrLoginInProgress) {
			status = http.StatusConflict
			data.Busy = true
		}
		h.presenter.LoginForm(w, r, status, data, err.Error())
		return
	}

	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Session reports the current session as JSON without the credential.
func (h *AuthHandler) Session(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, h.session.State().Public())
}
