package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"kiva-console/internal/model"
	"kiva-console/internal/view"
)

type usersAPI interface {
	All(ctx context.Context) ([]model.User, error)
}

// UserHandler is the admin-only account screen.
type UserHandler struct {
	session   sessionService
	users     usersAPI
	presenter *Presenter
}

func NewUserHandler(session sessionService, users usersAPI, presenter *Presenter) *UserHandler {
	return &UserHandler{session: session, users: users, presenter: presenter}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "", "")
}

// Register creates an account for someone else. The operator stays signed
// in as themselves.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "", "Invalid form submission")
		return
	}

	req := model.RegisterRequest{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Phone:    strings.TrimSpace(r.PostForm.Get("phone")),
		Role:     strings.TrimSpace(r.PostForm.Get("role")),
	}
	if req.Username == "" || req.Password == "" {
		h.render(w, r, http.StatusBadRequest, "", "Username and password are required")
		return
	}

	created, err := h.session.Register(r.Context(), req)
	if err != nil {
		h.render(w, r, http.StatusOK, "", err.Error())
		return
	}

	h.render(w, r, http.StatusOK, fmt.Sprintf("Account %s created with role %s", created.Username, created.Role), "")
}

func (h *UserHandler) render(w http.ResponseWriter, r *http.Request, status int, notice string, bannerText string) {
	users, err := h.users.All(r.Context())

	page := h.presenter.Page(r, "Users", view.UsersData{Users: users})
	page.Notice = notice
	page.Banner = bannerText
	if err != nil && page.Banner == "" {
		page.Banner = banner(r, "users", err)
		if status == http.StatusOK {
			status = screenStatus(err)
		}
	}

	h.presenter.Render(w, status, view.PageUsers, page)
}
