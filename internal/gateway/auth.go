package gateway

import (
	"context"

	"kiva-console/internal/model"
)

type AuthAPI struct {
	c *Client
}

func (a *AuthAPI) Login(ctx context.Context, username string, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := a.c.post(ctx, "login", model.LoginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	var created model.User
	if err := a.c.post(ctx, "register", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.c.post(ctx, "logout", nil, nil)
}
