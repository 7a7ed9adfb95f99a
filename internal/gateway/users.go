package gateway

import (
	"context"
	"net/url"

	"kiva-console/internal/model"
)

// UsersAPI covers account management. Everything except Me is admin-only on
// the backend.
type UsersAPI struct {
	c *Client
}

func (u *UsersAPI) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := u.c.get(ctx, "me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UsersAPI) All(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := u.c.get(ctx, "all", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (u *UsersAPI) Update(ctx context.Context, id model.ID, req model.UpdateUserRequest) (*model.User, error) {
	var user model.User
	if err := u.c.put(ctx, "update/"+url.PathEscape(id.String()), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UsersAPI) Delete(ctx context.Context, id model.ID) error {
	return u.c.delete(ctx, "delete/"+url.PathEscape(id.String()))
}
