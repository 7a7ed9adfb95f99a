package gateway

import (
	"context"
	"net/url"

	"kiva-console/internal/model"
)

// Resource is the CRUD and filter surface shared by clients, devices and
// orders. kindKey names the filter's category parameter.
type Resource[T any] struct {
	c       *Client
	kindKey string
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.c.get(ctx, "all", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id model.ID) (*T, error) {
	var item T
	if err := r.c.get(ctx, url.PathEscape(id.String()), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Resource[T]) Create(ctx context.Context, item T) (*T, error) {
	var created T
	if err := r.c.post(ctx, "create", item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Resource[T]) Update(ctx context.Context, id model.ID, item T) (*T, error) {
	var updated T
	if err := r.c.put(ctx, "update/"+url.PathEscape(id.String()), item, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id model.ID) error {
	return r.c.delete(ctx, "delete/"+url.PathEscape(id.String()))
}

func (r *Resource[T]) Filter(ctx context.Context, params model.FilterParams) (*model.Page[T], error) {
	var page model.Page[T]
	if err := r.c.get(ctx, "filter", params.Query(r.kindKey), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// KindKey is the filter parameter name ("status" or "type").
func (r *Resource[T]) KindKey() string {
	return r.kindKey
}
