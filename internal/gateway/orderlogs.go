package gateway

import (
	"context"
	"net/url"

	"kiva-console/internal/model"
)

type OrderLogsAPI struct {
	c *Client
}

func (o *OrderLogsAPI) ByOrder(ctx context.Context, orderID model.ID) ([]model.OrderLog, error) {
	var logs []model.OrderLog
	if err := o.c.get(ctx, "by-order/"+url.PathEscape(orderID.String()), nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
