package gateway

import (
	"context"
	"net/url"
	"strings"

	"kiva-console/internal/model"
)

// ScanAPI resolves the token printed in an order's QR code. The endpoint is
// public; a stored credential is still attached when present.
type ScanAPI struct {
	c *Client
}

func (s *ScanAPI) Lookup(ctx context.Context, token string) (*model.OrderStatus, error) {
	var status model.OrderStatus
	if err := s.c.get(ctx, "scan/"+url.PathEscape(strings.TrimSpace(token)), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
