package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"kiva-console/internal/model"
)

type Options struct {
	// Timeout bounds every request. Zero means no timeout.
	Timeout time.Duration
	// RateLimitRPS throttles outgoing requests across all groups. Zero
	// disables throttling.
	RateLimitRPS float64
	// Base overrides the underlying round tripper, mostly for tests.
	Base   http.RoundTripper
	Logger *slog.Logger
}

// Gateway bundles one client per backend resource group.
type Gateway struct {
	Auth      *AuthAPI
	Users     *UsersAPI
	Clients   *Resource[model.Client]
	Devices   *Resource[model.Device]
	Orders    *Resource[model.Order]
	OrderLogs *OrderLogsAPI
	Scan      *ScanAPI
}

func New(baseURL string, tokens TokenSource, opts Options) *Gateway {
	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Transport: &Transport{
			Base:   opts.Base,
			Tokens: tokens,
			Logger: opts.Logger,
		},
	}

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		burst := int(opts.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	group := func(name string) *Client {
		return newClient(baseURL, name, httpClient, limiter)
	}

	return &Gateway{
		Auth:      &AuthAPI{c: group("users")},
		Users:     &UsersAPI{c: group("users")},
		Clients:   &Resource[model.Client]{c: group("clients"), kindKey: "type"},
		Devices:   &Resource[model.Device]{c: group("devices"), kindKey: "type"},
		Orders:    &Resource[model.Order]{c: group("orders"), kindKey: "status"},
		OrderLogs: &OrderLogsAPI{c: group("order-logs")},
		Scan:      &ScanAPI{c: group("qr")},
	}
}
