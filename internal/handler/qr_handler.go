package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"kiva-console/internal/model"
	"kiva-console/internal/view"
)

type scanAPI interface {
	Lookup(ctx context.Context, token string) (*model.OrderStatus, error)
}

// QRHandler serves the public pages reached by scanning an order's QR code.
type QRHandler struct {
	scan      scanAPI
	presenter *Presenter
}

func NewQRHandler(scan scanAPI, presenter *Presenter) *QRHandler {
	return &QRHandler{scan: scan, presenter: presenter}
}

// Redirect sends a scanned /qr/{token} link to the order status page.
func (h *QRHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		h.presenter.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/order-status/"+url.PathEscape(token), http.StatusFound)
}

func (h *QRHandler) Status(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))

	status, err := h.scan.Lookup(r.Context(), token)
	page := h.presenter.Page(r, "Order status", view.StatusData{Status: status})
	if err != nil && screenStatus(err) != http.StatusNotFound {
		page.Banner = banner(r, "qr scan", err)
	}

	h.presenter.Render(w, screenStatus(err), view.PageStatus, page)
}
