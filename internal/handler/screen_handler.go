package handler

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"kiva-console/internal/gateway"
	"kiva-console/internal/model"
	"kiva-console/internal/view"
)

const recentOrders = 5

// ScreenHandler serves the read-only resource screens.
type ScreenHandler struct {
	gw        *gateway.Gateway
	presenter *Presenter
}

func NewScreenHandler(gw *gateway.Gateway, presenter *Presenter) *ScreenHandler {
	return &ScreenHandler{gw: gw, presenter: presenter}
}

func (h *ScreenHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	orders, err := h.gw.Orders.List(r.Context())

	counts, total := view.StatusCounts(model.CountByStatus(orders))
	page := h.presenter.Page(r, "Dashboard", view.DashboardData{
		Total:  total,
		Counts: counts,
		Recent: latest(orders, recentOrders),
	})
	page.Banner = banner(r, "orders", err)

	h.presenter.Render(w, screenStatus(err), view.PageDashboard, page)
}

func (h *ScreenHandler) Orders(w http.ResponseWriter, r *http.Request) {
	renderListing(h.presenter, w, r, "Orders", view.PageOrders, h.gw.Orders)
}

func (h *ScreenHandler) Clients(w http.ResponseWriter, r *http.Request) {
	renderListing(h.presenter, w, r, "Clients", view.PageClients, h.gw.Clients)
}

func (h *ScreenHandler) Devices(w http.ResponseWriter, r *http.Request) {
	renderListing(h.presenter, w, r, "Devices", view.PageDevices, h.gw.Devices)
}

func (h *ScreenHandler) Order(w http.ResponseWriter, r *http.Request) {
	id := model.ID(chi.URLParam(r, "id"))

	order, err := h.gw.Orders.Get(r.Context(), id)
	if err != nil {
		page := h.presenter.Page(r, "Order", view.OrderData{})
		page.Banner = banner(r, "order", err)
		h.presenter.Render(w, screenStatus(err), view.PageOrder, page)
		return
	}

	logs, logErr := h.gw.OrderLogs.ByOrder(r.Context(), id)
	page := h.presenter.Page(r, "Order", view.OrderData{Order: order, Logs: logs})
	page.Banner = banner(r, "order logs", logErr)

	h.presenter.Render(w, http.StatusOK, view.PageOrder, page)
}

func (h *ScreenHandler) Reports(w http.ResponseWriter, r *http.Request) {
	orders, err := h.gw.Orders.List(r.Context())

	counts, total := view.StatusCounts(model.CountByStatus(orders))
	page := h.presenter.Page(r, "Reports", view.ReportData{Total: total, Counts: counts})
	page.Banner = banner(r, "orders", err)

	h.presenter.Render(w, screenStatus(err), view.PageReports, page)
}

func renderListing[T any](p *Presenter, w http.ResponseWriter, r *http.Request, title string, name string, res *gateway.Resource[T]) {
	params := model.ParseFilterParams(r.URL.Query(), res.KindKey())

	result, err := res.Filter(r.Context(), params)
	listing := view.Listing[T]{
		Params:  params,
		KindKey: res.KindKey(),
		Page:    result,
		Path:    r.URL.Path,
	}

	page := p.Page(r, title, listing)
	page.Banner = banner(r, name, err)

	p.Render(w, screenStatus(err), name, page)
}

// latest returns the n most recently created orders. CreatedAt is ISO-8601,
// so string order is time order.
func latest(orders []model.Order, n int) []model.Order {
	sorted := make([]model.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
