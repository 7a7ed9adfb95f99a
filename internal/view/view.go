// Package view renders the console's HTML screens from embedded templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"kiva-console/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	PageLoading   = "loading"
	PageLogin     = "login"
	PageDenied    = "denied"
	PageDashboard = "dashboard"
	PageOrders    = "orders"
	PageOrder     = "order"
	PageClients   = "clients"
	PageDevices   = "devices"
	PageReports   = "reports"
	PageUsers     = "users"
	PageStatus    = "status"
	PageError     = "error"
)

var pages = []string{
	PageLoading, PageLogin, PageDenied, PageDashboard, PageOrders, PageOrder,
	PageClients, PageDevices, PageReports, PageUsers, PageStatus, PageError,
}

// Page is what the layout needs plus the screen's own Data.
type Page struct {
	Title   string
	Path    string
	Banner  string
	Notice  string
	Refresh int
	User    *model.SessionUser
	IsAdmin bool
	Data    any
}

type Renderer struct {
	templates map[string]*template.Template
}

func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"statusClass": StatusClass,
		"displayName": displayName,
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Render writes the named screen with status. The template is executed into
// a buffer first so a failure never leaves half a page behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	tmpl, ok := r.templates[name]
	if !ok {
		slog.Error("unknown view", "view", name)
		http.Error(w, "Unexpected server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		slog.Error("render view failed", "view", name, "error", err)
		http.Error(w, "Unexpected server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Static serves the embedded stylesheet under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// StatusClass turns an order status into a CSS class suffix.
func StatusClass(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	if s == "" {
		return "unknown"
	}
	return s
}

func displayName(u *model.SessionUser) string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

type LoginData struct {
	Next     string
	Username string
	Busy     bool
}

type DeniedData struct {
	UserRole     string
	RequiredRole string
}

// Listing is a filtered, paginated resource screen.
type Listing[T any] struct {
	Params  model.FilterParams
	KindKey string
	Page    *model.Page[T]
	Path    string
}

// PageURL links to page n keeping the current filter.
func (l Listing[T]) PageURL(n int) string {
	p := l.Params
	p.Page = n
	q := p.Query(l.KindKey)
	return l.Path + "?" + q.Encode()
}

type StatusCount struct {
	Status string
	Count  int
	Share  float64
}

type DashboardData struct {
	Total  int
	Counts []StatusCount
	Recent []model.Order
}

type ReportData struct {
	Total  int
	Counts []StatusCount
}

type OrderData struct {
	Order *model.Order
	Logs  []model.OrderLog
}

type UsersData struct {
	Users []model.User
}

type StatusData struct {
	Status *model.OrderStatus
}

// StatusCounts orders tallies by count, largest first, and adds each
// status's share of the total in percent.
func StatusCounts(counts map[string]int) ([]StatusCount, int) {
	total := 0
	for _, n := range counts {
		total += n
	}

	out := make([]StatusCount, 0, len(counts))
	for status, n := range counts {
		share := 0.0
		if total > 0 {
			share = float64(n) * 100 / float64(total)
		}
		out = append(out, StatusCount{Status: status, Count: n, Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out, total
}

// SafeNext returns next when it is a local path, otherwise "/".
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	if u.Path == "/login" {
		return "/"
	}
	return next
}

// RetryAfter is the loading screen's refresh interval in seconds.
const RetryAfter = 1
