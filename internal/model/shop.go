package model

import (
	"net/url"
	"strconv"
	"strings"
)

type Client struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	Type      string `json:"type,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type Device struct {
	ID           ID     `json:"id"`
	Brand        string `json:"brand,omitempty"`
	Model        string `json:"model,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
	Type         string `json:"type,omitempty"`
	ClientID     ID     `json:"clientId,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

type Order struct {
	ID          ID      `json:"id"`
	OrderNumber string  `json:"orderNumber,omitempty"`
	Status      string  `json:"status"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
	ClientID    ID      `json:"clientId,omitempty"`
	ClientName  string  `json:"clientName,omitempty"`
	DeviceID    ID      `json:"deviceId,omitempty"`
	DeviceName  string  `json:"deviceName,omitempty"`
	QRToken     string  `json:"qrToken,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

type OrderLog struct {
	ID        ID     `json:"id"`
	OrderID   ID     `json:"orderId"`
	Action    string `json:"action"`
	OldStatus string `json:"oldStatus,omitempty"`
	NewStatus string `json:"newStatus,omitempty"`
	Comment   string `json:"comment,omitempty"`
	Username  string `json:"username,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// OrderStatus is the public view of an order reached through its QR token.
type OrderStatus struct {
	OrderID     ID     `json:"orderId"`
	OrderNumber string `json:"orderNumber,omitempty"`
	Status      string `json:"status"`
	DeviceName  string `json:"deviceName,omitempty"`
	ClientName  string `json:"clientName,omitempty"`
	Description string `json:"description,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// FilterParams is the query of a /filter endpoint. Kind is sent as "status"
// for orders and as "type" for clients and devices.
type FilterParams struct {
	SearchTerm string
	Kind       string
	Page       int
	Size       int
	SortBy     string
	SortDir    string
}

const DefaultPageSize = 10

// ParseFilterParams reads filter parameters from a console query string.
func ParseFilterParams(q url.Values, kindKey string) FilterParams {
	p := FilterParams{
		SearchTerm: strings.TrimSpace(q.Get("searchTerm")),
		Kind:       strings.TrimSpace(q.Get(kindKey)),
		SortBy:     strings.TrimSpace(q.Get("sortBy")),
		SortDir:    strings.ToLower(strings.TrimSpace(q.Get("sortDir"))),
		Size:       DefaultPageSize,
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n >= 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("size")); err == nil && n > 0 && n <= 100 {
		p.Size = n
	}
	if p.SortDir != "asc" && p.SortDir != "desc" {
		p.SortDir = ""
	}
	return p
}

// Query encodes p for the backend; kindKey is "status" or "type".
func (p FilterParams) Query(kindKey string) url.Values {
	q := url.Values{}
	if p.SearchTerm != "" {
		q.Set("searchTerm", p.SearchTerm)
	}
	if p.Kind != "" {
		q.Set(kindKey, p.Kind)
	}
	q.Set("page", strconv.Itoa(p.Page))
	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	q.Set("size", strconv.Itoa(size))
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.SortDir != "" {
		q.Set("sortDir", p.SortDir)
	}
	return q
}

// Page mirrors the backend's paginated response.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

func (p Page[T]) HasPrev() bool {
	return p.Number > 0
}

func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

// Pages returns the zero-based page numbers to show around the current one,
// at most window wide.
func (p Page[T]) Pages(window int) []int {
	if p.TotalPages <= 0 || window <= 0 {
		return nil
	}
	start := p.Number - window/2
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - window
		if start < 0 {
			start = 0
		}
	}
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}

// CountByStatus tallies orders per status for the reports screen.
func CountByStatus(orders []Order) map[string]int {
	counts := make(map[string]int)
	for _, o := range orders {
		status := strings.ToUpper(strings.TrimSpace(o.Status))
		if status == "" {
			status = "UNKNOWN"
		}
		counts[status]++
	}
	return counts
}
