package apierror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewExtractsBackendMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message field", body: `{"message":"Order not found"}`, want: "Order not found"},
		{name: "error string", body: `{"error":"Bad token"}`, want: "Bad token"},
		{name: "nested error", body: `{"error":{"code":"X","message":"Nested"}}`, want: "Nested"},
		{name: "plain text", body: `Forbidden`, want: ""},
		{name: "empty", body: ``, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(http.StatusBadRequest, http.MethodGet, "http://api/x", []byte(tt.body))
			assert.Equal(t, tt.want, err.Message)
			assert.Equal(t, tt.body, err.Body)
		})
	}
}

func TestStatusAndMessageOfWrappedErrors(t *testing.T) {
	err := fmt.Errorf("list orders: %w", New(http.StatusForbidden, http.MethodGet, "http://api/orders", []byte(`{"message":"nope"}`)))

	assert.Equal(t, http.StatusForbidden, StatusOf(err))
	assert.Equal(t, "nope", MessageOf(err))
	assert.Equal(t, 0, StatusOf(fmt.Errorf("plain")))
	assert.Contains(t, err.Error(), "GET http://api/orders: 403 nope")
}
