package model

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "u-7", "c": null}`), &payload))

	assert.Equal(t, ID("42"), payload.A)
	assert.Equal(t, ID("u-7"), payload.B)
	assert.Equal(t, ID(""), payload.C)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"42","b":"u-7","c":""}`, string(out))
}

func TestIsAdminRole(t *testing.T) {
	for _, role := range []string{"admin", "ADMIN", "Administrator", " administrator "} {
		assert.True(t, IsAdminRole(role), role)
	}
	for _, role := range []string{"TECHNICIAN", "USER", "", "superadmin"} {
		assert.False(t, IsAdminRole(role), role)
	}
}

func TestParseFilterParams(t *testing.T) {
	q := url.Values{
		"searchTerm": {"  iphone "},
		"status":     {"IN_PROGRESS"},
		"page":       {"2"},
		"size":       {"500"},
		"sortBy":     {"createdAt"},
		"sortDir":    {"DESC"},
	}

	p := ParseFilterParams(q, "status")

	assert.Equal(t, "iphone", p.SearchTerm)
	assert.Equal(t, "IN_PROGRESS", p.Kind)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, "desc", p.SortDir)

	encoded := p.Query("status")
	assert.Equal(t, "iphone", encoded.Get("searchTerm"))
	assert.Equal(t, "IN_PROGRESS", encoded.Get("status"))
	assert.Equal(t, "2", encoded.Get("page"))
	assert.Equal(t, "10", encoded.Get("size"))
	assert.Equal(t, "createdAt", encoded.Get("sortBy"))
}

func TestFilterParamsQueryOmitsEmpty(t *testing.T) {
	encoded := FilterParams{SortDir: ""}.Query("type")

	assert.False(t, encoded.Has("searchTerm"))
	assert.False(t, encoded.Has("type"))
	assert.False(t, encoded.Has("sortDir"))
	assert.Equal(t, "0", encoded.Get("page"))
	assert.Equal(t, "10", encoded.Get("size"))
}

func TestPageNavigation(t *testing.T) {
	p := Page[Order]{Number: 0, TotalPages: 3}
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())

	p.Number = 2
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())

	assert.Equal(t, []int{0, 1, 2}, p.Pages(5))
	assert.Equal(t, []int{3, 4, 5}, Page[Order]{Number: 5, TotalPages: 6}.Pages(3))
	assert.Nil(t, Page[Order]{}.Pages(5))
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus([]Order{
		{Status: "received"},
		{Status: "RECEIVED"},
		{Status: "DONE"},
		{Status: ""},
	})

	assert.Equal(t, map[string]int{"RECEIVED": 2, "DONE": 1, "UNKNOWN": 1}, counts)
}
