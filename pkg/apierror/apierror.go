package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is a non-2xx response from the shop backend. Body holds the raw
// response body; Message is the backend's "message" field when it sent one.
type HTTPError struct {
	Status  int
	Method  string
	URL     string
	Body    string
	Message string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}

	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, e.Message)
	}

	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
}

// New builds an HTTPError and extracts the backend message from a JSON body.
func New(status int, method string, url string, body []byte) *HTTPError {
	return &HTTPError{
		Status:  status,
		Method:  method,
		URL:     url,
		Body:    string(body),
		Message: backendMessage(body),
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// MessageOf returns the backend message carried by err, or "".
func MessageOf(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return ""
}

func backendMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var parsed struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(parsed.Message); msg != "" {
		return msg
	}

	// Some endpoints answer {"error": "..."} or {"error": {"message": "..."}}.
	var errText string
	if json.Unmarshal(parsed.Error, &errText) == nil {
		return strings.TrimSpace(errText)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(parsed.Error, &nested) == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}
