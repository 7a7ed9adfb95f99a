package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds a console request. It buffers the response, so the
// websocket route must not sit behind it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := "The request timed out. The shop backend may be slow or unreachable."

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
