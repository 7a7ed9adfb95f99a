package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kiva-console/internal/gateway"
	"kiva-console/internal/middleware"
	"kiva-console/internal/model"
	"kiva-console/internal/session"
	"kiva-console/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// screenStatus picks the HTTP status for a screen that failed to load its
// data. Screens still render with a banner; only missing records and an
// unreachable backend change the status.
func screenStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, gateway.ErrNetwork):
		return http.StatusBadGateway
	case apierror.StatusOf(err) == http.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusOK
	}
}

// banner logs a failed backend call and returns the message to show.
func banner(r *http.Request, what string, err error) string {
	if err == nil {
		return ""
	}
	slog.Warn("backend call failed",
		"what", what,
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"status", apierror.StatusOf(err),
		"error", err,
	)
	return session.Describe(err)
}
