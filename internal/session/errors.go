package session

import (
	"context"
	"errors"
	"net/http"

	"kiva-console/internal/gateway"
	"kiva-console/pkg/apierror"
)

var (
	ErrLoginInProgress = errors.New("login already in progress")
	ErrNoToken         = errors.New("no token in login response")
)

const (
	MsgCannotConnect    = "Cannot connect to server. Please check that the backend is running."
	MsgForbidden        = "Access forbidden. Please check your permissions."
	MsgInvalidLogin     = "Invalid username or password"
	MsgAlreadyExists    = "Username or email already exists"
	MsgNoToken          = "No authentication token received from server"
	MsgLoginInProgress  = "Login already in progress"
	MsgLoginFailed      = "Login failed"
	MsgRegisterFailed   = "Registration failed"
	MsgPermissionDenied = "You do not have permission to perform this action"
)

// AuthError is a failed login or registration. Message is what the operator
// sees; Err is the underlying cause.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// describeLoginError maps a login failure to its operator-facing message.
func describeLoginError(err error) string {
	return describe(err, false, MsgLoginFailed)
}

// describeRegisterError is describeLoginError plus the 409 case.
func describeRegisterError(err error) string {
	return describe(err, true, MsgRegisterFailed)
}

func describe(err error, conflict bool, fallback string) string {
	status := apierror.StatusOf(err)

	switch {
	case errors.Is(err, gateway.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return MsgCannotConnect
	case status == http.StatusForbidden:
		return MsgForbidden
	case status == http.StatusUnauthorized:
		return MsgInvalidLogin
	case conflict && status == http.StatusConflict:
		return MsgAlreadyExists
	}

	if msg := apierror.MessageOf(err); msg != "" {
		return msg
	}
	return fallback
}

// Describe turns an error returned by a resource client into a banner
// message for a screen. A 403 is a permission problem, not a lost session.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}

	status := apierror.StatusOf(err)
	switch {
	case errors.Is(err, gateway.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return MsgCannotConnect
	case status == http.StatusForbidden:
		return MsgPermissionDenied
	case status == http.StatusUnauthorized:
		return "Your session is no longer accepted by the server. Please sign in again."
	case status == http.StatusNotFound:
		return "Not found"
	}

	if msg := apierror.MessageOf(err); msg != "" {
		return msg
	}
	return "Request failed"
}
