// Package gateway talks to the shop backend's REST API.
//
// Every resource group (auth, users, clients, devices, orders, order logs,
// QR scan) is its own Client bound to a path prefix. All of them share one
// Transport, which attaches the stored bearer token to each request and logs
// 403 responses with the request method, URL and body before handing them
// back. A 403 is never turned into anything else; callers decide how to
// present it.
//
// Failures come back as *apierror.HTTPError for non-2xx statuses and as
// *NetworkError (matching ErrNetwork) when no response arrived.
package gateway
