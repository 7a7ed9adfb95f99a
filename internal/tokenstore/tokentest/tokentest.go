// Package tokentest mints bearer tokens shaped like the shop backend's, for
// tests of packages that decode them.
package tokentest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "tokentest-secret"

// Mint signs claims with HS256. The signature is never checked client side.
func Mint(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

// Valid mints a token for username with role that expires in an hour.
func Valid(t testing.TB, username string, role string) string {
	t.Helper()

	now := time.Now()
	return Mint(t, jwt.MapClaims{
		"sub":  username,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	})
}

// Expired mints a token for username that expired a minute ago.
func Expired(t testing.TB, username string) string {
	t.Helper()

	now := time.Now()
	return Mint(t, jwt.MapClaims{
		"sub":  username,
		"role": "TECHNICIAN",
		"iat":  now.Add(-time.Hour).Unix(),
		"exp":  now.Add(-time.Minute).Unix(),
	})
}
