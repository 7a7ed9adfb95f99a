package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin         = "ADMIN"
	RoleAdministrator = "ADMINISTRATOR"
	RoleTechnician    = "TECHNICIAN"
	RoleUser          = "USER"
)

// ID is an identifier the backend may send either as a JSON number or a
// JSON string. It is always stored and re-encoded as a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Claims is the payload segment of the bearer credential. Registered claims
// carry sub, exp and iat; the rest are issued by the shop backend.
type Claims struct {
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
	UserID   ID     `json:"userId,omitempty"`
	FullName string `json:"fullName,omitempty"`
	jwt.RegisteredClaims
}

// SessionUser is who is currently using the console. It is persisted as JSON
// next to the token, so the field names match what the backend issues.
type SessionUser struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Exp      int64  `json:"exp,omitempty"`
	Iat      int64  `json:"iat,omitempty"`
	UserID   ID     `json:"userId,omitempty"`
	Token    string `json:"token,omitempty"`
}

// IsAdminRole reports whether role grants elevated console access. The
// comparison is case-insensitive, unlike plain role matching.
func IsAdminRole(role string) bool {
	r := strings.ToUpper(strings.TrimSpace(role))
	return r == RoleAdmin || r == RoleAdministrator
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	UserID   ID     `json:"userId,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type User struct {
	ID        ID     `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	FullName  string `json:"fullName,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type UpdateUserRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Password string `json:"password,omitempty"`
}
