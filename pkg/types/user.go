package types

import (
	"strings"
	"time"
)

type Role string

const (
	RoleManager Role = "manager"
	RoleHelper  Role = "helper"
)

// ReservedUsername is always mapped to the manager role and can never
// be self-registered.
const ReservedUsername = "admin"

func IsReservedUsername(username string) bool {
	return strings.EqualFold(strings.TrimSpace(username), ReservedUsername)
}

type User struct {
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	LastLogin    *time.Time `db:"last_login" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"-"`
	UpdatedAt    time.Time  `db:"updated_at" json:"-"`
}

// Session is the full extent of what the session cookie carries.
type Session struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
