package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")

	// ErrInvalidCredentials is deliberately the same for unknown
	// usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUsernameTaken = errors.New("username already in use")
)

// Role gates access to settings and user management.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Name         string
	Email        string
	Role         Role
	CreatedAt    time.Time
}
