package identity

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered moviegoer or administrator.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Role         string
	TokenVersion int
	CreatedAt    time.Time
}

// Credentials carry registration/login input.
type Credentials struct {
	Name     string
	Email    string
	Password string
}
