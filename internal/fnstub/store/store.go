// Package store defines persistence for the function stub's users.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User is a provisioned account. PasswordHash and TOTPSecret are empty until
// the corresponding provisioning call has run.
type User struct {
	Username      string
	PasswordHash  string
	PasswordSetAt time.Time
	TOTPSecret    string
	CreatedAt     time.Time
}

type Users interface {
	// Get returns ErrNotFound for unknown usernames.
	Get(ctx context.Context, username string) (User, error)

	// SetPassword creates the user if needed and replaces its password.
	SetPassword(ctx context.Context, username, hash string, setAt time.Time) error

	// SetTOTPSecret creates the user if needed and replaces its TOTP secret.
	SetTOTPSecret(ctx context.Context, username, secret string, at time.Time) error
}

type Store interface {
	Users() Users
	Ping(ctx context.Context) error
	Close() error
}
