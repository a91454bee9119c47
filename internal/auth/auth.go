// Package auth implements the authentication collaborator: credential
// creation and verification, opaque identity tokens, and asynchronous
// identity-change notification.
package auth

import (
	"context"
	"time"
)

// Change is an asynchronous identity-change event pushed by the
// authenticator. SignedIn is false for sign-out events; sign-in events carry
// the issued token so the session is fully usable when adopted.
type Change struct {
	Identity string
	Token    string
	SignedIn bool
}

// Credential is a stored login credential. The ID doubles as the opaque
// identity assigned at sign-up; the user record shares it.
type Credential struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Authenticator is the boundary contract the session holder talks to.
// Credential verification always happens here; the session holder never
// authenticates by record lookup alone.
type Authenticator interface {
	// CreateCredential registers email/password and returns the new
	// identity with a signed token. Fails with DUPLICATE_EMAIL when the
	// email is taken.
	CreateCredential(ctx context.Context, email, password string) (identity, token string, err error)
	// VerifyCredential checks email/password and returns the identity with
	// a fresh token, or INVALID_CREDENTIALS.
	VerifyCredential(ctx context.Context, email, password string) (identity, token string, err error)
	// ValidateToken verifies a previously issued token and returns the
	// identity it carries. Used to re-validate the persisted session marker.
	ValidateToken(ctx context.Context, token string) (identity string, err error)
	SignOut(ctx context.Context, identity string) error
	// Changes exposes the asynchronous identity-change stream.
	Changes() <-chan Change
}
