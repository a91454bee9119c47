package auth

import (
	"context"
	"errors"
	"log/slog"

	"focusgram/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// changeBuffer bounds the identity-change stream; events beyond it are
// dropped rather than blocking the authenticating call.
const changeBuffer = 16

// gormAuthenticator stores credentials in the database and issues JWTs.
type gormAuthenticator struct {
	db      *gorm.DB
	secret  string
	changes chan Change
}

// NewGormAuthenticator creates a database-backed Authenticator signing
// tokens with secret.
func NewGormAuthenticator(db *gorm.DB, secret string) Authenticator {
	return &gormAuthenticator{
		db:      db,
		secret:  secret,
		changes: make(chan Change, changeBuffer),
	}
}

func (a *gormAuthenticator) CreateCredential(ctx context.Context, email, password string) (string, string, error) {
	var existing Credential
	err := a.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return "", "", models.NewDuplicateEmailError(email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", models.NewBackendUnavailableError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", models.NewInternalError(err)
	}

	cred := Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := a.db.WithContext(ctx).Create(&cred).Error; err != nil {
		return "", "", models.NewBackendUnavailableError(err)
	}

	token, err := signToken(a.secret, cred.ID)
	if err != nil {
		return "", "", models.NewInternalError(err)
	}

	a.notify(Change{Identity: cred.ID, Token: token, SignedIn: true})
	return cred.ID, token, nil
}

func (a *gormAuthenticator) VerifyCredential(ctx context.Context, email, password string) (string, string, error) {
	var cred Credential
	err := a.db.WithContext(ctx).Where("email = ?", email).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", models.NewInvalidCredentialsError()
	}
	if err != nil {
		return "", "", models.NewBackendUnavailableError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", "", models.NewInvalidCredentialsError()
	}

	token, err := signToken(a.secret, cred.ID)
	if err != nil {
		return "", "", models.NewInternalError(err)
	}

	a.notify(Change{Identity: cred.ID, Token: token, SignedIn: true})
	return cred.ID, token, nil
}

func (a *gormAuthenticator) ValidateToken(_ context.Context, token string) (string, error) {
	identity, err := parseToken(a.secret, token)
	if err != nil {
		return "", models.NewInvalidCredentialsError()
	}
	return identity, nil
}

func (a *gormAuthenticator) SignOut(_ context.Context, identity string) error {
	a.notify(Change{Identity: identity, SignedIn: false})
	return nil
}

func (a *gormAuthenticator) Changes() <-chan Change {
	return a.changes
}

func (a *gormAuthenticator) notify(c Change) {
	select {
	case a.changes <- c:
	default:
		slog.Warn("identity change dropped, subscriber too slow", "identity", c.Identity)
	}
}
