package testutil

import (
	"context"
	"sync"

	"focusgram/internal/auth"
	"focusgram/internal/models"
)

// StubAuthenticator is an in-memory auth collaborator for tests. Tokens are
// "tok-<identity>"; identities are "uid-<email>".
type StubAuthenticator struct {
	mu      sync.Mutex
	creds   map[string]string // email -> password
	ids     map[string]string // email -> identity
	changes chan auth.Change

	// FailCreate forces CreateCredential to fail after the duplicate check.
	FailCreate error
}

// NewStubAuthenticator creates an empty stub authenticator.
func NewStubAuthenticator() *StubAuthenticator {
	return &StubAuthenticator{
		creds:   make(map[string]string),
		ids:     make(map[string]string),
		changes: make(chan auth.Change, 16),
	}
}

func (s *StubAuthenticator) CreateCredential(_ context.Context, email, password string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[email]; ok {
		return "", "", models.NewDuplicateEmailError(email)
	}
	if s.FailCreate != nil {
		return "", "", s.FailCreate
	}
	identity := "uid-" + email
	s.creds[email] = password
	s.ids[email] = identity
	s.push(auth.Change{Identity: identity, Token: "tok-" + identity, SignedIn: true})
	return identity, "tok-" + identity, nil
}

func (s *StubAuthenticator) VerifyCredential(_ context.Context, email, password string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.creds[email]
	if !ok || stored != password {
		return "", "", models.NewInvalidCredentialsError()
	}
	identity := s.ids[email]
	s.push(auth.Change{Identity: identity, Token: "tok-" + identity, SignedIn: true})
	return identity, "tok-" + identity, nil
}

func (s *StubAuthenticator) ValidateToken(_ context.Context, token string) (string, error) {
	if len(token) > 4 && token[:4] == "tok-" {
		return token[4:], nil
	}
	return "", models.NewInvalidCredentialsError()
}

func (s *StubAuthenticator) SignOut(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push(auth.Change{Identity: identity, SignedIn: false})
	return nil
}

func (s *StubAuthenticator) Changes() <-chan auth.Change {
	return s.changes
}

func (s *StubAuthenticator) push(c auth.Change) {
	select {
	case s.changes <- c:
	default:
	}
}
