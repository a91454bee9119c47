// Package session tracks the currently authenticated viewer and exposes the
// sign-up, sign-in, and sign-out boundary operations against the auth
// collaborator.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"focusgram/internal/auth"
	"focusgram/internal/backend"
	"focusgram/internal/cache"
	"focusgram/internal/models"
	"focusgram/internal/store"
	"focusgram/internal/validation"
)

// Holder represents "who, if anyone, is viewing now".
//
// Identity is only ever set after every validation and persistence step has
// succeeded; a failed operation leaves the session exactly as it was.
type Holder struct {
	mu       sync.RWMutex
	viewerID string
	token    string

	records *store.Store
	backend backend.Backend
	authn   auth.Authenticator
	marker  *cache.SessionMarkerStore
}

// NewHolder creates a session holder over the given collaborators.
func NewHolder(records *store.Store, b backend.Backend, authn auth.Authenticator, marker *cache.SessionMarkerStore) *Holder {
	return &Holder{
		records: records,
		backend: b,
		authn:   authn,
		marker:  marker,
	}
}

// SignUp registers a new account and establishes it as the session identity.
// Fails with DUPLICATE_USERNAME before touching the auth collaborator, and
// with DUPLICATE_EMAIL when the collaborator reports the email as taken.
func (h *Holder) SignUp(ctx context.Context, email, username, name, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, taken := h.records.UserByUsername(username); taken {
		return nil, models.NewDuplicateUsernameError(username)
	}
	// The record store only holds what was loaded at session start; ask the
	// backend too so a username created elsewhere cannot be reused.
	existing, err := h.backend.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewDuplicateUsernameError(username)
	}

	identity, token, err := h.authn.CreateCredential(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:         identity,
		Username:   username,
		Name:       name,
		Email:      email,
		AvatarURL:  defaultAvatarURL(username),
		LikedPosts: models.IDSet{},
		SavedPosts: models.IDSet{},
		Following:  models.IDSet{},
	}
	if err := h.backend.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	h.records.UpsertUser(user)
	h.establish(ctx, identity, token)
	return user.Clone(), nil
}

// SignIn verifies credentials through the auth collaborator and establishes
// the matching user record as the session identity. Credential verification
// is never skipped; there is no lookup-by-email path.
func (h *Holder) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	identity, token, err := h.authn.VerifyCredential(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := h.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	h.establish(ctx, identity, token)
	return user, nil
}

// SignOut clears the session identity and the persisted marker. The record
// store is left untouched. Always succeeds.
func (h *Holder) SignOut(ctx context.Context) {
	h.mu.Lock()
	identity := h.viewerID
	h.viewerID = ""
	h.token = ""
	h.mu.Unlock()

	if identity == "" {
		return
	}
	if err := h.authn.SignOut(ctx, identity); err != nil {
		slog.Warn("auth sign-out failed", "identity", identity, "error", err)
	}
	if err := h.marker.Clear(ctx); err != nil {
		slog.Warn("session marker clear failed", "error", err)
	}
}

// CurrentViewer returns the active viewer's record, or nil when signed out.
func (h *Holder) CurrentViewer() *models.User {
	h.mu.RLock()
	id := h.viewerID
	h.mu.RUnlock()
	if id == "" {
		return nil
	}
	if u, ok := h.records.User(id); ok {
		return u
	}
	return nil
}

// Token returns the identity token of the active session, or "".
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Restore pre-populates the session from the persisted marker. The marker is
// never trusted as-is: it is re-validated against the auth collaborator, and
// cleared when validation fails.
func (h *Holder) Restore(ctx context.Context) {
	token, err := h.marker.Load(ctx)
	if err != nil {
		slog.Warn("session marker load failed", "error", err)
		return
	}
	if token == "" {
		return
	}

	identity, err := h.authn.ValidateToken(ctx, token)
	if err != nil {
		slog.Info("stale session marker discarded")
		if clearErr := h.marker.Clear(ctx); clearErr != nil {
			slog.Warn("session marker clear failed", "error", clearErr)
		}
		return
	}

	if _, err := h.resolveUser(ctx, identity); err != nil {
		slog.Warn("session restore failed, no matching user record", "identity", identity)
		return
	}

	h.mu.Lock()
	h.viewerID = identity
	h.token = token
	h.mu.Unlock()
	slog.Info("session restored", "identity", identity)
}

// Watch consumes the auth collaborator's asynchronous identity-change stream
// and keeps the session in sync. Runs until ctx is done.
func (h *Holder) Watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-h.authn.Changes():
			if !ok {
				return
			}
			h.applyChange(ctx, change)
		}
	}
}

func (h *Holder) applyChange(ctx context.Context, change auth.Change) {
	h.mu.Lock()
	current := h.viewerID
	h.mu.Unlock()

	if !change.SignedIn {
		if change.Identity == current && current != "" {
			h.mu.Lock()
			h.viewerID = ""
			h.token = ""
			h.mu.Unlock()
			slog.Info("identity signed out remotely", "identity", change.Identity)
		}
		return
	}

	if change.Identity == current {
		return
	}
	// A sign-in without its token would leave a session that cannot
	// authenticate requests; refuse to adopt it.
	if change.Token == "" {
		slog.Warn("pushed sign-in carried no token, ignored", "identity", change.Identity)
		return
	}
	if _, err := h.resolveUser(ctx, change.Identity); err != nil {
		slog.Warn("pushed identity has no user record", "identity", change.Identity)
		return
	}
	h.establish(ctx, change.Identity, change.Token)
}

// establish sets the session identity atomically and persists the marker.
func (h *Holder) establish(ctx context.Context, identity, token string) {
	h.mu.Lock()
	h.viewerID = identity
	h.token = token
	h.mu.Unlock()

	if err := h.marker.Save(ctx, token); err != nil {
		slog.Warn("session marker save failed", "error", err)
	}
}

// resolveUser returns the user record for an identity, loading it from the
// backend into the record store when not yet present.
func (h *Holder) resolveUser(ctx context.Context, identity string) (*models.User, error) {
	if u, ok := h.records.User(identity); ok {
		return u, nil
	}
	u, err := h.backend.GetUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	h.records.UpsertUser(u)
	return u.Clone(), nil
}

func defaultAvatarURL(username string) string {
	return "https://api.dicebear.com/7.x/initials/svg?seed=" + username
}
