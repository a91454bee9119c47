package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionMarkerKey holds the opaque token of whoever was last signed in.
// It is read once at startup and must be re-validated against the auth
// collaborator before being trusted.
const sessionMarkerKey = "focusgram:session:marker"

// sessionMarkerTTL matches the token lifetime issued by the auth collaborator.
const sessionMarkerTTL = 7 * 24 * time.Hour

// SessionMarkerStore persists the last signed-in identity token.
type SessionMarkerStore struct {
	rdb *redis.Client
}

// NewSessionMarkerStore wraps a Redis client. A nil client yields a store
// whose Load always reports no marker.
func NewSessionMarkerStore(rdb *redis.Client) *SessionMarkerStore {
	return &SessionMarkerStore{rdb: rdb}
}

// Save records the marker for the next startup.
func (s *SessionMarkerStore) Save(ctx context.Context, token string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, sessionMarkerKey, token, sessionMarkerTTL).Err()
}

// Load returns the persisted marker, or "" when none is set.
func (s *SessionMarkerStore) Load(ctx context.Context) (string, error) {
	if s.rdb == nil {
		return "", nil
	}
	token, err := s.rdb.Get(ctx, sessionMarkerKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Clear removes the marker. Called on sign-out.
func (s *SessionMarkerStore) Clear(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, sessionMarkerKey).Err()
}
