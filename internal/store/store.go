// Package store holds the client-authoritative copies of user and post
// records loaded from the persistence backend.
package store

import (
	"sync"

	"focusgram/internal/models"
)

// Store is the record store: raw users and posts keyed by identifier, with
// no joins and no derived fields. Post order equals the order received from
// the backend (descending creation time) and is preserved through
// prepend-on-create. Records are never removed.
//
// All accessors return deep copies; all mutators store deep copies. State
// changes are guarded by a RWMutex so the store is safe for concurrent
// readers alongside the single mutation coordinator.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*models.User
	userOrder []string
	posts     map[string]*models.Post
	postOrder []string
}

// New creates an empty record store.
func New() *Store {
	return &Store{
		users: make(map[string]*models.User),
		posts: make(map[string]*models.Post),
	}
}

// ReplaceUsers replaces all user records, keeping the given order.
func (s *Store) ReplaceUsers(users []*models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*models.User, len(users))
	s.userOrder = s.userOrder[:0]
	for _, u := range users {
		if _, ok := s.users[u.ID]; !ok {
			s.userOrder = append(s.userOrder, u.ID)
		}
		s.users[u.ID] = u.Clone()
	}
}

// ReplacePosts replaces all post records, keeping the given order.
func (s *Store) ReplacePosts(posts []*models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = make(map[string]*models.Post, len(posts))
	s.postOrder = s.postOrder[:0]
	for _, p := range posts {
		if _, ok := s.posts[p.ID]; !ok {
			s.postOrder = append(s.postOrder, p.ID)
		}
		s.posts[p.ID] = p.Clone()
	}
}

// UpsertUser inserts or updates a single user record.
func (s *Store) UpsertUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		s.userOrder = append(s.userOrder, u.ID)
	}
	s.users[u.ID] = u.Clone()
}

// UpsertPost updates an existing post in place, or appends an unknown one
// at the end. Position within the sequence never changes on update.
func (s *Store) UpsertPost(p *models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[p.ID]; !ok {
		s.postOrder = append(s.postOrder, p.ID)
	}
	s.posts[p.ID] = p.Clone()
}

// PrependPost puts a new post at the head of the sequence. An already known
// identifier is updated in place instead.
func (s *Store) PrependPost(p *models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[p.ID]; !ok {
		s.postOrder = append([]string{p.ID}, s.postOrder...)
	}
	s.posts[p.ID] = p.Clone()
}

// User returns a copy of the user record with the given identifier.
func (s *Store) User(id string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	return u.Clone(), true
}

// UserByUsername returns a copy of the user record with the given username.
func (s *Store) UserByUsername(username string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u.Clone(), true
		}
	}
	return nil, false
}

// Post returns a copy of the post record with the given identifier.
func (s *Store) Post(id string) (*models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Users returns copies of all user records in insertion order.
func (s *Store) Users() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id].Clone())
	}
	return out
}

// Posts returns copies of all post records in sequence order.
func (s *Store) Posts() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Post, 0, len(s.postOrder))
	for _, id := range s.postOrder {
		out = append(out, s.posts[id].Clone())
	}
	return out
}
