// Package testutil provides shared test doubles for the collaborator
// boundaries.
package testutil

import (
	"context"
	"sync"
	"time"

	"focusgram/internal/models"
)

// MemoryBackend is an in-memory persistence collaborator for tests. Every
// method can be made to fail by setting Err; writes are recorded so tests
// can assert on what reached the backend.
type MemoryBackend struct {
	mu    sync.Mutex
	Err   error
	users map[string]*models.User
	posts map[string]*models.Post
	order []string

	// CreatedPosts and AppendedComments record write calls in order.
	CreatedPosts     []*models.Post
	AppendedComments []models.Comment
	LikeAdjustments  []int
	UpdatedUsers     []*models.User
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		users: make(map[string]*models.User),
		posts: make(map[string]*models.Post),
	}
}

// SeedUser stores a user record directly, bypassing write recording.
func (m *MemoryBackend) SeedUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u.Clone()
}

// SeedPost stores a post record directly. Posts are returned newest-first
// in seed order reversed, matching the backend contract.
func (m *MemoryBackend) SeedPost(p *models.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = p.Clone()
	m.order = append([]string{p.ID}, m.order...)
}

func (m *MemoryBackend) FetchUsers(_ context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u.Clone())
	}
	return out, nil
}

func (m *MemoryBackend) FetchPosts(_ context.Context) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*models.Post, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.posts[id].Clone())
	}
	return out, nil
}

func (m *MemoryBackend) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	return u.Clone(), nil
}

func (m *MemoryBackend) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.Username == username {
			return u.Clone(), nil
		}
	}
	return nil, nil
}

func (m *MemoryBackend) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.users[user.ID] = user.Clone()
	return nil
}

func (m *MemoryBackend) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.users[user.ID] = user.Clone()
	m.UpdatedUsers = append(m.UpdatedUsers, user.Clone())
	return nil
}

func (m *MemoryBackend) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored := post.Clone()
	stored.CreatedAt = time.Now().UTC()
	m.posts[stored.ID] = stored
	m.order = append([]string{stored.ID}, m.order...)
	m.CreatedPosts = append(m.CreatedPosts, stored.Clone())
	return nil
}

func (m *MemoryBackend) AppendComment(_ context.Context, postID string, comment models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	p, ok := m.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	p.Comments = append(p.Comments, comment)
	m.AppendedComments = append(m.AppendedComments, comment)
	return nil
}

func (m *MemoryBackend) AdjustLikes(_ context.Context, postID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	p, ok := m.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	p.Likes += delta
	if p.Likes < 0 {
		p.Likes = 0
	}
	m.LikeAdjustments = append(m.LikeAdjustments, delta)
	return nil
}
