// Package backend defines the persistence collaborator consumed by the
// synchronizer and its database-backed implementation.
package backend

import (
	"context"

	"focusgram/internal/models"
)

// Backend is the write/read contract against the document store holding user
// and post records. Reads are bulk-oriented: the synchronizer loads everything
// at session start and keeps its own copies current. Posts are always
// returned in descending creation order.
type Backend interface {
	FetchUsers(ctx context.Context) ([]*models.User, error)
	FetchPosts(ctx context.Context) ([]*models.Post, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	// GetUserByUsername returns nil without error when no user matches,
	// so callers can use it as a uniqueness check.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	// CreatePost persists a new post. The stored creation timestamp is
	// assigned server-side at persistence; the optimistic local timestamp
	// is display-only.
	CreatePost(ctx context.Context, post *models.Post) error
	AppendComment(ctx context.Context, postID string, comment models.Comment) error
	// AdjustLikes changes a post's like counter by delta, floored at zero.
	AdjustLikes(ctx context.Context, postID string, delta int) error
}
