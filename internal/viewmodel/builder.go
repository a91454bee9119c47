// Package viewmodel derives the display-ready, viewer-relative projection of
// the raw records. Building is a pure function of (users, posts, viewer);
// nothing here writes to the record store or the backend.
package viewmodel

import (
	"time"

	"focusgram/internal/models"
)

// PlaceholderUsername is rendered for authors whose user record is missing.
// A post must still render even when its author cannot be resolved.
const PlaceholderUsername = "unknown user"

// Author is the inlined author info attached to posts and comments.
type Author struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// Comment is a comment with its author inlined.
type Comment struct {
	ID        string    `json:"id"`
	Author    Author    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"timestamp"`
}

// Post is the denormalized, viewer-relative view of a post record.
type Post struct {
	ID        string         `json:"id"`
	Author    Author         `json:"user"`
	Media     []models.Media `json:"media"`
	Caption   string         `json:"caption"`
	Likes     int            `json:"likes"`
	Comments  []Comment      `json:"comments"`
	IsLiked   bool           `json:"isLiked"`
	IsSaved   bool           `json:"isSaved"`
	CreatedAt time.Time      `json:"timestamp"`
}

// BuildFeed joins posts with their authors and computes the viewer-relative
// flags. The input post order is preserved; nothing is re-sorted. viewer may
// be nil, in which case isLiked/isSaved are false everywhere.
func BuildFeed(users []*models.User, posts []*models.Post, viewer *models.User) []Post {
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, buildPost(byID, p, viewer))
	}
	return out
}

// BuildPost derives the view of a single post.
func BuildPost(users []*models.User, post *models.Post, viewer *models.User) Post {
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return buildPost(byID, post, viewer)
}

func buildPost(byID map[string]*models.User, p *models.Post, viewer *models.User) Post {
	comments := make([]Comment, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, Comment{
			ID:        c.ID,
			Author:    resolveAuthor(byID, c.AuthorID),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}

	view := Post{
		ID:        p.ID,
		Author:    resolveAuthor(byID, p.AuthorID),
		Media:     append([]models.Media(nil), p.Media...),
		Caption:   p.Caption,
		Likes:     p.Likes,
		Comments:  comments,
		CreatedAt: p.CreatedAt,
	}
	if viewer != nil {
		view.IsLiked = viewer.LikedPosts.Contains(p.ID)
		view.IsSaved = viewer.SavedPosts.Contains(p.ID)
	}
	return view
}

// resolveAuthor inlines the author's display fields, substituting a
// placeholder when the identifier has no matching record.
func resolveAuthor(byID map[string]*models.User, authorID string) Author {
	if u, ok := byID[authorID]; ok {
		return Author{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
	}
	return Author{ID: authorID, Username: PlaceholderUsername}
}
