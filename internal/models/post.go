package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Media kinds.
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Media is a reference to binary content owned by exactly one post.
type Media struct {
	URL  string `json:"url"`
	Kind string `json:"type"`
}

// Comment is an append-only comment on a post. There is no edit or delete
// operation for comments anywhere in the application.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"timestamp"`
}

// Post represents a post record. Media and comments are embedded in the
// record as JSON columns; comments keep insertion order. The record carries
// no viewer-relative fields: liked/saved is always computed per viewer at
// view-model build time.
type Post struct {
	ID       string      `gorm:"primaryKey" json:"id"`
	AuthorID string      `gorm:"index;not null" json:"userId"`
	Media    MediaList   `gorm:"type:jsonb" json:"media"`
	Caption  string      `json:"caption"`
	Likes    int         `json:"likes"`
	Comments CommentList `gorm:"type:jsonb" json:"comments"`

	CreatedAt time.Time `gorm:"index" json:"timestamp"`
	UpdatedAt time.Time `json:"-"`
}

// MediaList is an ordered media sequence persisted as a JSON array.
type MediaList []Media

// Value implements driver.Valuer.
func (m MediaList) Value() (driver.Value, error) {
	if m == nil {
		m = MediaList{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *MediaList) Scan(value interface{}) error {
	return scanJSON(value, m, "MediaList")
}

// CommentList is an ordered, append-only comment sequence persisted as a
// JSON array.
type CommentList []Comment

// Value implements driver.Valuer.
func (c CommentList) Value() (driver.Value, error) {
	if c == nil {
		c = CommentList{}
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *CommentList) Scan(value interface{}) error {
	return scanJSON(value, c, "CommentList")
}

func scanJSON(value, dst interface{}, what string) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported type for %s: %T", what, value)
	}
}

// Clone returns a deep copy of the post record.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Media != nil {
		cp.Media = make(MediaList, len(p.Media))
		copy(cp.Media, p.Media)
	}
	if p.Comments != nil {
		cp.Comments = make(CommentList, len(p.Comments))
		copy(cp.Comments, p.Comments)
	}
	return &cp
}
