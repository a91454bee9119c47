// Package models contains data structures for the application's domain records.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User represents a user record in Focusgram. The identifier is the opaque
// identity assigned by the auth collaborator at sign-up.
//
// PostsCount, FollowersCount and FollowingCount are denormalized: they are
// adjusted by the same mutation that changes the underlying relation and are
// never recomputed from it.
type User struct {
	ID             string `gorm:"primaryKey" json:"id"`
	Username       string `gorm:"uniqueIndex;not null" json:"username"`
	Name           string `json:"name"`
	Email          string `gorm:"uniqueIndex" json:"email,omitempty"`
	AvatarURL      string `json:"avatarUrl"`
	Bio            string `json:"bio,omitempty"`
	PostsCount     int    `json:"postsCount"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`

	// LikedPosts, SavedPosts and Following are identifier sets stored as JSON
	// columns, mirroring the document-database shape of the records.
	LikedPosts IDSet `gorm:"type:jsonb" json:"likedPosts"`
	SavedPosts IDSet `gorm:"type:jsonb" json:"savedPosts"`
	Following  IDSet `gorm:"type:jsonb" json:"following"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IDSet is an ordered set of identifiers persisted as a JSON array.
type IDSet []string

// Contains reports whether id is a member of the set.
func (s IDSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add returns the set with id appended if it is not already a member.
func (s IDSet) Add(id string) IDSet {
	if s.Contains(id) {
		return s
	}
	return append(s, id)
}

// Remove returns the set without id, preserving the order of the rest.
func (s IDSet) Remove(id string) IDSet {
	out := s[:0:0]
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s IDSet) Clone() IDSet {
	if s == nil {
		return nil
	}
	out := make(IDSet, len(s))
	copy(out, s)
	return out
}

// Value implements driver.Valuer so the set can be stored in a JSON column.
func (s IDSet) Value() (driver.Value, error) {
	if s == nil {
		s = IDSet{}
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *IDSet) Scan(value interface{}) error {
	if value == nil {
		*s = IDSet{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type for IDSet: %T", value)
	}
}

// Clone returns a deep copy of the user record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.LikedPosts = u.LikedPosts.Clone()
	cp.SavedPosts = u.SavedPosts.Clone()
	cp.Following = u.Following.Clone()
	return &cp
}
