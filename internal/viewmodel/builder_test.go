package viewmodel

import (
	"testing"

	"focusgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = &models.User{ID: "u1", Username: "alice", AvatarURL: "https://cdn/a.webp"}
	bob   = &models.User{ID: "u2", Username: "bob"}
)

func TestBuildFeedInlinesAuthors(t *testing.T) {
	posts := []*models.Post{
		{ID: "p1", AuthorID: "u1", Caption: "sunset", Comments: models.CommentList{
			{ID: "c1", AuthorID: "u2", Text: "nice!"},
		}},
	}

	feed := BuildFeed([]*models.User{alice, bob}, posts, nil)
	require.Len(t, feed, 1)

	assert.Equal(t, Author{ID: "u1", Username: "alice", AvatarURL: "https://cdn/a.webp"}, feed[0].Author)
	require.Len(t, feed[0].Comments, 1)
	assert.Equal(t, "bob", feed[0].Comments[0].Author.Username)
}

func TestBuildFeedMissingAuthorGetsPlaceholder(t *testing.T) {
	posts := []*models.Post{
		{ID: "p1", AuthorID: "gone", Comments: models.CommentList{
			{ID: "c1", AuthorID: "also-gone", Text: "hi"},
		}},
	}

	feed := BuildFeed(nil, posts, nil)
	require.Len(t, feed, 1)
	assert.Equal(t, PlaceholderUsername, feed[0].Author.Username)
	assert.Equal(t, "gone", feed[0].Author.ID)
	assert.Equal(t, PlaceholderUsername, feed[0].Comments[0].Author.Username)
}

func TestBuildFeedViewerFlags(t *testing.T) {
	viewer := &models.User{
		ID:         "u2",
		Username:   "bob",
		LikedPosts: models.IDSet{"p1"},
		SavedPosts: models.IDSet{"p2"},
	}
	posts := []*models.Post{
		{ID: "p1", AuthorID: "u1"},
		{ID: "p2", AuthorID: "u1"},
		{ID: "p3", AuthorID: "u1"},
	}

	feed := BuildFeed([]*models.User{alice}, posts, viewer)
	require.Len(t, feed, 3)
	assert.True(t, feed[0].IsLiked)
	assert.False(t, feed[0].IsSaved)
	assert.False(t, feed[1].IsLiked)
	assert.True(t, feed[1].IsSaved)
	assert.False(t, feed[2].IsLiked)
	assert.False(t, feed[2].IsSaved)
}

func TestBuildFeedNoViewerAllFlagsFalse(t *testing.T) {
	posts := []*models.Post{{ID: "p1", AuthorID: "u1"}}
	feed := BuildFeed([]*models.User{alice}, posts, nil)
	assert.False(t, feed[0].IsLiked)
	assert.False(t, feed[0].IsSaved)
}

func TestBuildFeedPreservesOrder(t *testing.T) {
	posts := []*models.Post{
		{ID: "p9", AuthorID: "u1"},
		{ID: "p1", AuthorID: "u1"},
		{ID: "p5", AuthorID: "u1"},
	}
	feed := BuildFeed([]*models.User{alice}, posts, nil)
	require.Len(t, feed, 3)
	assert.Equal(t, "p9", feed[0].ID)
	assert.Equal(t, "p1", feed[1].ID)
	assert.Equal(t, "p5", feed[2].ID)
}

func TestBuildFeedDoesNotMutateInputs(t *testing.T) {
	p := &models.Post{ID: "p1", AuthorID: "u1", Media: models.MediaList{{URL: "x", Kind: models.MediaKindImage}}}
	feed := BuildFeed([]*models.User{alice}, []*models.Post{p}, nil)

	feed[0].Media[0].URL = "tampered"
	feed[0].Caption = "tampered"

	assert.Equal(t, "x", p.Media[0].URL)
	assert.Empty(t, p.Caption)
}
