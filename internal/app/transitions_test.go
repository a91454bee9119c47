package app

import (
	"testing"

	"focusgram/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestApplyToggleLike(t *testing.T) {
	viewer := &models.User{ID: "u1", LikedPosts: models.IDSet{}}
	post := &models.Post{ID: "p1", Likes: 10}

	liked := applyToggleLike(viewer, post)
	assert.True(t, liked)
	assert.Equal(t, 11, post.Likes)
	assert.True(t, viewer.LikedPosts.Contains("p1"))

	liked = applyToggleLike(viewer, post)
	assert.False(t, liked)
	assert.Equal(t, 10, post.Likes)
	assert.False(t, viewer.LikedPosts.Contains("p1"))
}

func TestApplyToggleLikeFloorsAtZero(t *testing.T) {
	// a like recorded in the viewer's set while the counter already reads
	// zero must not drive the counter negative
	viewer := &models.User{ID: "u1", LikedPosts: models.IDSet{"p1"}}
	post := &models.Post{ID: "p1", Likes: 0}

	liked := applyToggleLike(viewer, post)
	assert.False(t, liked)
	assert.Equal(t, 0, post.Likes)
}

func TestApplyToggleSave(t *testing.T) {
	viewer := &models.User{ID: "u1", SavedPosts: models.IDSet{}}

	assert.True(t, applyToggleSave(viewer, "p1"))
	assert.True(t, viewer.SavedPosts.Contains("p1"))

	assert.False(t, applyToggleSave(viewer, "p1"))
	assert.False(t, viewer.SavedPosts.Contains("p1"))
}

func TestApplyToggleFollowSymmetry(t *testing.T) {
	viewer := &models.User{ID: "a", Following: models.IDSet{}, FollowingCount: 0}
	target := &models.User{ID: "b", FollowersCount: 5}

	following := applyToggleFollow(viewer, target)
	assert.True(t, following)
	assert.Equal(t, 1, viewer.FollowingCount)
	assert.Equal(t, 6, target.FollowersCount)
	assert.True(t, viewer.Following.Contains("b"))

	following = applyToggleFollow(viewer, target)
	assert.False(t, following)
	assert.Equal(t, 0, viewer.FollowingCount)
	assert.Equal(t, 5, target.FollowersCount)
	assert.False(t, viewer.Following.Contains("b"))
}
