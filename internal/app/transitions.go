package app

import "focusgram/internal/models"

// The functions below are the synchronous local-state transitions of the
// optimistic mutations. They mutate the copies they are given and return
// the resulting intent, leaving persistence to the caller. Keeping them
// free of I/O lets them be tested independently of the write path.

// applyToggleLike flips the viewer's like of the post and adjusts its
// counter, floored at zero. Returns whether the post is now liked.
func applyToggleLike(viewer *models.User, post *models.Post) bool {
	if viewer.LikedPosts.Contains(post.ID) {
		viewer.LikedPosts = viewer.LikedPosts.Remove(post.ID)
		if post.Likes > 0 {
			post.Likes--
		}
		return false
	}
	viewer.LikedPosts = viewer.LikedPosts.Add(post.ID)
	post.Likes++
	return true
}

// applyToggleSave flips the viewer's save of the post. No counters change.
// Returns whether the post is now saved.
func applyToggleSave(viewer *models.User, postID string) bool {
	if viewer.SavedPosts.Contains(postID) {
		viewer.SavedPosts = viewer.SavedPosts.Remove(postID)
		return false
	}
	viewer.SavedPosts = viewer.SavedPosts.Add(postID)
	return true
}

// applyToggleFollow flips the viewer's membership in the target's followers
// and adjusts both denormalized counters symmetrically. Returns whether the
// viewer now follows the target.
func applyToggleFollow(viewer, target *models.User) bool {
	if viewer.Following.Contains(target.ID) {
		viewer.Following = viewer.Following.Remove(target.ID)
		viewer.FollowingCount--
		target.FollowersCount--
		return false
	}
	viewer.Following = viewer.Following.Add(target.ID)
	viewer.FollowingCount++
	target.FollowersCount++
	return true
}
