package app

import (
	"context"
	"time"

	"focusgram/internal/models"
	"focusgram/internal/notifications"
	"focusgram/internal/observability"
	"focusgram/internal/validation"

	"github.com/google/uuid"
)

// Mutation operation names used in logs and metrics.
const (
	opCreatePost   = "create_post"
	opAddComment   = "add_comment"
	opToggleLike   = "toggle_like"
	opToggleFollow = "toggle_follow"
	opToggleSave   = "toggle_save"
)

// CreatePost prepends a new post by the active viewer and increments their
// post counter. The local identifier and timestamp are provisional; the
// stored creation timestamp is assigned by the backend at persistence.
func (a *App) CreatePost(ctx context.Context, media []models.Media, caption string) (*models.Post, error) {
	// The viewer snapshot must be taken under the mutation lock: a snapshot
	// read before Lock() could be overwritten by a concurrent mutation's
	// upsert, losing its change. Same pattern in every mutation below.
	a.mutationMu.Lock()
	viewer := a.session.CurrentViewer()
	if viewer == nil {
		a.mutationMu.Unlock()
		return nil, models.NewUnauthenticatedError()
	}
	if len(media) == 0 {
		a.mutationMu.Unlock()
		return nil, models.NewValidationError("at least one media item is required")
	}
	for _, m := range media {
		if m.Kind != models.MediaKindImage && m.Kind != models.MediaKindVideo {
			a.mutationMu.Unlock()
			return nil, models.NewValidationError("media type must be image or video")
		}
	}
	if err := validation.ValidateCaption(caption); err != nil {
		a.mutationMu.Unlock()
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		ID:        uuid.NewString(),
		AuthorID:  viewer.ID,
		Media:     append(models.MediaList(nil), media...),
		Caption:   caption,
		Comments:  models.CommentList{},
		CreatedAt: time.Now(),
	}

	a.records.PrependPost(post)
	viewer.PostsCount++
	a.records.UpsertUser(viewer)
	a.mutationMu.Unlock()
	observability.OptimisticMutations.WithLabelValues(opCreatePost).Inc()

	author := viewer.Clone()
	a.confirm(opCreatePost, func(ctx context.Context) error {
		if err := a.backend.CreatePost(ctx, post.Clone()); err != nil {
			return err
		}
		return a.backend.UpdateUser(ctx, author)
	})
	a.publish(notifications.Event{Type: notifications.EventPostCreated, ID: post.ID})

	return post.Clone(), nil
}

// AddComment appends a comment by the active viewer to the target post.
func (a *App) AddComment(ctx context.Context, postID, text string) (*models.Comment, error) {
	a.mutationMu.Lock()
	viewer := a.session.CurrentViewer()
	if viewer == nil {
		a.mutationMu.Unlock()
		return nil, models.NewUnauthenticatedError()
	}
	trimmed, err := validation.ValidateCommentText(text)
	if err != nil {
		a.mutationMu.Unlock()
		return nil, models.NewValidationError(err.Error())
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		AuthorID:  viewer.ID,
		Text:      trimmed,
		CreatedAt: time.Now(),
	}

	post, ok := a.records.Post(postID)
	if !ok {
		a.mutationMu.Unlock()
		return nil, models.NewNotFoundError("Post", postID)
	}
	post.Comments = append(post.Comments, comment)
	a.records.UpsertPost(post)
	a.mutationMu.Unlock()
	observability.OptimisticMutations.WithLabelValues(opAddComment).Inc()

	a.confirm(opAddComment, func(ctx context.Context) error {
		return a.backend.AppendComment(ctx, postID, comment)
	})
	a.publish(notifications.Event{Type: notifications.EventPostUpdated, ID: postID})

	return &comment, nil
}

// ToggleLike flips the active viewer's like of the post. Each call flips
// relative to current state; callers should disable the control while the
// write is in flight to avoid double-flips from repeated clicks.
func (a *App) ToggleLike(ctx context.Context, postID string) (bool, error) {
	a.mutationMu.Lock()
	viewer := a.session.CurrentViewer()
	if viewer == nil {
		a.mutationMu.Unlock()
		return false, models.NewUnauthenticatedError()
	}
	post, ok := a.records.Post(postID)
	if !ok {
		a.mutationMu.Unlock()
		return false, models.NewNotFoundError("Post", postID)
	}
	liked := applyToggleLike(viewer, post)
	a.records.UpsertUser(viewer)
	a.records.UpsertPost(post)
	a.mutationMu.Unlock()
	observability.OptimisticMutations.WithLabelValues(opToggleLike).Inc()

	delta := 1
	if !liked {
		delta = -1
	}
	updated := viewer.Clone()
	a.confirm(opToggleLike, func(ctx context.Context) error {
		if err := a.backend.AdjustLikes(ctx, postID, delta); err != nil {
			return err
		}
		return a.backend.UpdateUser(ctx, updated)
	})
	a.publish(notifications.Event{Type: notifications.EventPostUpdated, ID: postID})

	return liked, nil
}

// ToggleFollow flips whether the active viewer follows the target user and
// adjusts both counters symmetrically. Following oneself is rejected.
func (a *App) ToggleFollow(ctx context.Context, targetUserID string) (bool, error) {
	a.mutationMu.Lock()
	viewer := a.session.CurrentViewer()
	if viewer == nil {
		a.mutationMu.Unlock()
		return false, models.NewUnauthenticatedError()
	}
	if targetUserID == viewer.ID {
		a.mutationMu.Unlock()
		return false, models.NewValidationError("cannot follow yourself")
	}
	target, ok := a.records.User(targetUserID)
	if !ok {
		a.mutationMu.Unlock()
		return false, models.NewNotFoundError("User", targetUserID)
	}
	following := applyToggleFollow(viewer, target)
	a.records.UpsertUser(viewer)
	a.records.UpsertUser(target)
	a.mutationMu.Unlock()
	observability.OptimisticMutations.WithLabelValues(opToggleFollow).Inc()

	updatedViewer := viewer.Clone()
	updatedTarget := target.Clone()
	a.confirm(opToggleFollow, func(ctx context.Context) error {
		if err := a.backend.UpdateUser(ctx, updatedViewer); err != nil {
			return err
		}
		return a.backend.UpdateUser(ctx, updatedTarget)
	})
	a.publish(notifications.Event{Type: notifications.EventUserUpdated, ID: targetUserID})

	return following, nil
}

// ToggleSave flips the active viewer's save of the post. No counters change.
func (a *App) ToggleSave(ctx context.Context, postID string) (bool, error) {
	a.mutationMu.Lock()
	viewer := a.session.CurrentViewer()
	if viewer == nil {
		a.mutationMu.Unlock()
		return false, models.NewUnauthenticatedError()
	}
	if _, ok := a.records.Post(postID); !ok {
		a.mutationMu.Unlock()
		return false, models.NewNotFoundError("Post", postID)
	}
	saved := applyToggleSave(viewer, postID)
	a.records.UpsertUser(viewer)
	a.mutationMu.Unlock()
	observability.OptimisticMutations.WithLabelValues(opToggleSave).Inc()

	updated := viewer.Clone()
	a.confirm(opToggleSave, func(ctx context.Context) error {
		return a.backend.UpdateUser(ctx, updated)
	})
	a.publish(notifications.Event{Type: notifications.EventUserUpdated, ID: viewer.ID})

	return saved, nil
}
