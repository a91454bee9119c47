// Package app wires the record store, session holder, and view-model builder
// together and coordinates all state mutations.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"focusgram/internal/backend"
	"focusgram/internal/notifications"
	"focusgram/internal/observability"
	"focusgram/internal/session"
	"focusgram/internal/store"
	"focusgram/internal/viewmodel"

	"github.com/google/uuid"
)

// App is the application state object. It is the only writer of the record
// store and session holder in response to user intent, and the only
// component issuing writes to the persistence collaborator.
type App struct {
	records  *store.Store
	session  *session.Holder
	backend  backend.Backend
	notifier *notifications.Notifier

	// mutationMu serializes optimistic transitions so there is never more
	// than one writer of the record store at a time.
	mutationMu sync.Mutex

	// writes tracks in-flight asynchronous backend confirmations so
	// shutdown (and tests) can wait for them to settle.
	writes sync.WaitGroup
}

// New creates the application state object over its collaborators.
func New(records *store.Store, sess *session.Holder, b backend.Backend, notifier *notifications.Notifier) *App {
	return &App{
		records:  records,
		session:  sess,
		backend:  b,
		notifier: notifier,
	}
}

// Init performs the startup sequence: bulk-load records, then resolve the
// persisted session. The first view-model build happens on demand after.
func (a *App) Init(ctx context.Context) error {
	users, err := a.backend.FetchUsers(ctx)
	if err != nil {
		return err
	}
	posts, err := a.backend.FetchPosts(ctx)
	if err != nil {
		return err
	}
	a.records.ReplaceUsers(users)
	a.records.ReplacePosts(posts)

	a.session.Restore(ctx)
	slog.Info("records loaded", "users", len(users), "posts", len(posts))
	return nil
}

// Session returns the session holder.
func (a *App) Session() *session.Holder {
	return a.session
}

// Records returns the record store.
func (a *App) Records() *store.Store {
	return a.records
}

// Feed builds the viewer-relative view of all posts.
func (a *App) Feed() []viewmodel.Post {
	start := time.Now()
	feed := viewmodel.BuildFeed(a.records.Users(), a.records.Posts(), a.session.CurrentViewer())
	observability.FeedBuildDuration.Observe(time.Since(start).Seconds())
	return feed
}

// ProfileFeed builds the view of a single user's posts, preserving the feed
// order.
func (a *App) ProfileFeed(userID string) []viewmodel.Post {
	posts := a.records.Posts()
	own := posts[:0]
	for _, p := range posts {
		if p.AuthorID == userID {
			own = append(own, p)
		}
	}
	return viewmodel.BuildFeed(a.records.Users(), own, a.session.CurrentViewer())
}

// WaitForWrites blocks until all in-flight backend confirmations settle.
func (a *App) WaitForWrites() {
	a.writes.Wait()
}

// confirm dispatches the asynchronous backend write for an already-applied
// optimistic mutation. The local transition and the write share nothing but
// a correlation id; a failed write is logged and counted, never rolled back.
func (a *App) confirm(operation string, write func(ctx context.Context) error) {
	correlationID := uuid.NewString()
	a.writes.Add(1)
	go func() {
		defer a.writes.Done()
		if err := write(context.Background()); err != nil {
			observability.BackendWriteFailures.WithLabelValues(operation).Inc()
			slog.Error("backend write failed after optimistic update",
				"operation", operation,
				"correlation_id", correlationID,
				"error", err,
			)
			return
		}
		slog.Debug("backend write confirmed",
			"operation", operation,
			"correlation_id", correlationID,
		)
	}()
}

// publish pushes an event so connected clients re-render.
func (a *App) publish(event notifications.Event) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Publish(context.Background(), event); err != nil {
		slog.Warn("event publish failed", "type", event.Type, "error", err)
	}
}
