package seed

import (
	"fmt"
	"log/slog"

	"focusgram/internal/auth"
	"focusgram/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with a consistent social mesh: users, posts
// with comments, likes, saves, and follow relations. The denormalized
// counters are written to match the relations exactly.
func Seed(db *gorm.DB, opts Options) error {
	slog.Info("seeding database", "users", opts.NumUsers, "posts", opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			slog.Warn("could not clear all existing data, continuing", "error", err)
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, u)
	}
	slog.Info("users created", "count", len(users))

	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rng.Intn(len(users))]
		post := f.BuildPost(author)
		author.PostsCount++

		for c := 0; c < f.rng.Intn(4); c++ {
			commenter := users[f.rng.Intn(len(users))]
			post.Comments = append(post.Comments, f.BuildComment(commenter))
		}

		for l := 0; l < f.rng.Intn(len(users)+1); l++ {
			liker := users[f.rng.Intn(len(users))]
			if liker.LikedPosts.Contains(post.ID) {
				continue
			}
			liker.LikedPosts = liker.LikedPosts.Add(post.ID)
			post.Likes++
		}
		if f.rng.Intn(4) == 0 {
			saver := users[f.rng.Intn(len(users))]
			saver.SavedPosts = saver.SavedPosts.Add(post.ID)
		}

		posts = append(posts, post)
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	slog.Info("posts created", "count", len(posts))

	// follow mesh, counters adjusted on both sides
	for _, follower := range users {
		for t := 0; t < f.rng.Intn(len(users)); t++ {
			target := users[f.rng.Intn(len(users))]
			if target.ID == follower.ID || follower.Following.Contains(target.ID) {
				continue
			}
			follower.Following = follower.Following.Add(target.ID)
			follower.FollowingCount++
			target.FollowersCount++
		}
	}

	for _, u := range users {
		if err := db.Save(u).Error; err != nil {
			return fmt.Errorf("failed to update user counters: %w", err)
		}
	}

	slog.Info("database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	slog.Info("clearing existing data")
	for _, model := range []any{&models.Post{}, &auth.Credential{}, &models.User{}} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
