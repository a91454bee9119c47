package backend

import (
	"context"
	"errors"
	"time"

	"focusgram/internal/models"

	"gorm.io/gorm"
)

// gormBackend implements Backend over a relational database, storing the
// embedded media/comment/set fields as JSON columns.
type gormBackend struct {
	db *gorm.DB
}

// NewGormBackend creates a database-backed Backend.
func NewGormBackend(db *gorm.DB) Backend {
	return &gormBackend{db: db}
}

func (b *gormBackend) FetchUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := b.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, models.NewBackendUnavailableError(err)
	}
	return users, nil
}

func (b *gormBackend) FetchPosts(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := b.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, models.NewBackendUnavailableError(err)
	}
	return posts, nil
}

func (b *gormBackend) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := b.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewBackendUnavailableError(err)
	}
	return &user, nil
}

func (b *gormBackend) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := b.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewBackendUnavailableError(err)
	}
	return &user, nil
}

func (b *gormBackend) CreateUser(ctx context.Context, user *models.User) error {
	if err := b.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.NewBackendUnavailableError(err)
	}
	return nil
}

func (b *gormBackend) UpdateUser(ctx context.Context, user *models.User) error {
	if err := b.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewBackendUnavailableError(err)
	}
	return nil
}

func (b *gormBackend) CreatePost(ctx context.Context, post *models.Post) error {
	stored := post.Clone()
	stored.CreatedAt = time.Now().UTC()
	if err := b.db.WithContext(ctx).Create(stored).Error; err != nil {
		return models.NewBackendUnavailableError(err)
	}
	return nil
}

func (b *gormBackend) AppendComment(ctx context.Context, postID string, comment models.Comment) error {
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			return err
		}
		post.Comments = append(post.Comments, comment)
		return tx.Model(&post).Update("comments", post.Comments).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewBackendUnavailableError(err)
	}
	return nil
}

func (b *gormBackend) AdjustLikes(ctx context.Context, postID string, delta int) error {
	var expr string
	if delta >= 0 {
		expr = "likes + ?"
	} else {
		expr = "GREATEST(likes - ?, 0)"
		delta = -delta
	}
	err := b.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Update("likes", gorm.Expr(expr, delta)).Error
	if err != nil {
		return models.NewBackendUnavailableError(err)
	}
	return nil
}
