// Package seed populates the database with demo data for development and
// testing.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"focusgram/internal/auth"
	"focusgram/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded account signs in with.
const DemoPassword = "password123"

// Factory builds domain records and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: weak random is fine for seeding
	return &Factory{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser persists a sample user together with a matching credential so
// the account can sign in with DemoPassword. Optional override functions may
// modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		ID:         uuid.NewString(),
		Username:   fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Name:       gofakeit.Name(),
		Email:      gofakeit.Email(),
		AvatarURL:  fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Bio:        gofakeit.Sentence(10),
		LikedPosts: models.IDSet{},
		SavedPosts: models.IDSet{},
		Following:  models.IDSet{},
	}
	for _, override := range overrides {
		override(user)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	cred := auth.Credential{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: string(hash),
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	if err := f.db.Create(&cred).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the given author without persisting it, so
// callers can batch inserts. The creation time is spread over the past 90
// days to make the feed look lived-in.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		ID:       uuid.NewString(),
		AuthorID: author.ID,
		Caption:  gofakeit.Sentence(f.rng.Intn(12) + 3),
		Media: models.MediaList{{
			URL:  fmt.Sprintf("https://picsum.photos/seed/%s/1080/1080", gofakeit.UUID()),
			Kind: models.MediaKindImage,
		}},
		Comments: models.CommentList{},
		CreatedAt: time.Now().
			Add(-time.Duration(f.rng.Intn(90*24)) * time.Hour).
			Add(-time.Duration(f.rng.Intn(60)) * time.Minute),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// BuildComment constructs a comment by the given author.
func (f *Factory) BuildComment(author *models.User) models.Comment {
	return models.Comment{
		ID:        uuid.NewString(),
		AuthorID:  author.ID,
		Text:      gofakeit.Sentence(f.rng.Intn(8) + 2),
		CreatedAt: time.Now().Add(-time.Duration(f.rng.Intn(24)) * time.Hour),
	}
}

// CreatePostsBatch persists multiple posts in a single insert.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}
