// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"meydan/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// MaxDays is how far back post timestamps are spread.
	MaxDays int
}

// Seeder populates the database with demo accounts, profiles, posts,
// likes, and comments.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db, rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll removes all seedable data, children first.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Like{}, &models.Comment{}, &models.Post{}, &models.Profile{}, &models.Account{},
	} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Seed populates the database with test data
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	profiles, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	log.Printf("✓ %d users created", len(profiles))

	posts, err := s.seedPosts(profiles, opts.NumPosts, opts.MaxDays)
	if err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	likes, comments, err := s.seedEngagement(profiles, posts)
	if err != nil {
		return fmt.Errorf("seed engagement: %w", err)
	}
	log.Printf("✓ %d likes, %d comments created", likes, comments)
	log.Println("All test users have the password: password123")
	return nil
}

// seedUsers creates accounts with matching profiles. All accounts share the
// password "password123" so any of them can be used for manual testing.
func (s *Seeder) seedUsers(n int) ([]*models.Profile, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profiles := make([]*models.Profile, 0, n)
	for i := 0; i < n; i++ {
		account := &models.Account{
			Email:    fmt.Sprintf("%s%d@example.com", gofakeit.Username(), i),
			Password: string(hashed),
		}
		if err := s.db.Create(account).Error; err != nil {
			return nil, err
		}

		profile := &models.Profile{
			ID:        account.ID,
			Name:      gofakeit.Name(),
			AvatarURL: models.DefaultAvatarURL(account.ID),
		}
		if err := s.db.Create(profile).Error; err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func (s *Seeder) seedPosts(profiles []*models.Profile, n, maxDays int) ([]*models.Post, error) {
	if maxDays <= 0 {
		maxDays = 90
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := profiles[s.rand.Intn(len(profiles))]
		post := &models.Post{
			UserID:  author.ID,
			Content: gofakeit.Sentence(8 + s.rand.Intn(12)),
		}

		// Roughly a third of posts carry an image.
		if s.rand.Intn(3) == 0 {
			post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
			post.MediaType = models.MediaTypeImage
		}

		// Realistic created_at spread.
		back := time.Duration(s.rand.Intn(maxDays*24))*time.Hour + time.Duration(s.rand.Intn(60))*time.Minute
		post.CreatedAt = time.Now().Add(-back)
		post.UpdatedAt = post.CreatedAt

		if err := s.db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// seedEngagement sprinkles likes and comments across posts. Each
// (user, post) pair is liked at most once, honoring the unique index.
func (s *Seeder) seedEngagement(profiles []*models.Profile, posts []*models.Post) (int, int, error) {
	likes, comments := 0, 0
	for _, post := range posts {
		for _, p := range profiles {
			if s.rand.Intn(4) != 0 {
				continue
			}
			like := &models.Like{UserID: p.ID, PostID: post.ID}
			if err := s.db.Create(like).Error; err != nil {
				return likes, comments, err
			}
			likes++
		}

		for i := s.rand.Intn(4); i > 0; i-- {
			commenter := profiles[s.rand.Intn(len(profiles))]
			comment := &models.Comment{
				UserID:    commenter.ID,
				PostID:    post.ID,
				Text:      gofakeit.Sentence(4 + s.rand.Intn(10)),
				CreatedAt: post.CreatedAt.Add(time.Duration(1+s.rand.Intn(600)) * time.Minute),
			}
			if err := s.db.Create(comment).Error; err != nil {
				return likes, comments, err
			}
			comments++
		}
	}
	return likes, comments, nil
}
