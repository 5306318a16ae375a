package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	Clean           bool
	// RandSeed makes generated content reproducible. Zero seeds from the clock.
	RandSeed int64
}

// Report counts what a run created.
type Report struct {
	Users    int
	Posts    int
	Comments int
}

// Seeder writes fixtures and fake content through the repositories, so seeded posts go
// through the same tag transaction as API-created ones.
type Seeder struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, randSeed int64) *Seeder {
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}
	return &Seeder{
		db:       db,
		faker:    gofakeit.New(randSeed),
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
	}
}

// Run applies the default fixtures and then generates users, posts and comments.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	fx, err := DefaultFixtures()
	if err != nil {
		return nil, err
	}
	if err := ApplyFixtures(ctx, s.db, fx); err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories to attach posts to")
	}

	report := &Report{}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user := s.BuildUser(i)
		if err := s.users.Create(ctx, user); err != nil {
			return report, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
		report.Users++
	}

	for i := 0; i < opts.Posts; i++ {
		post := s.BuildPost(categories[s.faker.Number(0, len(categories)-1)].ID, pickUser(s.faker, users))
		created, err := s.posts.Create(ctx, post, s.pickTags(fx.Tags))
		if err != nil {
			return report, fmt.Errorf("create post: %w", err)
		}
		report.Posts++

		for j := 0; j < opts.CommentsPerPost; j++ {
			comment := &models.Comment{
				PostID:  created.ID,
				UserID:  pickUser(s.faker, users),
				Content: s.faker.Sentence(s.faker.Number(4, 14)),
			}
			if err := s.comments.Create(ctx, comment); err != nil {
				return report, fmt.Errorf("create comment: %w", err)
			}
			report.Comments++
		}
	}

	middleware.Logger.InfoContext(ctx, "Seeding complete",
		slog.Int("users", report.Users),
		slog.Int("posts", report.Posts),
		slog.Int("comments", report.Comments),
	)
	return report, nil
}

// BuildUser returns an unsaved user. The index keeps generated emails unique.
func (s *Seeder) BuildUser(i int) *models.User {
	username := strings.ToLower(s.faker.Username())
	return &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s.%d@%s", username, i, s.faker.DomainName()),
	}
}

// BuildPost returns an unsaved post in categoryID, optionally authored by userID.
func (s *Seeder) BuildPost(categoryID uint, userID *uint) *models.Post {
	return &models.Post{
		Title:      strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 8)), "."),
		Content:    s.faker.Paragraph(s.faker.Number(1, 3), 4, 12, "\n\n"),
		CategoryID: categoryID,
		UserID:     userID,
		Likes:      s.faker.Number(0, 40),
	}
}

func (s *Seeder) pickTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	n := s.faker.Number(0, 3)
	picked := make([]string, 0, n)
	for i := 0; i < n; i++ {
		picked = append(picked, tags[s.faker.Number(0, len(tags)-1)])
	}
	return picked
}

// pickUser returns a random author id, or nil for an anonymous post or comment.
func pickUser(f *gofakeit.Faker, users []*models.User) *uint {
	if len(users) == 0 || f.Number(0, 4) == 0 {
		return nil
	}
	id := users[f.Number(0, len(users)-1)].ID
	return &id
}

// ClearAll removes all blog content in foreign key order.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Comment{},
		&models.PostTag{},
		&models.Post{},
		&models.Tag{},
		&models.Category{},
		&models.User{},
	} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}
