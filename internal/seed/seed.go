// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"prompthub/internal/middleware"
	"prompthub/internal/models"
	"prompthub/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123!"

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// MaxDays spreads post creation times over the last MaxDays days.
	MaxDays int
	// RandSeed makes the generated data reproducible when non-zero.
	RandSeed int64
}

// Summary counts what a Seed run created.
type Summary struct {
	Users        int
	Posts        int
	Interactions int
}

// Seeder creates demo users, posts and interactions on top of the catalog.
type Seeder struct {
	db           *gorm.DB
	faker        *gofakeit.Faker
	interactions repository.InteractionRepository
	maxDays      int
}

// NewSeeder returns a Seeder bound to db. A zero randSeed picks a random one.
func NewSeeder(db *gorm.DB, randSeed int64, maxDays int) *Seeder {
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Seeder{
		db:           db,
		faker:        gofakeit.New(randSeed),
		interactions: repository.NewInteractionRepository(db),
		maxDays:      maxDays,
	}
}

// Seed populates the database with the catalog and demo data.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	s := NewSeeder(db, opts.RandSeed, opts.MaxDays)

	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return sum, fmt.Errorf("failed to clear data: %w", err)
		}
	}
	if err := Catalog(db.WithContext(ctx)); err != nil {
		return sum, fmt.Errorf("failed to seed catalog: %w", err)
	}

	users, err := s.Users(ctx, opts.NumUsers)
	if err != nil {
		return sum, fmt.Errorf("failed to create users: %w", err)
	}
	sum.Users = len(users)

	posts, err := s.Posts(ctx, users, opts.NumPosts)
	if err != nil {
		return sum, fmt.Errorf("failed to create posts: %w", err)
	}
	sum.Posts = len(posts)

	sum.Interactions, err = s.Interactions(ctx, users, posts)
	if err != nil {
		return sum, fmt.Errorf("failed to create interactions: %w", err)
	}

	middleware.Logger.InfoContext(ctx, "database seeded",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("interactions", sum.Interactions),
	)
	return sum, nil
}

// ClearAll removes users and everything they own. The catalog and trending
// tables are kept.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE post_interactions, posts, user_sessions, user_settings, users RESTART IDENTITY CASCADE`).Error
	}
	for _, model := range []any{
		&models.PostInteraction{},
		&models.Post{},
		&models.UserSession{},
		&models.UserSettings{},
		&models.User{},
	} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// Users creates n users sharing DefaultPassword.
func (s *Seeder) Users(ctx context.Context, n int) ([]models.User, error) {
	if n <= 0 {
		return nil, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// run tag keeps repeated runs without cleaning from colliding
	run := strings.ToLower(s.faker.LetterN(4))
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(s.faker.FirstName()), run, i+1)
		c1, c2 := models.AvatarColors(email)
		users = append(users, models.User{
			Email:        email,
			Username:     s.username(run, i),
			Password:     string(hashed),
			AvatarColor1: c1,
			AvatarColor2: c2,
			Bio:          s.faker.Sentence(8),
			Location:     fmt.Sprintf("%s, %s", s.faker.City(), s.faker.Country()),
		})
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&users, 100).Error; err != nil {
		return nil, err
	}

	settings := make([]models.UserSettings, len(users))
	for i := range users {
		settings[i] = models.DefaultUserSettings(users[i].ID)
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&settings, 100).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Seeder) username(run string, i int) string {
	var b strings.Builder
	for _, r := range s.faker.Username() {
		if r < 128 && (r == '_' || r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) > 20 {
		base = base[:20]
	}
	if base == "" || base[0] == '-' || base[0] == '_' {
		base = "user" + base
	}
	return fmt.Sprintf("%s_%s%d", base, run, i+1)
}

type catalogPick struct {
	platforms  []models.Platform
	categories []models.Category
}

func (s *Seeder) loadCatalog(ctx context.Context) (*catalogPick, error) {
	var pick catalogPick
	db := s.db.WithContext(ctx)
	if err := db.Where("is_active = ?", true).
		Preload("Models", "is_active = ?", true).
		Find(&pick.platforms).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&pick.categories).Error; err != nil {
		return nil, err
	}
	if len(pick.platforms) == 0 || len(pick.categories) == 0 {
		return nil, errors.New("catalog is empty; seed platforms and categories first")
	}
	return &pick, nil
}

// Posts creates n posts spread across users and the catalog.
func (s *Seeder) Posts(ctx context.Context, users []models.User, n int) ([]models.Post, error) {
	if n <= 0 || len(users) == 0 {
		return nil, nil
	}
	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		posts = append(posts, s.buildPost(author.ID, catalog))
	}
	if err := s.db.WithContext(ctx).Omit("Author", "Platform", "Model", "Category").
		CreateInBatches(&posts, 100).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Seeder) buildPost(authorID uint, catalog *catalogPick) models.Post {
	f := s.faker
	platform := catalog.platforms[f.Number(0, len(catalog.platforms)-1)]
	category := catalog.categories[f.Number(0, len(catalog.categories)-1)]

	post := models.Post{
		Title:             strings.TrimSuffix(f.Sentence(f.Number(3, 8)), "."),
		AuthorID:          authorID,
		PlatformID:        platform.ID,
		CategoryID:        category.ID,
		Prompt:            f.Question() + "\n\n" + f.Paragraph(1, 3, 12, "\n"),
		AIResponse:        f.Paragraph(2, 4, 15, "\n\n"),
		AdditionalOpinion: f.Sentence(12),
		ViewCount:         f.Number(0, 500),
	}

	if len(platform.Models) > 0 {
		model := platform.Models[f.Number(0, len(platform.Models)-1)]
		post.ModelID = &model.ID
		if model.IsOther() {
			post.ModelEtc = fmt.Sprintf("%s %d", f.AppName(), f.Number(1, 9))
		} else if model.VariantFreeTextAllowed && f.Number(0, 4) == 0 {
			post.ModelDetail = model.Name + " " + f.RandomString([]string{"(preview)", "latest", "high"})
		}
	}
	if category.IsOther() {
		post.CategoryEtc = f.Hobby()
	}

	tags := make([]string, f.Number(0, 3))
	for i := range tags {
		tags[i] = strings.ToLower(f.BuzzWord())
	}
	post.Tags = models.JoinTags(tags)

	if f.Number(0, 3) > 0 {
		v := float64(f.Number(1, 10)) / 2
		post.Satisfaction = &v
	}

	created := time.Now().Add(-time.Duration(f.Number(0, s.maxDays*24*60)) * time.Minute)
	post.CreatedAt = created
	post.UpdatedAt = created
	return post
}

// Interactions has each user like and bookmark a random handful of other
// users' posts, keeping post counters in step.
func (s *Seeder) Interactions(ctx context.Context, users []models.User, posts []models.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}
	total := 0
	for _, u := range users {
		for i := 0; i < s.faker.Number(0, 8); i++ {
			post := posts[s.faker.Number(0, len(posts)-1)]
			kind := models.InteractionLike
			if s.faker.Number(0, 2) == 0 {
				kind = models.InteractionBookmark
			}
			res, err := s.interactions.Toggle(ctx, u.ID, post.ID, kind)
			if err != nil {
				return total, err
			}
			if res.Active {
				total++
			}
		}
	}
	return total, nil
}
