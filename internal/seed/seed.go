// Package seed provides helpers to create demo data for development and
// testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"librarium/internal/auth"
	"librarium/internal/models"
	"librarium/internal/precompute"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumContent  int
	Projects    []string
	ShouldClean bool
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	if len(opts.Projects) == 0 {
		opts.Projects = []string{"default"}
	}
	return &Factory{
		db:   db,
		opts: opts,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a fake user. Roughly one in ten users is a moderator.
func (f *Factory) CreateUser() (*models.User, error) {
	user := &models.User{
		ExternalID: uuid.NewString(),
		Username:   gofakeit.Username(),
		Token:      auth.HashToken(uuid.NewString()),
		Moderator:  f.rand.Intn(10) == 0,
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateContent persists a fake submission for the user in a random project.
func (f *Factory) CreateContent(user *models.User) (*models.Content, error) {
	project := f.opts.Projects[f.rand.Intn(len(f.opts.Projects))]
	content := &models.Content{
		UserID:  user.ID,
		Project: project,
		Title:   gofakeit.BookTitle(),
		Meta:    fmt.Sprintf(`{"description":%q}`, gofakeit.Sentence(8)),
		Data:    []byte(gofakeit.Paragraph(2, 4, 8, "\n")),
	}
	if err := f.db.Create(content).Error; err != nil {
		return nil, err
	}

	for _, tag := range gofakeit.NiceColors()[:f.rand.Intn(3)+1] {
		if err := f.db.Create(&models.Tag{ContentID: content.ID, Name: tag}).Error; err != nil {
			return nil, err
		}
	}
	return content, nil
}

// Run seeds users and content, sprinkles likes and reports, and recomputes
// every stats row.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	if opts.ShouldClean {
		for _, m := range []any{
			&models.UserStats{}, &models.ContentStats{}, &models.Report{},
			&models.Tag{}, &models.Like{}, &models.Content{}, &models.User{},
		} {
			if err := db.Where("1 = 1").Delete(m).Error; err != nil {
				return err
			}
		}
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users", len(users))

	var contentIDs []uint
	for i := 0; i < opts.NumContent; i++ {
		owner := users[f.rand.Intn(len(users))]
		content, err := f.CreateContent(owner)
		if err != nil {
			return err
		}
		contentIDs = append(contentIDs, content.ID)

		for _, user := range users {
			if user.ID == owner.ID {
				continue
			}
			if f.rand.Intn(4) == 0 {
				if err := db.Create(&models.Like{UserID: user.ID, ContentID: content.ID}).Error; err != nil {
					return err
				}
			}
			if f.rand.Intn(25) == 0 {
				if err := db.Create(&models.Report{
					UserID:    user.ID,
					ContentID: content.ID,
					Reason:    precompute.ReasonDefault,
				}).Error; err != nil {
					return err
				}
			}
		}
	}
	log.Printf("Seeded %d content items", len(contentIDs))

	engine := precompute.NewEngine(db, nil)
	for _, id := range contentIDs {
		if err := engine.Recompute(ctx, id); err != nil {
			return err
		}
	}
	for _, project := range opts.Projects {
		if err := engine.ForceRefreshUserStats(ctx, project); err != nil {
			return err
		}
	}
	log.Println("Recomputed stats")
	return nil
}
