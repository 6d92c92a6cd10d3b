package repository_test

import (
	"context"
	"testing"
	"time"

	"librarium/internal/models"
	"librarium/internal/precompute"
	"librarium/internal/query"
	"librarium/internal/repository"
	"librarium/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{ExternalID: "ext-" + username, Username: username}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createContent(t *testing.T, db *gorm.DB, user *models.User, project, title string, data []byte) *models.Content {
	t.Helper()
	content := &models.Content{UserID: user.ID, Project: project, Title: title, Meta: "{}", Data: data}
	require.NoError(t, db.Create(content).Error)
	require.NoError(t, precompute.NewEngine(db, nil).Recompute(context.Background(), content.ID))
	return content
}

func TestContentUpdateDraftBumpsVersion(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repository.NewContentRepository(db)

	owner := createUser(t, db, "alice")
	content := createContent(t, db, owner, "atelier", "first", []byte("v1"))

	require.NoError(t, repo.UpdateDraft(ctx, content.ID, "second", `{"a":1}`, []byte("v2")))
	require.NoError(t, repo.UpdateDraft(ctx, content.ID, "third", `{"a":2}`, []byte("v3")))

	updated, err := repo.GetByID(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, "third", updated.Title)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, []byte("v3"), updated.Data)
}

func TestContentDeleteCascades(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repository.NewContentRepository(db)

	owner := createUser(t, db, "alice")
	fan := createUser(t, db, "bob")
	content := createContent(t, db, owner, "atelier", "piece", []byte("x"))

	require.NoError(t, db.Create(&models.Like{UserID: fan.ID, ContentID: content.ID}).Error)
	require.NoError(t, db.Create(&models.Tag{ContentID: content.ID, Name: "blue"}).Error)
	require.NoError(t, db.Create(&models.Report{
		UserID: fan.ID, ContentID: content.ID, Reason: precompute.ReasonDefault,
	}).Error)

	require.NoError(t, repo.Delete(ctx, content.ID))

	for _, m := range []any{&models.Content{}, &models.Like{}, &models.Tag{}, &models.Report{}, &models.ContentStats{}} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestContentDeleteByUser(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repository.NewContentRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	mine1 := createContent(t, db, alice, "atelier", "one", []byte("1"))
	mine2 := createContent(t, db, alice, "atelier", "two", []byte("2"))
	theirs := createContent(t, db, bob, "atelier", "keep", []byte("3"))

	deleted, err := repo.DeleteByUser(ctx, alice.ID)
	require.NoError(t, err)
	ids := make([]uint, 0, len(deleted))
	for _, c := range deleted {
		assert.Equal(t, "atelier", c.Project)
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []uint{mine1.ID, mine2.ID}, ids)

	exists, err := repo.Exists(ctx, theirs.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestContentDuplicateExists(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repository.NewContentRepository(db)

	owner := createUser(t, db, "alice")
	createContent(t, db, owner, "atelier", "piece", []byte("payload"))

	dup, err := repo.DuplicateExists(ctx, "atelier", []byte("payload"))
	require.NoError(t, err)
	assert.True(t, dup)

	// same payload in another project is fine
	dup, err = repo.DuplicateExists(ctx, "other", []byte("payload"))
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = repo.DuplicateExists(ctx, "atelier", []byte("different"))
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestContentGetDetail(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repository.NewContentRepository(db)

	owner := createUser(t, db, "alice")
	fan := createUser(t, db, "bob")
	content := createContent(t, db, owner, "atelier", "piece", []byte("x"))
	require.NoError(t, db.Create(&models.Like{UserID: fan.ID, ContentID: content.ID}).Error)
	require.NoError(t, db.Create(&models.Tag{ContentID: content.ID, Name: "blue"}).Error)
	require.NoError(t, precompute.NewEngine(db, nil).Recompute(ctx, content.ID))

	row, err := repo.GetDetail(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, content.ID, row.ContentID)
	assert.Equal(t, "alice", row.Username)
	assert.Equal(t, 1, row.Likes)
	assert.Equal(t, "blue", row.Tags)
	assert.Equal(t, []byte("x"), row.Data)

	_, err = repo.GetDetail(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// TestContentListMatchesEvaluator runs the same options through the SQL
// translation and the in-memory evaluator and expects identical results.
func TestContentListMatchesEvaluator(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repository.NewContentRepository(db)
	engine := precompute.NewEngine(db, nil)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	banned := createUser(t, db, "mallory")
	require.NoError(t, db.Model(banned).Update("banned", true).Error)

	redCar := createContent(t, db, alice, "atelier", "Red Car", []byte("1"))
	blueBike := createContent(t, db, bob, "atelier", "Blue Bike", []byte("2"))
	reported := createContent(t, db, alice, "atelier", "Contested", []byte("3"))
	fromBanned := createContent(t, db, banned, "atelier", "Shady", []byte("4"))
	createContent(t, db, alice, "elsewhere", "Other Project", []byte("5"))
	percentOff := createContent(t, db, bob, "atelier", "50% off", []byte("6"))
	halfOff := createContent(t, db, alice, "atelier", "Half off", []byte("7"))

	require.NoError(t, db.Create(&models.Tag{ContentID: redCar.ID, Name: "red"}).Error)
	require.NoError(t, db.Create(&models.Tag{ContentID: blueBike.ID, Name: "blue"}).Error)
	require.NoError(t, db.Create(&models.Tag{ContentID: percentOff.ID, Name: "snake_case"}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: bob.ID, ContentID: redCar.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: alice.ID, ContentID: halfOff.ID}).Error)
	for _, reporter := range []*models.User{alice, bob} {
		require.NoError(t, db.Create(&models.Report{
			UserID: reporter.ID, ContentID: reported.ID, Reason: precompute.ReasonDefault,
		}).Error)
	}
	for _, id := range []uint{redCar.ID, blueBike.ID, reported.ID, fromBanned.ID, percentOff.ID, halfOff.ID} {
		require.NoError(t, engine.Recompute(ctx, id))
	}

	now := time.Now()
	for name, opts := range map[string]query.Options{
		"defaults":       query.DefaultOptions("atelier"),
		"whitelist": func() query.Options {
			o := query.DefaultOptions("atelier")
			o.Whitelist = "red"
			return o
		}(),
		"blacklist": func() query.Options {
			o := query.DefaultOptions("atelier")
			o.Blacklist = "blue"
			return o
		}(),
		"unfiltered": func() query.Options {
			o := query.DefaultOptions("atelier")
			o.FilterBanned = false
			o.FilterReported = false
			return o
		}(),
		"likes track": func() query.Options {
			o := query.DefaultOptions("atelier")
			o.Track = query.TrackLikes
			o.UserID = bob.ID
			return o
		}(),
		"submissions desc": func() query.Options {
			o := query.DefaultOptions("atelier")
			o.Track = query.TrackSubmissions
			o.UserID = alice.ID
			o.Order = query.OrderLikes
			o.Descending = true
			return o
		}(),
		// the percent sign must match literally, not as a LIKE wildcard
		"whitelist percent literal": func() query.Options {
			o := query.DefaultOptions("atelier")
			o.Whitelist = "% off"
			return o
		}(),
		// an unescaped underscore would match every non-empty tag set
		"blacklist underscore literal": func() query.Options {
			o := query.DefaultOptions("atelier")
			o.Blacklist = "_"
			return o
		}(),
		"recommendations desc": func() query.Options {
			o := query.DefaultOptions("atelier")
			o.UserID = bob.ID
			o.Order = query.OrderRecommendations
			o.Descending = true
			return o
		}(),
	} {
		got, err := repo.List(ctx, opts, now)
		require.NoError(t, err, name)

		all := loadAllRows(t, db, ctx)
		clauses, err := query.Build(opts)
		require.NoError(t, err, name)
		want := query.Evaluate(all, clauses, opts, now)

		require.Len(t, got, len(want), name)
		for i := range want {
			assert.Equal(t, want[i].ContentID, got[i].ContentID, name)
		}
	}
}

// loadAllRows scans every content row with its aggregates for the evaluator.
func loadAllRows(t *testing.T, db *gorm.DB, ctx context.Context) []*query.Row {
	t.Helper()

	var rows []*query.Row
	err := db.WithContext(ctx).
		Table("content c").
		Select("c.id AS content_id, c.project, c.user_id, users.username, c.title, c.version, "+
			"stats.likes, stats.tags, stats.reports, stats.counter_reports, users.banned").
		Joins("INNER JOIN users ON users.id = c.user_id").
		Joins("INNER JOIN content_stats stats ON stats.content_id = c.id").
		Order("c.id").
		Scan(&rows).Error
	require.NoError(t, err)

	for _, row := range rows {
		row.LikedBy = make(map[uint]bool)
		row.DefaultReporters = make(map[uint]bool)

		var likes []models.Like
		require.NoError(t, db.Find(&likes, "content_id = ?", row.ContentID).Error)
		for _, l := range likes {
			row.LikedBy[l.UserID] = true
		}

		var reports []models.Report
		require.NoError(t, db.Find(&reports, "content_id = ? AND reason = ?", row.ContentID, precompute.ReasonDefault).Error)
		for _, r := range reports {
			row.DefaultReporters[r.UserID] = true
		}
	}
	return rows
}

func TestContentIDsAndCountsByProject(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repository.NewContentRepository(db)

	owner := createUser(t, db, "alice")
	a := createContent(t, db, owner, "atelier", "a", []byte("a"))
	b := createContent(t, db, owner, "atelier", "b", []byte("b"))
	createContent(t, db, owner, "elsewhere", "c", []byte("c"))

	ids, err := repo.IDsByProject(ctx, "atelier")
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID}, ids)

	counts, err := repo.CountByProject(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"atelier": 2, "elsewhere": 1}, counts)
}
