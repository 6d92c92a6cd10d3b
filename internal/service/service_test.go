package service_test

import (
	"context"
	"testing"

	"librarium/internal/auth"
	"librarium/internal/extension"
	"librarium/internal/models"
	"librarium/internal/precompute"
	"librarium/internal/query"
	"librarium/internal/repository"
	"librarium/internal/service"
	"librarium/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// env wires the full service stack over an in-memory database. Unless a test
// starts a miniredis via withCache, every cache call degrades to a direct
// database read.
type env struct {
	db       *gorm.DB
	contents repository.ContentRepository
	tags     repository.TagRepository
	likes    repository.LikeRepository
	reports  repository.ReportRepository
	users    repository.UserRepository
	engine   *precompute.Engine
	registry *extension.Registry

	content *service.ContentService
	like    *service.LikeService
	tag     *service.TagService
	report  *service.ReportService
	user    *service.UserService
}

func newEnv(t *testing.T, registry *extension.Registry, verifier auth.Verifier) *env {
	t.Helper()

	db := testutil.OpenDB(t)
	if registry == nil {
		registry = extension.NewRegistry(extension.NewProject("default"))
		registry.Register(extension.NewProject("atelier"))
	}

	e := &env{
		db:       db,
		contents: repository.NewContentRepository(db),
		tags:     repository.NewTagRepository(db),
		likes:    repository.NewLikeRepository(db),
		reports:  repository.NewReportRepository(db),
		users:    repository.NewUserRepository(db),
		engine:   precompute.NewEngine(db, nil),
		registry: registry,
	}
	toolkit := service.NewToolkit(e.contents, e.tags, e.likes, e.reports, e.users, e.engine)

	e.content = service.NewContentService(e.contents, e.tags, e.users, registry, e.engine, toolkit, nil)
	e.like = service.NewLikeService(e.likes, e.contents, e.engine)
	e.tag = service.NewTagService(e.tags, e.contents, e.users, e.engine)
	e.report = service.NewReportService(e.reports, e.contents, registry, e.engine, toolkit)
	e.user = service.NewUserService(e.users, e.contents, e.likes, e.engine, verifier, nil)
	return e
}

func (e *env) createUser(t *testing.T, username string, moderator bool) *models.User {
	t.Helper()
	user := &models.User{ExternalID: "ext-" + username, Username: username, Moderator: moderator}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *env) addContent(t *testing.T, userID uint, title string, data []byte) uint {
	t.Helper()
	id, _, err := e.content.Add(context.Background(), "atelier", userID, service.ContentDraft{
		Title: title, Meta: "{}", Data: data,
	})
	require.NoError(t, err)
	return id
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

// veto rejects every upload with a fixed message.
type veto struct {
	extension.Base
	message string
}

func (v veto) PreUpload(context.Context, extension.Toolkit, uint, *extension.Draft) (string, error) {
	return v.message, nil
}

// autoTagger appends a tag to every admitted draft.
type autoTagger struct {
	extension.Base
	tag string
}

func (v autoTagger) PreUpload(_ context.Context, _ extension.Toolkit, _ uint, draft *extension.Draft) (string, error) {
	draft.Tags = append(draft.Tags, v.tag)
	return "", nil
}

func TestContentAddRequiresActor(t *testing.T) {
	e := newEnv(t, nil, nil)
	_, _, err := e.content.Add(context.Background(), "atelier", 0, service.ContentDraft{Title: "x"})
	assertCode(t, err, models.CodeUnauthorized)
}

func TestContentAddBannedForbidden(t *testing.T) {
	e := newEnv(t, nil, nil)
	banned := e.createUser(t, "mallory", false)
	require.NoError(t, e.db.Model(banned).Update("banned", true).Error)

	_, _, err := e.content.Add(context.Background(), "atelier", banned.ID, service.ContentDraft{Title: "x"})
	assertCode(t, err, models.CodeForbidden)
}

func TestContentAddDuplicateConflict(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	e.addContent(t, alice.ID, "first", []byte("payload"))

	_, _, err := e.content.Add(context.Background(), "atelier", alice.ID, service.ContentDraft{
		Title: "second", Meta: "{}", Data: []byte("payload"),
	})
	assertCode(t, err, models.CodeConflict)
}

func TestContentAddVetoLeavesNoRow(t *testing.T) {
	registry := extension.NewRegistry(extension.NewProject("default"))
	registry.Register(extension.NewProject("atelier", veto{message: "not today"}))
	e := newEnv(t, registry, nil)
	alice := e.createUser(t, "alice", false)

	_, _, err := e.content.Add(context.Background(), "atelier", alice.ID, service.ContentDraft{
		Title: "x", Meta: "{}", Data: []byte("p"),
	})
	assertCode(t, err, models.CodeValidationRejected)
	assert.Contains(t, err.Error(), "not today")

	var count int64
	require.NoError(t, e.db.Model(&models.Content{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestContentAddPersistsHookTags(t *testing.T) {
	registry := extension.NewRegistry(extension.NewProject("default"))
	registry.Register(extension.NewProject("atelier", autoTagger{tag: "checked"}))
	e := newEnv(t, registry, nil)
	alice := e.createUser(t, "alice", false)

	id := e.addContent(t, alice.ID, "piece", []byte("p"))

	tags, err := e.tag.List(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"checked"}, tags)

	// the recompute after upload already reflects the hook tag
	var stats models.ContentStats
	require.NoError(t, e.db.First(&stats, "content_id = ?", id).Error)
	assert.Equal(t, "checked", stats.Tags)
}

func TestContentFallbackProjectIsReadOnly(t *testing.T) {
	registry, err := extension.BuildRegistry(nil)
	require.NoError(t, err)
	e := newEnv(t, registry, nil)
	alice := e.createUser(t, "alice", false)
	mod := e.createUser(t, "mod", true)

	_, _, err = e.content.Add(context.Background(), "unconfigured", alice.ID, service.ContentDraft{
		Title: "x", Meta: "{}", Data: []byte("p"),
	})
	assertCode(t, err, models.CodeValidationRejected)

	_, _, err = e.content.Add(context.Background(), "unconfigured", mod.ID, service.ContentDraft{
		Title: "x", Meta: "{}", Data: []byte("p"),
	})
	assert.NoError(t, err)
}

func TestContentUpdateOwnershipGuard(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	bob := e.createUser(t, "bob", false)
	mod := e.createUser(t, "mod", true)
	ctx := context.Background()

	id := e.addContent(t, alice.ID, "original", []byte("v1"))

	_, err := e.content.Update(ctx, id, bob.ID, service.ContentDraft{Title: "hijacked", Meta: "{}", Data: []byte("v2")})
	assertCode(t, err, models.CodeForbidden)

	_, err = e.content.Update(ctx, id, alice.ID, service.ContentDraft{Title: "mine", Meta: "{}", Data: []byte("v2")})
	require.NoError(t, err)

	_, err = e.content.Update(ctx, id, mod.ID, service.ContentDraft{Title: "moderated", Meta: "{}", Data: []byte("v3")})
	require.NoError(t, err)

	detail, err := e.content.Get(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, "moderated", detail.Title)
	assert.Equal(t, 2, detail.Version)
}

func TestContentGetNotFound(t *testing.T) {
	e := newEnv(t, nil, nil)
	_, err := e.content.Get(context.Background(), 9999, false)
	assertCode(t, err, models.CodeNotFound)
}

func TestContentDelete(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	bob := e.createUser(t, "bob", false)
	ctx := context.Background()

	id := e.addContent(t, alice.ID, "piece", []byte("p"))

	err := e.content.Delete(ctx, id, bob.ID)
	assertCode(t, err, models.CodeForbidden)

	require.NoError(t, e.content.Delete(ctx, id, alice.ID))
	_, err = e.content.Get(ctx, id, false)
	assertCode(t, err, models.CodeNotFound)
}

func TestContentList(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	ctx := context.Background()

	first := e.addContent(t, alice.ID, "First", []byte("1"))
	second := e.addContent(t, alice.ID, "Second", []byte("2"))

	opts := query.DefaultOptions("atelier")
	summaries, err := e.content.List(ctx, opts)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, first, summaries[0].ContentID)
	assert.Equal(t, second, summaries[1].ContentID)
	assert.Equal(t, "alice", summaries[0].Username)
	// meta omitted from lite listings
	assert.Nil(t, summaries[0].Meta)

	opts.Whitelist = "second"
	summaries, err = e.content.List(ctx, opts)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, second, summaries[0].ContentID)
}

func TestLikeAndUnlikeConflicts(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	bob := e.createUser(t, "bob", false)
	ctx := context.Background()

	id := e.addContent(t, alice.ID, "piece", []byte("p"))

	require.NoError(t, e.like.Like(ctx, id, bob.ID))
	assertCode(t, e.like.Like(ctx, id, bob.ID), models.CodeConflict)

	// the recompute lands before the request returns
	detail, err := e.content.Get(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Likes)

	require.NoError(t, e.like.Unlike(ctx, id, bob.ID))
	assertCode(t, e.like.Unlike(ctx, id, bob.ID), models.CodeConflict)

	assertCode(t, e.like.Like(ctx, 9999, bob.ID), models.CodeNotFound)
}

func TestTagCommaRejectedBeforeAnyWrite(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	ctx := context.Background()

	id := e.addContent(t, alice.ID, "piece", []byte("p"))

	err := e.tag.Add(ctx, id, alice.ID, "red,blue")
	assertCode(t, err, models.CodeInvalidArgument)

	tags, err := e.tag.List(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTagAddRemoveConflictsAndGuard(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	bob := e.createUser(t, "bob", false)
	ctx := context.Background()

	id := e.addContent(t, alice.ID, "piece", []byte("p"))

	assertCode(t, e.tag.Add(ctx, id, bob.ID, "blue"), models.CodeForbidden)

	require.NoError(t, e.tag.Add(ctx, id, alice.ID, "blue"))
	assertCode(t, e.tag.Add(ctx, id, alice.ID, "blue"), models.CodeConflict)

	assertCode(t, e.tag.Remove(ctx, id, alice.ID, "missing"), models.CodeConflict)
	require.NoError(t, e.tag.Remove(ctx, id, alice.ID, "blue"))
}

func TestTagProjectCounts(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	ctx := context.Background()

	first := e.addContent(t, alice.ID, "one", []byte("1"))
	second := e.addContent(t, alice.ID, "two", []byte("2"))
	require.NoError(t, e.tag.Add(ctx, first, alice.ID, "blue"))
	require.NoError(t, e.tag.Add(ctx, second, alice.ID, "blue"))
	require.NoError(t, e.tag.Add(ctx, second, alice.ID, "sketch"))

	counts, err := e.tag.ProjectCounts(ctx, "atelier", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"blue": 2, "sketch": 1}, counts)
}

func TestReportDefaultsAndConflicts(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	bob := e.createUser(t, "bob", false)
	ctx := context.Background()

	id := e.addContent(t, alice.ID, "piece", []byte("p"))

	// empty reason defaults to DEFAULT
	_, err := e.report.Report(ctx, id, bob.ID, "")
	require.NoError(t, err)

	var stats models.ContentStats
	require.NoError(t, e.db.First(&stats, "content_id = ?", id).Error)
	assert.Equal(t, 1, stats.Reports)

	_, err = e.report.Report(ctx, id, bob.ID, "DEFAULT")
	assertCode(t, err, models.CodeConflict)

	// a different reason is a distinct report
	_, err = e.report.Report(ctx, id, bob.ID, "COUNTER_DEFAULT")
	require.NoError(t, err)
	require.NoError(t, e.db.First(&stats, "content_id = ?", id).Error)
	assert.Equal(t, 1, stats.CounterReports)

	require.NoError(t, e.report.Unreport(ctx, id, bob.ID, ""))
	assertCode(t, e.report.Unreport(ctx, id, bob.ID, ""), models.CodeConflict)
}

func TestReportTaggerEndToEnd(t *testing.T) {
	registry := extension.NewRegistry(extension.NewProject("default"))
	registry.Register(extension.NewProject("atelier", extension.NewReportTagger()))
	e := newEnv(t, registry, nil)
	alice := e.createUser(t, "alice", false)
	ctx := context.Background()

	id := e.addContent(t, alice.ID, "piece", []byte("p"))

	var messages []string
	for i := 0; i < 2; i++ {
		reporter := e.createUser(t, string(rune('a'+i)), false)
		msgs, err := e.report.Report(ctx, id, reporter.ID, "INVALID")
		require.NoError(t, err)
		messages = append(messages, msgs...)
	}
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "invalid")

	// the hook tag went through the toolkit and is already in the cache row
	var stats models.ContentStats
	require.NoError(t, e.db.First(&stats, "content_id = ?", id).Error)
	assert.Equal(t, "invalid", stats.Tags)
}

type stubVerifier struct {
	identity *auth.Identity
	err      error
}

func (s stubVerifier) Verify(context.Context, string) (*auth.Identity, error) {
	return s.identity, s.err
}

func TestLoginIssuesToken(t *testing.T) {
	e := newEnv(t, nil, stubVerifier{identity: &auth.Identity{ExternalID: "ext-1", Username: "alice"}})
	ctx := context.Background()

	token, err := e.user.Login(ctx, "credential")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// only the hash is stored
	var user models.User
	require.NoError(t, e.db.First(&user, "external_id = ?", "ext-1").Error)
	assert.NotEqual(t, token, user.Token)
	assert.Equal(t, auth.HashToken(token), user.Token)

	resolved, err := e.user.ResolveToken(ctx, auth.HashToken(token))
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)

	_, err = e.user.ResolveToken(ctx, auth.HashToken("wrong"))
	assertCode(t, err, models.CodeUnauthorized)
}

func TestLoginRejectsBadCredential(t *testing.T) {
	e := newEnv(t, nil, stubVerifier{err: models.NewUnauthorizedError("Invalid credential")})
	_, err := e.user.Login(context.Background(), "garbage")
	assertCode(t, err, models.CodeUnauthorized)
}

func TestSetUserModeratorOnly(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	mod := e.createUser(t, "mod", true)
	ctx := context.Background()

	banned := true
	err := e.user.SetUser(ctx, alice.ID, mod.ID, service.UserChanges{Banned: &banned})
	assertCode(t, err, models.CodeForbidden)

	require.NoError(t, e.user.SetUser(ctx, mod.ID, alice.ID, service.UserChanges{Banned: &banned}))
	var target models.User
	require.NoError(t, e.db.First(&target, alice.ID).Error)
	assert.True(t, target.Banned)

	err = e.user.SetUser(ctx, mod.ID, 9999, service.UserChanges{Banned: &banned})
	assertCode(t, err, models.CodeNotFound)
}

func TestSetUserPurge(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	bob := e.createUser(t, "bob", false)
	mod := e.createUser(t, "mod", true)
	ctx := context.Background()

	mine := e.addContent(t, alice.ID, "mine", []byte("1"))
	theirs := e.addContent(t, bob.ID, "theirs", []byte("2"))
	require.NoError(t, e.like.Like(ctx, theirs, alice.ID))

	require.NoError(t, e.user.SetUser(ctx, mod.ID, alice.ID, service.UserChanges{Purge: true}))

	// alice's submissions are gone
	_, err := e.content.Get(ctx, mine, false)
	assertCode(t, err, models.CodeNotFound)

	// her like is withdrawn and the stats row already reflects it
	detail, err := e.content.Get(ctx, theirs, false)
	require.NoError(t, err)
	assert.Zero(t, detail.Likes)
}

func TestListBannedModeratorOnly(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	mod := e.createUser(t, "mod", true)
	ctx := context.Background()

	banned := true
	require.NoError(t, e.user.SetUser(ctx, mod.ID, alice.ID, service.UserChanges{Banned: &banned}))

	_, err := e.user.ListBanned(ctx, alice.ID)
	assertCode(t, err, models.CodeForbidden)

	entries, err := e.user.ListBanned(ctx, mod.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, alice.ID, entries[0].UserID)
}

func TestUserListingsRefreshStats(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	ctx := context.Background()

	e.addContent(t, alice.ID, "piece", []byte("p"))

	users, err := e.user.ListUsers(ctx, "atelier", repository.UserOrderDate, false, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 1, users[0].SubmissionCount)

	got, err := e.user.GetUser(ctx, "atelier", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SubmissionCount)

	_, err = e.user.GetUser(ctx, "atelier", 9999)
	assertCode(t, err, models.CodeNotFound)
}

func TestStatsServiceInstance(t *testing.T) {
	e := newEnv(t, nil, nil)
	alice := e.createUser(t, "alice", false)
	e.addContent(t, alice.ID, "one", []byte("1"))
	e.addContent(t, alice.ID, "two", []byte("2"))

	stats, err := service.NewStatsService(e.db, e.contents).Instance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Users)
	assert.Equal(t, int64(2), stats.Content)
	assert.Equal(t, map[string]int{"atelier": 2}, stats.ContentByProject)
}

func TestPostProcessProject(t *testing.T) {
	registry := extension.NewRegistry(extension.NewProject("default"))
	registry.Register(extension.NewProject("atelier"))
	e := newEnv(t, registry, nil)
	alice := e.createUser(t, "alice", false)
	ctx := context.Background()

	first := e.addContent(t, alice.ID, "one", []byte("1"))
	e.addContent(t, alice.ID, "two", []byte("2"))

	// swap in a pipeline that tags on post-process, as a config change would
	registry.Register(extension.NewProject("atelier", extension.NewReportTagger()))

	messages, err := e.content.PostProcessProject(ctx, "atelier")
	require.NoError(t, err)
	assert.Empty(t, messages)

	msgs, err := e.content.PostProcess(ctx, first)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
