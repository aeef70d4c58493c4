// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/testutil"
)

// testClock ticks one second on every read so creation times are distinct.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) InvalidatePages(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func (c *countingInvalidator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type pageTestEnv struct {
	svc   *PageService
	db    *sql.DB
	clock *testClock
	inv   *countingInvalidator
	actor *Actor
}

func newPageTestEnv(t *testing.T) *pageTestEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	user := testutil.CreateTestUser(t, db, "editor@example.com")
	clock := newTestClock()
	inv := &countingInvalidator{}

	svc := NewPageService(db, testutil.TestLoggerSilent(),
		WithClock(clock.Now),
		WithInvalidator(inv),
		WithEventRecorder(NewEventService(db)),
	)

	return &pageTestEnv{svc: svc, db: db, clock: clock, inv: inv, actor: &Actor{UserID: user.ID}}
}

func (e *pageTestEnv) create(t *testing.T, in PageInput) *model.Page {
	t.Helper()
	if in.Content == "" {
		in.Content = "Body"
	}
	page, err := e.svc.Create(context.Background(), in, e.actor)
	require.NoError(t, err)
	return page
}

func ptr[T any](v T) *T { return &v }

func TestEnsureUniqueSlug_MinimalSuffix(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	for _, slug := range []string{"hello-world", "hello-world-1", "hello-world-3"} {
		env.create(t, PageInput{Title: "Seed", Slug: slug})
	}

	slug, err := env.svc.EnsureUniqueSlug(ctx, "Hello, World!", 0)
	require.NoError(t, err)
	assert.Equal(t, "hello-world-2", slug)

	slug, err = env.svc.EnsureUniqueSlug(ctx, "Something New", 0)
	require.NoError(t, err)
	assert.Equal(t, "something-new", slug)
}

func TestEnsureUniqueSlug_KeepsOwnSlug(t *testing.T) {
	env := newPageTestEnv(t)
	page := env.create(t, PageInput{Title: "About"})

	slug, err := env.svc.EnsureUniqueSlug(context.Background(), page.Slug, page.ID)
	require.NoError(t, err)
	assert.Equal(t, page.Slug, slug)

	slug, err = env.svc.EnsureUniqueSlug(context.Background(), page.Slug, 0)
	require.NoError(t, err)
	assert.Equal(t, "about-1", slug)
}

func TestEnsureUniqueSlug_Fallback(t *testing.T) {
	env := newPageTestEnv(t)

	slug, err := env.svc.EnsureUniqueSlug(context.Background(), "!!!", 0)
	require.NoError(t, err)
	assert.Equal(t, "page", slug)
}

func TestEnsureUniqueSlug_LengthLimit(t *testing.T) {
	env := newPageTestEnv(t)
	title := strings.Repeat("a", 300)

	first := env.create(t, PageInput{Title: model.TruncateRunes(title, model.MaxTitleLength)})
	assert.Len(t, first.Slug, model.MaxSlugLength)

	slug, err := env.svc.EnsureUniqueSlug(context.Background(), title, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(slug), model.MaxSlugLength)
	assert.True(t, strings.HasSuffix(slug, "-1"), "slug %q should end with -1", slug)
}

func TestCreate_HelloWorldScenario(t *testing.T) {
	env := newPageTestEnv(t)

	first := env.create(t, PageInput{Title: "Hello, World!"})
	second := env.create(t, PageInput{Title: "Hello, World!"})

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-1", second.Slug)
}

func TestCreate_RoundTrip(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()
	publishedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	in := PageInput{
		Title:       "Our Services",
		Excerpt:     "What we offer",
		Content:     "## Services\n\nConsulting.",
		Status:      model.PageStatusPublished,
		Template:    model.TemplateLanding,
		SortOrder:   7,
		PublishedAt: &publishedAt,
		MetaData:    model.MetaData{Title: "Services", Description: "", Keywords: "0"},
		Contents: []model.ContentBlock{
			{Priority: 2, Text: "second", Images: []string{"uploads/b.jpg"}},
			{Priority: 1, Text: "first", Images: []string{"uploads/a.jpg", "uploads/a2.jpg"}},
		},
	}

	created, err := env.svc.Create(ctx, in, env.actor)
	require.NoError(t, err)

	got, err := env.svc.FindByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "our-services", got.Slug)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Excerpt, got.Excerpt)
	assert.Equal(t, in.Content, got.Content)
	assert.Equal(t, in.Status, got.Status)
	assert.Equal(t, in.Template, got.Template)
	assert.Equal(t, in.SortOrder, got.SortOrder)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, got.PublishedAt.Equal(publishedAt))
	assert.Equal(t, model.MetaData{Title: "Services"}, got.MetaData)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, env.actor.UserID, *got.CreatedBy)
	assert.Equal(t, env.actor.UserID, *got.UpdatedBy)

	require.Len(t, got.Contents, 2)
	assert.Equal(t, "first", got.Contents[0].Text)
	assert.Equal(t, []string{"uploads/a.jpg", "uploads/a2.jpg"}, got.Contents[0].Images)
	assert.Equal(t, "second", got.Contents[1].Text)

	bySlug, err := env.svc.FindBySlug(ctx, "our-services")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)
}

func TestCreate_Defaults(t *testing.T) {
	env := newPageTestEnv(t)

	page, err := env.svc.Create(context.Background(), PageInput{Title: "Plain", Content: "x"}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.PageStatusDraft, page.Status)
	assert.Equal(t, model.TemplateDefault, page.Template)
	assert.Nil(t, page.CreatedBy)
	assert.Nil(t, page.UpdatedBy)
	assert.Nil(t, page.PublishedAt)
	assert.Empty(t, page.Contents)
}

func TestCreate_Validation(t *testing.T) {
	env := newPageTestEnv(t)

	tests := []struct {
		name  string
		in    PageInput
		field string
	}{
		{"missing title", PageInput{Content: "x"}, "title"},
		{"long title", PageInput{Title: strings.Repeat("t", 256), Content: "x"}, "title"},
		{"missing content", PageInput{Title: "T"}, "content"},
		{"bad slug", PageInput{Title: "T", Content: "x", Slug: "Not A Slug"}, "slug"},
		{"bad status", PageInput{Title: "T", Content: "x", Status: "deleted"}, "status"},
		{"bad template", PageInput{Title: "T", Content: "x", Template: "gallery"}, "template"},
		{"negative sort order", PageInput{Title: "T", Content: "x", SortOrder: -1}, "sort_order"},
		{"long excerpt", PageInput{Title: "T", Content: "x", Excerpt: strings.Repeat("e", 1001)}, "excerpt"},
		{"long meta description", PageInput{Title: "T", Content: "x", MetaData: model.MetaData{Description: strings.Repeat("d", 501)}}, "meta_data.description"},
		{"negative block priority", PageInput{Title: "T", Content: "x", Contents: []model.ContentBlock{{Priority: -1}}}, "contents.0.priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Create(context.Background(), tt.in, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCreate_RollsBackOnBlockFailure(t *testing.T) {
	env := newPageTestEnv(t)

	_, err := env.db.Exec(`DROP TABLE page_contents`)
	require.NoError(t, err)

	_, err = env.svc.Create(context.Background(), PageInput{
		Title:    "Atomic",
		Content:  "x",
		Contents: []model.ContentBlock{{Priority: 1, Text: "block"}},
	}, env.actor)
	require.Error(t, err)

	var count int
	require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&count))
	assert.Equal(t, 0, count, "page row must be rolled back with its blocks")
}

func TestClassify_UniqueViolationIsConflict(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()
	q := store.New(env.db)
	now := time.Now().UTC()

	arg := store.CreatePageParams{Title: "A", Slug: "same", Content: "x", Status: "draft", Template: "default", CreatedAt: now, UpdatedAt: now}
	_, err := q.CreatePage(ctx, arg)
	require.NoError(t, err)
	_, err = q.CreatePage(ctx, arg)
	require.Error(t, err)

	got := classify(err)
	assert.ErrorIs(t, got, ErrConflict)

	var cerr *ConflictError
	require.True(t, errors.As(got, &cerr))
	assert.Equal(t, "slug", cerr.Field)
}

func TestCreate_ConcurrentSameTitle(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	const n = 20
	slugs := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := env.svc.Create(ctx, PageInput{Title: "Same", Content: "Body"}, env.actor)
			errs[i] = err
			if err == nil {
				slugs[i] = page.Slug
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := range n {
		require.NoError(t, errs[i])
		assert.False(t, seen[slugs[i]], "slug %q handed out twice", slugs[i])
		seen[slugs[i]] = true
	}

	assert.True(t, seen["same"])
	assert.True(t, seen["same-19"])
}

func TestCreate_UnknownActorIsValidationError(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, PageInput{Title: "Ghost", Content: "Body"}, &Actor{UserID: 9999})
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "actor")

	page := env.create(t, PageInput{Title: "Real"})
	_, err = env.svc.BulkUpdate(ctx, []int64{page.ID}, BulkPatch{Status: ptr(model.PageStatusArchived)}, &Actor{UserID: 9999})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdate_FullReplaceOfBlocks(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	page := env.create(t, PageInput{
		Title: "Blocks",
		Contents: []model.ContentBlock{
			{Priority: 1, Text: "one"},
			{Priority: 2, Text: "two"},
			{Priority: 3, Text: "three"},
		},
	})
	require.Len(t, page.Contents, 3)

	updated, err := env.svc.Update(ctx, page.ID, PageUpdate{
		Contents: []model.ContentBlock{{Priority: 2, Text: "only"}},
	}, env.actor)
	require.NoError(t, err)
	require.Len(t, updated.Contents, 1)
	assert.Equal(t, "only", updated.Contents[0].Text)

	reloaded, err := env.svc.FindByID(ctx, page.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Contents, 1)
}

func TestUpdate_NilContentsKeepsBlocks(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	page := env.create(t, PageInput{
		Title:    "Keep",
		Contents: []model.ContentBlock{{Priority: 1, Text: "one"}, {Priority: 2, Text: "two"}},
	})

	updated, err := env.svc.Update(ctx, page.ID, PageUpdate{Title: ptr("Keep renamed")}, env.actor)
	require.NoError(t, err)
	assert.Equal(t, "Keep renamed", updated.Title)
	assert.Equal(t, "keep", updated.Slug, "slug must not follow the title")
	assert.Len(t, updated.Contents, 2)

	cleared, err := env.svc.Update(ctx, page.ID, PageUpdate{Contents: []model.ContentBlock{}}, env.actor)
	require.NoError(t, err)
	assert.Empty(t, cleared.Contents)
}

func TestUpdate_Slug(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	env.create(t, PageInput{Title: "Taken"})
	page := env.create(t, PageInput{Title: "Mine"})

	same, err := env.svc.Update(ctx, page.ID, PageUpdate{Slug: ptr("mine")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mine", same.Slug)

	moved, err := env.svc.Update(ctx, page.ID, PageUpdate{Slug: ptr("taken")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "taken-1", moved.Slug)

	regenerated, err := env.svc.Update(ctx, page.ID, PageUpdate{Title: ptr("Brand New"), Slug: ptr("")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "brand-new", regenerated.Slug)

	_, err = env.svc.Update(ctx, page.ID, PageUpdate{Slug: ptr("Bad Slug")}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdate_StampsUpdater(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()
	other := testutil.CreateTestUser(t, env.db, "other@example.com")

	page := env.create(t, PageInput{Title: "Stamped"})

	updated, err := env.svc.Update(ctx, page.ID, PageUpdate{Excerpt: ptr("new excerpt")}, &Actor{UserID: other.ID})
	require.NoError(t, err)
	assert.Equal(t, env.actor.UserID, *updated.CreatedBy)
	assert.Equal(t, other.ID, *updated.UpdatedBy)
	assert.True(t, updated.UpdatedAt.After(page.UpdatedAt))

	anonymous, err := env.svc.Update(ctx, page.ID, PageUpdate{Excerpt: ptr("again")}, nil)
	require.NoError(t, err)
	assert.Equal(t, other.ID, *anonymous.UpdatedBy, "updater is kept without an actor")
}

func TestUpdate_PublishedAt(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	page := env.create(t, PageInput{Title: "Dated", PublishedAt: &at})

	kept, err := env.svc.Update(ctx, page.ID, PageUpdate{Title: ptr("Dated 2")}, nil)
	require.NoError(t, err)
	require.NotNil(t, kept.PublishedAt)
	assert.True(t, kept.PublishedAt.Equal(at))

	cleared, err := env.svc.Update(ctx, page.ID, PageUpdate{ClearPublishedAt: true}, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.PublishedAt)
}

func TestUpdate_NotFound(t *testing.T) {
	env := newPageTestEnv(t)

	_, err := env.svc.Update(context.Background(), 9999, PageUpdate{Title: ptr("x")}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublish_Idempotent(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)

	page := env.create(t, PageInput{Title: "Twice"})

	once, err := env.svc.Publish(ctx, page.ID, &at, env.actor)
	require.NoError(t, err)
	twice, err := env.svc.Publish(ctx, page.ID, &at, env.actor)
	require.NoError(t, err)

	assert.Equal(t, once.Status, twice.Status)
	assert.Equal(t, model.PageStatusPublished, twice.Status)
	require.NotNil(t, twice.PublishedAt)
	assert.True(t, once.PublishedAt.Equal(*twice.PublishedAt))
}

func TestPublish_DefaultsToNow(t *testing.T) {
	env := newPageTestEnv(t)
	page := env.create(t, PageInput{Title: "Now"})

	before := env.clock.Now()
	published, err := env.svc.Publish(context.Background(), page.ID, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.True(t, published.PublishedAt.After(before))
}

func TestLifecycle_LastOperationWins(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	page := env.create(t, PageInput{Title: "Cycle"})
	_, err := env.svc.Publish(ctx, page.ID, &at, nil)
	require.NoError(t, err)

	_, err = env.svc.Archive(ctx, page.ID, nil)
	require.NoError(t, err)
	p, err := env.svc.Unpublish(ctx, page.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.PageStatusDraft, p.Status)
	require.NotNil(t, p.PublishedAt, "unpublish keeps the publication time")
	assert.True(t, p.PublishedAt.Equal(at))

	_, err = env.svc.Unpublish(ctx, page.ID, nil)
	require.NoError(t, err)
	p, err = env.svc.Archive(ctx, page.ID, env.actor)
	require.NoError(t, err)
	assert.Equal(t, model.PageStatusArchived, p.Status)
	assert.Equal(t, env.actor.UserID, *p.UpdatedBy)

	p, err = env.svc.Publish(ctx, page.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.PageStatusPublished, p.Status, "archived pages may be republished")

	_, err = env.svc.Archive(ctx, 9999, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAll_Ordering(t *testing.T) {
	env := newPageTestEnv(t)

	env.create(t, PageInput{Title: "Top", SortOrder: 100})
	env.create(t, PageInput{Title: "Older", SortOrder: 50})
	env.create(t, PageInput{Title: "Newer", SortOrder: 50})

	res, err := env.svc.ListAll(context.Background(), PageFilters{})
	require.NoError(t, err)

	var titles []string
	for _, p := range res.Items {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"Top", "Newer", "Older"}, titles)
}

func TestListAll_Filters(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	env.create(t, PageInput{Title: "Alpha News", Template: model.TemplateBlog})
	env.create(t, PageInput{Title: "Beta", Content: "contains ALPHA in body", Status: model.PageStatusPublished})
	env.create(t, PageInput{Title: "Gamma", Excerpt: "alpha excerpt", Status: model.PageStatusArchived})
	env.create(t, PageInput{Title: "Delta"})

	tests := []struct {
		name    string
		filters PageFilters
		want    int64
	}{
		{"all", PageFilters{}, 4},
		{"search any field", PageFilters{Search: "alpha"}, 3},
		{"search trims", PageFilters{Search: "  delta  "}, 1},
		{"status", PageFilters{Status: model.PageStatusPublished}, 1},
		{"template", PageFilters{Template: model.TemplateBlog}, 1},
		{"search and status", PageFilters{Search: "alpha", Status: model.PageStatusArchived}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.svc.ListAll(ctx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Total)
			assert.Len(t, res.Items, int(tt.want))
		})
	}

	_, err := env.svc.ListAll(ctx, PageFilters{Status: "bogus"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListAll_SearchFoldsUnicodeCase(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	env.create(t, PageInput{Title: "Über Café"})
	env.create(t, PageInput{Title: "Other", Content: "Grüße aus STRASSBURG"})
	env.create(t, PageInput{Title: "Unrelated"})

	tests := []struct {
		search string
		want   int64
	}{
		{"über", 1},
		{"ÜBER", 1},
		{"café", 1},
		{"CAFÉ", 1},
		{"grüsse", 1},
		{"straßburg", 1},
		{"100%", 0},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			res, err := env.svc.ListAll(ctx, PageFilters{Search: tt.search})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Total)
		})
	}
}

func TestListAll_Pagination(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 16; i++ {
		env.create(t, PageInput{Title: "Page"})
	}

	first, err := env.svc.ListAll(ctx, PageFilters{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPerPage, first.PerPage)
	assert.Len(t, first.Items, 15)
	assert.Equal(t, 1, first.CurrentPage)
	assert.Equal(t, 2, first.LastPage)
	assert.Equal(t, int64(16), first.Total)

	second, err := env.svc.ListAll(ctx, PageFilters{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Items, 1)

	beyond, err := env.svc.ListAll(ctx, PageFilters{Page: 10, PerPage: 5})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
	assert.Equal(t, 10, beyond.CurrentPage)
	assert.Equal(t, 4, beyond.LastPage)
}

func TestListPublished_FutureHiddenUntilDue(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	now := env.clock.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	env.create(t, PageInput{Title: "Live", Status: model.PageStatusPublished, PublishedAt: &past})
	env.create(t, PageInput{Title: "Undated", Status: model.PageStatusPublished})
	env.create(t, PageInput{Title: "Scheduled", Status: model.PageStatusPublished, PublishedAt: &future})
	env.create(t, PageInput{Title: "Draft", PublishedAt: &past})

	res, err := env.svc.ListPublished(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	for _, p := range res.Items {
		assert.NotEqual(t, "Scheduled", p.Title)
	}

	_, err = env.svc.FindPublishedBySlug(ctx, "scheduled")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.FindPublishedBySlug(ctx, "draft")
	assert.ErrorIs(t, err, ErrNotFound)

	env.clock.Advance(2 * time.Hour)

	res, err = env.svc.ListPublished(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)

	page, err := env.svc.FindPublishedBySlug(ctx, "scheduled")
	require.NoError(t, err)
	assert.Equal(t, "Scheduled", page.Title)
}

func TestFind_NotFound(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.FindByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.FindBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBulkUpdate_Archive(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	p1 := env.create(t, PageInput{Title: "One"})
	p2 := env.create(t, PageInput{Title: "Two"})
	p3 := env.create(t, PageInput{Title: "Three"})

	n, err := env.svc.BulkUpdate(ctx, []int64{p1.ID, p2.ID}, BulkPatch{Status: ptr(model.PageStatusArchived)}, env.actor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, id := range []int64{p1.ID, p2.ID} {
		p, err := env.svc.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.PageStatusArchived, p.Status)
	}
	untouched, err := env.svc.FindByID(ctx, p3.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PageStatusDraft, untouched.Status)

	n, err = env.svc.BulkUpdate(ctx, nil, BulkPatch{Status: ptr(model.PageStatusArchived)}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = env.svc.BulkUpdate(ctx, []int64{p1.ID}, BulkPatch{Status: ptr(model.PageStatus("gone"))}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBulkDelete_Cascades(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	p1 := env.create(t, PageInput{Title: "One", Contents: []model.ContentBlock{{Priority: 1, Text: "x"}}})
	p2 := env.create(t, PageInput{Title: "Two"})

	n, err := env.svc.BulkDelete(ctx, []int64{p1.ID, p2.ID, 777}, env.actor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var blocks int
	require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM page_contents`).Scan(&blocks))
	assert.Zero(t, blocks)
}

func TestBulkAction(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	p1 := env.create(t, PageInput{Title: "One"})
	p2 := env.create(t, PageInput{Title: "Two"})
	ids := []int64{p1.ID, p2.ID}

	n, err := env.svc.BulkAction(ctx, BulkActionPublish, ids, env.actor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	p, err := env.svc.FindByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PageStatusPublished, p.Status)
	require.NotNil(t, p.PublishedAt)
	publishedAt := *p.PublishedAt

	_, err = env.svc.BulkAction(ctx, BulkActionUnpublish, ids, nil)
	require.NoError(t, err)
	p, err = env.svc.FindByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PageStatusDraft, p.Status)
	assert.True(t, p.PublishedAt.Equal(publishedAt))

	_, err = env.svc.BulkAction(ctx, BulkActionArchive, ids, nil)
	require.NoError(t, err)
	p, err = env.svc.FindByID(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PageStatusArchived, p.Status)

	n, err = env.svc.BulkAction(ctx, BulkActionDelete, ids, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = env.svc.BulkAction(ctx, BulkAction("explode"), ids, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDuplicate(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()
	other := testutil.CreateTestUser(t, env.db, "copier@example.com")
	at := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	src := env.create(t, PageInput{
		Title:       "Landing",
		Excerpt:     "Intro",
		Status:      model.PageStatusPublished,
		Template:    model.TemplateLanding,
		SortOrder:   3,
		PublishedAt: &at,
		MetaData:    model.MetaData{Title: "SEO"},
		Contents:    []model.ContentBlock{{Priority: 1, Text: "hero", Images: []string{"hero.png"}}},
	})

	dup, err := env.svc.Duplicate(ctx, src.ID, &Actor{UserID: other.ID})
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Landing (Copy)", dup.Title)
	assert.Equal(t, "landing-copy", dup.Slug)
	assert.Equal(t, model.PageStatusDraft, dup.Status)
	assert.Nil(t, dup.PublishedAt)
	assert.Equal(t, src.Template, dup.Template)
	assert.Equal(t, src.SortOrder, dup.SortOrder)
	assert.Equal(t, src.Excerpt, dup.Excerpt)
	assert.Equal(t, src.MetaData, dup.MetaData)
	assert.Equal(t, other.ID, *dup.CreatedBy)
	require.Len(t, dup.Contents, 1)
	assert.Equal(t, "hero", dup.Contents[0].Text)
	assert.Equal(t, []string{"hero.png"}, dup.Contents[0].Images)
	assert.NotEqual(t, src.Contents[0].ID, dup.Contents[0].ID)

	again, err := env.svc.Duplicate(ctx, src.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "landing-copy-1", again.Slug)
	assert.Equal(t, env.actor.UserID, *again.CreatedBy, "source creator is kept without an actor")

	_, err = env.svc.Duplicate(ctx, 9999, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	page := env.create(t, PageInput{Title: "Gone"})
	require.NoError(t, env.svc.Delete(ctx, page.ID, env.actor))

	_, err := env.svc.FindByID(ctx, page.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.svc.Delete(ctx, page.ID, env.actor), ErrNotFound)
}

func TestStatisticsAndRecent(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	env.create(t, PageInput{Title: "D1"})
	env.create(t, PageInput{Title: "D2"})
	env.create(t, PageInput{Title: "P1", Status: model.PageStatusPublished})
	env.create(t, PageInput{Title: "A1", Status: model.PageStatusArchived})

	st, err := env.svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, Statistics{Total: 4, Published: 1, Draft: 2, Archived: 1}, st)

	recent, err := env.svc.RecentPages(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "A1", recent[0].Title)
	assert.Equal(t, "P1", recent[1].Title)
}

func TestMutationsInvalidateAndRecordEvents(t *testing.T) {
	env := newPageTestEnv(t)
	ctx := context.Background()

	page := env.create(t, PageInput{Title: "Tracked"})
	_, err := env.svc.Publish(ctx, page.ID, nil, env.actor)
	require.NoError(t, err)
	require.NoError(t, env.svc.Delete(ctx, page.ID, env.actor))

	assert.Equal(t, 3, env.inv.Calls())

	events, err := NewEventService(env.db).ListEvents(ctx, EventFilters{Category: model.EventCategoryPage})
	require.NoError(t, err)
	assert.Equal(t, int64(3), events.Total)
}
