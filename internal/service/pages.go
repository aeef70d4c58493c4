// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/util"
)

// fallbackSlug is used when a title has no characters usable in a slug.
const fallbackSlug = "page"

// copySuffix is appended to the title of a duplicated page.
const copySuffix = " (Copy)"

// Actor identifies the user performing a mutation. A nil *Actor means the
// change is made without an authenticated user.
type Actor struct {
	UserID int64
}

// ActorFromID returns an Actor for id, or nil when id is zero.
func ActorFromID(id int64) *Actor {
	if id == 0 {
		return nil
	}
	return &Actor{UserID: id}
}

func (a *Actor) nullID() sql.NullInt64 {
	if a == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: a.UserID, Valid: true}
}

func (a *Actor) idPtr() *int64 {
	if a == nil {
		return nil
	}
	id := a.UserID
	return &id
}

// PageInvalidator is told about every committed page mutation.
type PageInvalidator interface {
	InvalidatePages(ctx context.Context) error
}

// PageEventRecorder persists page mutations to the event log.
type PageEventRecorder interface {
	LogPageEvent(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error
}

// PageInput is the data for a new page. Zero Status and Template fall back
// to draft and default; an empty Slug is derived from Title.
type PageInput struct {
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	Status      model.PageStatus
	Template    model.Template
	SortOrder   int
	PublishedAt *time.Time
	MetaData    model.MetaData
	Contents    []model.ContentBlock
}

// PageUpdate is a partial update. Nil fields keep the stored value. A
// non-nil Contents slice, even an empty one, replaces every content block.
type PageUpdate struct {
	Title            *string
	Slug             *string
	Excerpt          *string
	Content          *string
	Status           *model.PageStatus
	Template         *model.Template
	SortOrder        *int
	PublishedAt      *time.Time
	ClearPublishedAt bool
	MetaData         *model.MetaData
	Contents         []model.ContentBlock
}

// PageFilters narrows ListAll. Empty fields do not filter.
type PageFilters struct {
	Status   model.PageStatus
	Search   string
	Template model.Template
	PerPage  int
	Page     int
}

// BulkPatch is applied to every page of a bulk update. Nil fields are left
// alone.
type BulkPatch struct {
	Status      *model.PageStatus
	Template    *model.Template
	SortOrder   *int
	PublishedAt *time.Time
}

// BulkAction names an action of the bulk endpoint.
type BulkAction string

// Bulk actions
const (
	BulkActionDelete    BulkAction = "delete"
	BulkActionPublish   BulkAction = "publish"
	BulkActionUnpublish BulkAction = "unpublish"
	BulkActionArchive   BulkAction = "archive"
)

// BulkActions lists the recognized bulk actions.
var BulkActions = []BulkAction{BulkActionDelete, BulkActionPublish, BulkActionUnpublish, BulkActionArchive}

// Valid reports whether a is a recognized bulk action.
func (a BulkAction) Valid() bool {
	for _, known := range BulkActions {
		if a == known {
			return true
		}
	}
	return false
}

// Statistics counts pages per status.
type Statistics struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Draft     int64 `json:"draft"`
	Archived  int64 `json:"archived"`
}

// PageService implements page creation, lifecycle, queries and bulk
// operations on top of the store.
type PageService struct {
	db          *sql.DB
	queries     *store.Queries
	logger      *slog.Logger
	now         func() time.Time
	invalidator PageInvalidator
	events      PageEventRecorder
}

// PageOption configures a PageService.
type PageOption func(*PageService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) PageOption {
	return func(s *PageService) { s.now = now }
}

// WithInvalidator registers the cache to clear after mutations.
func WithInvalidator(inv PageInvalidator) PageOption {
	return func(s *PageService) { s.invalidator = inv }
}

// WithEventRecorder registers the event log for page mutations.
func WithEventRecorder(r PageEventRecorder) PageOption {
	return func(s *PageService) { s.events = r }
}

// NewPageService creates a new PageService.
func NewPageService(db *sql.DB, logger *slog.Logger, opts ...PageOption) *PageService {
	s := &PageService{
		db:      db,
		queries: store.New(db),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureUniqueSlug returns the first free slug among slugify(candidate),
// slugify(candidate)-1, slugify(candidate)-2 and so on. The page with id
// excludeID does not count as a collision; pass 0 to check every page.
func (s *PageService) EnsureUniqueSlug(ctx context.Context, candidate string, excludeID int64) (string, error) {
	return s.ensureUniqueSlug(ctx, s.queries, candidate, excludeID)
}

func (s *PageService) ensureUniqueSlug(ctx context.Context, q *store.Queries, candidate string, excludeID int64) (string, error) {
	base := util.Slugify(candidate)
	if base == "" {
		base = fallbackSlug
	}
	base = util.TruncateSlug(base, model.MaxSlugLength)

	for n := 0; ; n++ {
		slug := base
		if n > 0 {
			suffix := "-" + strconv.Itoa(n)
			slug = util.TruncateSlug(base, model.MaxSlugLength-len(suffix)) + suffix
		}

		var count int64
		var err error
		if excludeID > 0 {
			count, err = q.SlugExistsExcluding(ctx, store.SlugExistsExcludingParams{Slug: slug, ID: excludeID})
		} else {
			count, err = q.SlugExists(ctx, slug)
		}
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", slug, err)
		}
		if count == 0 {
			return slug, nil
		}
	}
}

// Create stores a new page and its content blocks in one transaction.
func (s *PageService) Create(ctx context.Context, in PageInput, actor *Actor) (*model.Page, error) {
	in = in.withDefaults()
	if err := validatePageInput(in); err != nil {
		return nil, err
	}

	var page model.Page
	err := s.withTx(ctx, func(q *store.Queries) error {
		var err error
		page, err = s.create(ctx, q, in, actor.nullID(), actor.nullID())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	s.changed(ctx, "page created", actor, &page)
	return &page, nil
}

func (s *PageService) create(ctx context.Context, q *store.Queries, in PageInput, createdBy, updatedBy sql.NullInt64) (model.Page, error) {
	candidate := in.Slug
	if candidate == "" {
		candidate = in.Title
	}
	slug, err := s.ensureUniqueSlug(ctx, q, candidate, 0)
	if err != nil {
		return model.Page{}, err
	}

	meta, err := encodeMetaData(in.MetaData)
	if err != nil {
		return model.Page{}, err
	}

	now := s.now().UTC()
	row, err := q.CreatePage(ctx, store.CreatePageParams{
		Title:       in.Title,
		Slug:        slug,
		Excerpt:     util.NullStringFromValue(in.Excerpt),
		Content:     in.Content,
		Status:      string(in.Status),
		Template:    string(in.Template),
		SortOrder:   int64(in.SortOrder),
		PublishedAt: util.NullTimeFromPtr(in.PublishedAt),
		MetaData:    meta,
		CreatedBy:   createdBy,
		UpdatedBy:   updatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Page{}, err
	}

	if err := insertBlocks(ctx, q, row.ID, in.Contents, now); err != nil {
		return model.Page{}, err
	}

	return hydrate(ctx, q, row)
}

// Update applies a partial update. When Slug changes it is re-resolved
// against every other page; an empty Slug regenerates it from the title.
func (s *PageService) Update(ctx context.Context, id int64, upd PageUpdate, actor *Actor) (*model.Page, error) {
	var page model.Page
	err := s.withTx(ctx, func(q *store.Queries) error {
		row, err := q.GetPageByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		cur, err := pageFromRow(row)
		if err != nil {
			return err
		}

		in := upd.applyTo(cur)
		if err := validatePageInput(in); err != nil {
			return err
		}

		slug := row.Slug
		if upd.Slug != nil && *upd.Slug != row.Slug {
			candidate := *upd.Slug
			if candidate == "" {
				candidate = in.Title
			}
			if slug, err = s.ensureUniqueSlug(ctx, q, candidate, id); err != nil {
				return err
			}
		}

		meta, err := encodeMetaData(in.MetaData)
		if err != nil {
			return err
		}

		updatedBy := row.UpdatedBy
		if actor != nil {
			updatedBy = actor.nullID()
		}

		now := s.now().UTC()
		row, err = q.UpdatePage(ctx, store.UpdatePageParams{
			Title:       in.Title,
			Slug:        slug,
			Excerpt:     util.NullStringFromValue(in.Excerpt),
			Content:     in.Content,
			Status:      string(in.Status),
			Template:    string(in.Template),
			SortOrder:   int64(in.SortOrder),
			PublishedAt: util.NullTimeFromPtr(in.PublishedAt),
			MetaData:    meta,
			UpdatedBy:   updatedBy,
			UpdatedAt:   now,
			ID:          id,
		})
		if err != nil {
			return err
		}

		if upd.Contents != nil {
			if err := q.DeletePageContents(ctx, id); err != nil {
				return err
			}
			if err := insertBlocks(ctx, q, id, upd.Contents, now); err != nil {
				return err
			}
		}

		page, err = hydrate(ctx, q, row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("updating page %d: %w", id, err)
	}

	s.changed(ctx, "page updated", actor, &page)
	return &page, nil
}

// Publish marks the page published as of at, or now when at is nil.
func (s *PageService) Publish(ctx context.Context, id int64, at *time.Time, actor *Actor) (*model.Page, error) {
	when := s.now()
	if at != nil {
		when = *at
	}
	return s.transition(ctx, id, actor, "page published", func(p *model.Page) {
		p.Publish(when.UTC())
	})
}

// Unpublish moves the page back to draft, keeping its publication time.
func (s *PageService) Unpublish(ctx context.Context, id int64, actor *Actor) (*model.Page, error) {
	return s.transition(ctx, id, actor, "page unpublished", (*model.Page).Unpublish)
}

// Archive moves the page to the archive, keeping its publication time.
func (s *PageService) Archive(ctx context.Context, id int64, actor *Actor) (*model.Page, error) {
	return s.transition(ctx, id, actor, "page archived", (*model.Page).Archive)
}

func (s *PageService) transition(ctx context.Context, id int64, actor *Actor, msg string, apply func(*model.Page)) (*model.Page, error) {
	var page model.Page
	err := s.withTx(ctx, func(q *store.Queries) error {
		row, err := q.GetPageByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		p, err := pageFromRow(row)
		if err != nil {
			return err
		}
		apply(&p)

		updatedBy := row.UpdatedBy
		if actor != nil {
			updatedBy = actor.nullID()
		}

		row, err = q.UpdatePage(ctx, store.UpdatePageParams{
			Title:       row.Title,
			Slug:        row.Slug,
			Excerpt:     row.Excerpt,
			Content:     row.Content,
			Status:      string(p.Status),
			Template:    row.Template,
			SortOrder:   row.SortOrder,
			PublishedAt: util.NullTimeFromPtr(p.PublishedAt),
			MetaData:    row.MetaData,
			UpdatedBy:   updatedBy,
			UpdatedAt:   s.now().UTC(),
			ID:          id,
		})
		if err != nil {
			return err
		}

		page, err = hydrate(ctx, q, row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("changing status of page %d: %w", id, err)
	}

	s.changed(ctx, msg, actor, &page)
	return &page, nil
}

// Duplicate copies a page, its metadata and its content blocks into a new
// draft titled "<title> (Copy)" with a fresh slug.
func (s *PageService) Duplicate(ctx context.Context, id int64, actor *Actor) (*model.Page, error) {
	var page model.Page
	err := s.withTx(ctx, func(q *store.Queries) error {
		row, err := q.GetPageByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		src, err := hydrate(ctx, q, row)
		if err != nil {
			return err
		}

		in := PageInput{
			Title:     model.TruncateRunes(src.Title+copySuffix, model.MaxTitleLength),
			Excerpt:   src.Excerpt,
			Content:   src.Content,
			Status:    model.PageStatusDraft,
			Template:  src.Template,
			SortOrder: src.SortOrder,
			MetaData:  src.MetaData,
			Contents:  src.Contents,
		}

		createdBy, updatedBy := row.CreatedBy, row.UpdatedBy
		if actor != nil {
			createdBy, updatedBy = actor.nullID(), actor.nullID()
		}

		page, err = s.create(ctx, q, in, createdBy, updatedBy)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("duplicating page %d: %w", id, err)
	}

	s.changed(ctx, "page duplicated", actor, &page, "source_id", id)
	return &page, nil
}

// Delete removes a page and its content blocks.
func (s *PageService) Delete(ctx context.Context, id int64, actor *Actor) error {
	n, err := s.queries.DeletePage(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting page %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.changed(ctx, "page deleted", actor, nil, "page_id", id)
	return nil
}

// BulkUpdate applies patch to every page in ids with one statement and
// returns the number of pages changed. Slugs are never part of a patch.
func (s *PageService) BulkUpdate(ctx context.Context, ids []int64, patch BulkPatch, actor *Actor) (int64, error) {
	if err := validateBulkPatch(patch); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	arg := store.BulkUpdatePagesParams{
		IDs:         ids,
		PublishedAt: util.NullTimeFromPtr(patch.PublishedAt),
		UpdatedBy:   actor.nullID(),
		UpdatedAt:   s.now().UTC(),
	}
	if patch.Status != nil {
		arg.Status = sql.NullString{String: string(*patch.Status), Valid: true}
	}
	if patch.Template != nil {
		arg.Template = sql.NullString{String: string(*patch.Template), Valid: true}
	}
	if patch.SortOrder != nil {
		arg.SortOrder = sql.NullInt64{Int64: int64(*patch.SortOrder), Valid: true}
	}

	n, err := s.queries.BulkUpdatePages(ctx, arg)
	if err != nil {
		return 0, fmt.Errorf("bulk updating pages: %w", classify(err))
	}

	if n > 0 {
		s.changed(ctx, "pages bulk updated", actor, nil, "count", n)
	}
	return n, nil
}

// BulkDelete removes every page in ids with one statement and returns the
// number of pages deleted.
func (s *PageService) BulkDelete(ctx context.Context, ids []int64, actor *Actor) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.queries.DeletePagesByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk deleting pages: %w", err)
	}

	if n > 0 {
		s.changed(ctx, "pages bulk deleted", actor, nil, "count", n)
	}
	return n, nil
}

// BulkAction runs a named bulk action. Publishing stamps every page with
// the current time.
func (s *PageService) BulkAction(ctx context.Context, action BulkAction, ids []int64, actor *Actor) (int64, error) {
	status := func(st model.PageStatus) *model.PageStatus { return &st }

	switch action {
	case BulkActionDelete:
		return s.BulkDelete(ctx, ids, actor)
	case BulkActionPublish:
		now := s.now()
		return s.BulkUpdate(ctx, ids, BulkPatch{Status: status(model.PageStatusPublished), PublishedAt: &now}, actor)
	case BulkActionUnpublish:
		return s.BulkUpdate(ctx, ids, BulkPatch{Status: status(model.PageStatusDraft)}, actor)
	case BulkActionArchive:
		return s.BulkUpdate(ctx, ids, BulkPatch{Status: status(model.PageStatusArchived)}, actor)
	default:
		verr := &ValidationError{}
		verr.add("action", "must be one of delete, publish, unpublish, archive")
		return 0, verr
	}
}

// ListAll lists pages of every status.
func (s *PageService) ListAll(ctx context.Context, f PageFilters) (Paginated[model.Page], error) {
	verr := &ValidationError{}
	if f.Status != "" && !f.Status.Valid() {
		verr.add("status", "is not a valid status")
	}
	if f.Template != "" && !f.Template.Valid() {
		verr.add("template", "is not a valid template")
	}
	if err := verr.orNil(); err != nil {
		return Paginated[model.Page]{}, err
	}

	page, perPage, limit, offset := pageWindow(f.Page, f.PerPage, DefaultPerPage)
	search := strings.TrimSpace(f.Search)

	total, err := s.queries.CountPages(ctx, store.CountPagesParams{
		Status:   string(f.Status),
		Template: string(f.Template),
		Search:   search,
	})
	if err != nil {
		return Paginated[model.Page]{}, fmt.Errorf("counting pages: %w", err)
	}

	rows, err := s.queries.ListPages(ctx, store.ListPagesParams{
		Status:   string(f.Status),
		Template: string(f.Template),
		Search:   search,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return Paginated[model.Page]{}, fmt.Errorf("listing pages: %w", err)
	}

	items, err := pagesFromRows(rows)
	if err != nil {
		return Paginated[model.Page]{}, err
	}
	return newPaginated(items, page, perPage, total), nil
}

// ListPublished lists effectively published pages.
func (s *PageService) ListPublished(ctx context.Context, perPage, page int) (Paginated[model.Page], error) {
	page, perPage, limit, offset := pageWindow(page, perPage, DefaultPerPage)
	now := s.now().UTC()

	total, err := s.queries.CountPublishedPages(ctx, now)
	if err != nil {
		return Paginated[model.Page]{}, fmt.Errorf("counting published pages: %w", err)
	}

	rows, err := s.queries.ListPublishedPages(ctx, store.ListPublishedPagesParams{
		Now:    now,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return Paginated[model.Page]{}, fmt.Errorf("listing published pages: %w", err)
	}

	items, err := pagesFromRows(rows)
	if err != nil {
		return Paginated[model.Page]{}, err
	}
	return newPaginated(items, page, perPage, total), nil
}

// Now returns the service clock in UTC.
func (s *PageService) Now() time.Time {
	return s.now().UTC()
}

// NextPublication returns the earliest future publication time of a
// published page, or nil when none is scheduled. Public listings stay
// valid until then.
func (s *PageService) NextPublication(ctx context.Context) (*time.Time, error) {
	next, err := s.queries.GetNextPublicationTime(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("finding next publication: %w", err)
	}
	if !next.Valid {
		return nil, nil
	}
	t := next.Time.UTC()
	return &t, nil
}

// FindByID returns a page with its content blocks.
func (s *PageService) FindByID(ctx context.Context, id int64) (*model.Page, error) {
	row, err := s.queries.GetPageByID(ctx, id)
	return s.found(ctx, row, err)
}

// FindBySlug returns a page of any status.
func (s *PageService) FindBySlug(ctx context.Context, slug string) (*model.Page, error) {
	row, err := s.queries.GetPageBySlug(ctx, slug)
	return s.found(ctx, row, err)
}

// FindPublishedBySlug returns a page only if it is effectively published.
func (s *PageService) FindPublishedBySlug(ctx context.Context, slug string) (*model.Page, error) {
	row, err := s.queries.GetPublishedPageBySlug(ctx, store.GetPublishedPageBySlugParams{
		Slug: slug,
		Now:  s.now().UTC(),
	})
	return s.found(ctx, row, err)
}

func (s *PageService) found(ctx context.Context, row store.Page, err error) (*model.Page, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading page: %w", err)
	}
	page, err := hydrate(ctx, s.queries, row)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// RecentPages returns the most recently created pages.
func (s *PageService) RecentPages(ctx context.Context, limit int) ([]model.Page, error) {
	rows, err := s.queries.ListRecentPages(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing recent pages: %w", err)
	}
	return pagesFromRows(rows)
}

// Statistics counts pages per status.
func (s *PageService) Statistics(ctx context.Context) (Statistics, error) {
	rows, err := s.queries.CountPagesByStatus(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("counting pages by status: %w", err)
	}

	var st Statistics
	for _, r := range rows {
		st.Total += r.Count
		switch model.PageStatus(r.Status) {
		case model.PageStatusPublished:
			st.Published = r.Count
		case model.PageStatusDraft:
			st.Draft = r.Count
		case model.PageStatusArchived:
			st.Archived = r.Count
		}
	}
	return st, nil
}

// withTx runs fn in a transaction. Constraint failures are classified;
// every other error is returned as is.
func (s *PageService) withTx(ctx context.Context, fn func(q *store.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// classify maps store constraint failures to service errors. Unique
// violations are slug conflicts; foreign keys of pages only reference
// users, so a foreign key violation means the actor does not exist.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation):
		return err
	case store.IsUniqueViolation(err):
		return &ConflictError{Field: "slug", Err: err}
	case store.IsForeignKeyViolation(err):
		verr := &ValidationError{}
		verr.add("actor", "does not exist")
		return verr
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// changed logs a committed mutation, records it in the event log and
// invalidates cached pages.
func (s *PageService) changed(ctx context.Context, msg string, actor *Actor, page *model.Page, attrs ...any) {
	meta := map[string]any{}
	if page != nil {
		attrs = append(attrs, "page_id", page.ID, "slug", page.Slug, "status", string(page.Status))
	}
	if actor != nil {
		attrs = append(attrs, "user_id", actor.UserID)
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		if key, ok := attrs[i].(string); ok {
			meta[key] = attrs[i+1]
		}
	}

	s.logger.Info(msg, attrs...)

	if s.events != nil {
		if err := s.events.LogPageEvent(ctx, model.EventLevelInfo, msg, actor.idPtr(), meta); err != nil {
			s.logger.Warn("failed to record page event", "error", err, "category", model.EventCategoryPage)
		}
	}

	if s.invalidator != nil {
		if err := s.invalidator.InvalidatePages(ctx); err != nil {
			s.logger.Warn("failed to invalidate page cache", "error", err, "category", model.EventCategoryCache)
		}
	}
}

func insertBlocks(ctx context.Context, q *store.Queries, pageID int64, blocks []model.ContentBlock, now time.Time) error {
	for _, b := range blocks {
		images, err := encodeImages(b.Images)
		if err != nil {
			return err
		}
		if _, err := q.CreatePageContent(ctx, store.CreatePageContentParams{
			PageID:    pageID,
			Priority:  int64(b.Priority),
			Text:      util.NullStringFromValue(b.Text),
			Images:    images,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("creating content block: %w", err)
		}
	}
	return nil
}

// hydrate converts row and attaches its content blocks in priority order.
func hydrate(ctx context.Context, q *store.Queries, row store.Page) (model.Page, error) {
	page, err := pageFromRow(row)
	if err != nil {
		return page, err
	}

	rows, err := q.ListPageContents(ctx, row.ID)
	if err != nil {
		return page, fmt.Errorf("loading content blocks: %w", err)
	}
	page.Contents = make([]model.ContentBlock, 0, len(rows))
	for _, r := range rows {
		b, err := blockFromRow(r)
		if err != nil {
			return page, err
		}
		page.Contents = append(page.Contents, b)
	}
	return page, nil
}

func (in PageInput) withDefaults() PageInput {
	if in.Status == "" {
		in.Status = model.PageStatusDraft
	}
	if in.Template == "" {
		in.Template = model.TemplateDefault
	}
	return in
}

// applyTo merges upd over cur and returns the result as an input for
// validation and storage.
func (upd PageUpdate) applyTo(cur model.Page) PageInput {
	in := PageInput{
		Title:       cur.Title,
		Slug:        cur.Slug,
		Excerpt:     cur.Excerpt,
		Content:     cur.Content,
		Status:      cur.Status,
		Template:    cur.Template,
		SortOrder:   cur.SortOrder,
		PublishedAt: cur.PublishedAt,
		MetaData:    cur.MetaData,
		Contents:    upd.Contents,
	}
	if upd.Title != nil {
		in.Title = *upd.Title
	}
	if upd.Slug != nil {
		in.Slug = *upd.Slug
	}
	if upd.Excerpt != nil {
		in.Excerpt = *upd.Excerpt
	}
	if upd.Content != nil {
		in.Content = *upd.Content
	}
	if upd.Status != nil {
		in.Status = *upd.Status
	}
	if upd.Template != nil {
		in.Template = *upd.Template
	}
	if upd.SortOrder != nil {
		in.SortOrder = *upd.SortOrder
	}
	if upd.ClearPublishedAt {
		in.PublishedAt = nil
	}
	if upd.PublishedAt != nil {
		in.PublishedAt = upd.PublishedAt
	}
	if upd.MetaData != nil {
		in.MetaData = *upd.MetaData
	}
	return in
}
