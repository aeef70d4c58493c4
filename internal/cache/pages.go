// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/service"
)

// Key layout of the page cache. Every key lives under pagePrefix so one
// DeleteByPrefix drops them all.
const (
	pagePrefix     = "pages:"
	pageSlugPrefix = pagePrefix + "slug:"
	pageListPrefix = pagePrefix + "list:"
)

// defaultPreload is how many published pages Preload warms when no limit
// is given.
const defaultPreload = 20

// PublishedPages is the read side the page cache sits in front of.
type PublishedPages interface {
	FindPublishedBySlug(ctx context.Context, slug string) (*model.Page, error)
	ListPublished(ctx context.Context, perPage, page int) (service.Paginated[model.Page], error)
	// NextPublication returns when the next scheduled page goes live, or
	// nil when none is scheduled.
	NextPublication(ctx context.Context) (*time.Time, error)
	Now() time.Time
}

// listingEntry is a cached listing. It is stale from Until on, when a
// scheduled page joins the published set.
type listingEntry struct {
	Result service.Paginated[model.Page] `json:"result"`
	Until  *time.Time                    `json:"until,omitempty"`
}

func (e *listingEntry) fresh(now time.Time) bool {
	return e.Until == nil || now.Before(*e.Until)
}

// PageCache caches public page reads. Only successful lookups are stored;
// not-found results always go to the source.
type PageCache struct {
	backend Cacher
	pages   PublishedPages
	bySlug  *TypedCache[model.Page]
	lists   *TypedCache[listingEntry]
	ttl     time.Duration
	logger  *slog.Logger
}

// NewPageCache creates a page cache over backend. A zero ttl uses the
// backend default.
func NewPageCache(backend Cacher, pages PublishedPages, ttl time.Duration, logger *slog.Logger) *PageCache {
	return &PageCache{
		backend: backend,
		pages:   pages,
		bySlug:  NewTypedCache[model.Page](backend, ttl),
		lists:   NewTypedCache[listingEntry](backend, ttl),
		ttl:     ttl,
		logger:  logger,
	}
}

// GetBySlug returns the published page with slug.
func (c *PageCache) GetBySlug(ctx context.Context, slug string) (*model.Page, error) {
	return c.bySlug.GetOrSet(ctx, pageSlugPrefix+slug, func() (*model.Page, error) {
		return c.pages.FindPublishedBySlug(ctx, slug)
	})
}

// ListPublished returns one page of the published listing. A cached
// listing is kept no longer than the next scheduled publication, so pages
// appear on time without a mutation to invalidate the cache.
func (c *PageCache) ListPublished(ctx context.Context, perPage, page int) (service.Paginated[model.Page], error) {
	key := fmt.Sprintf("%s%d:%d", pageListPrefix, perPage, page)
	if entry, ok := c.lists.Get(ctx, key); ok && entry.fresh(c.pages.Now()) {
		return entry.Result, nil
	}

	// Read the horizon first so a page published in between is never
	// cached past its publication time.
	until, err := c.pages.NextPublication(ctx)
	if err != nil {
		return service.Paginated[model.Page]{}, err
	}
	res, err := c.pages.ListPublished(ctx, perPage, page)
	if err != nil {
		return service.Paginated[model.Page]{}, err
	}

	ttl := c.ttl
	if until != nil {
		remaining := until.Sub(c.pages.Now())
		if remaining <= 0 {
			return res, nil
		}
		if ttl <= 0 || remaining < ttl {
			ttl = remaining
		}
	}
	if err := c.lists.SetWithTTL(ctx, key, &listingEntry{Result: res, Until: until}, ttl); err != nil {
		c.logger.Debug("caching page listing failed", "key", key, "error", err)
	}
	return res, nil
}

// InvalidatePages drops every cached page and listing.
func (c *PageCache) InvalidatePages(ctx context.Context) error {
	return NewPageInvalidator(c.backend).InvalidatePages(ctx)
}

// PageInvalidator clears the page keys of a backend. It lets the write
// side invalidate without holding a PageCache.
type PageInvalidator struct {
	backend Cacher
}

// NewPageInvalidator returns an invalidator for the page keys of backend.
func NewPageInvalidator(backend Cacher) *PageInvalidator {
	return &PageInvalidator{backend: backend}
}

// InvalidatePages drops every cached page and listing.
func (i *PageInvalidator) InvalidatePages(ctx context.Context) error {
	if err := i.backend.DeleteByPrefix(ctx, pagePrefix); err != nil {
		return fmt.Errorf("invalidating page cache: %w", err)
	}
	return nil
}

// Warm loads the given slugs into the cache. Slugs that are not published
// are skipped.
func (c *PageCache) Warm(ctx context.Context, slugs ...string) int {
	warmed := 0
	for _, slug := range slugs {
		if _, err := c.GetBySlug(ctx, slug); err != nil {
			c.logger.Debug("skipping page warm-up", "slug", slug, "error", err)
			continue
		}
		warmed++
	}
	return warmed
}

// Preload caches the first limit published pages and the first listing.
func (c *PageCache) Preload(ctx context.Context, limit int) error {
	if limit <= 0 {
		limit = defaultPreload
	}

	res, err := c.pages.ListPublished(ctx, limit, 1)
	if err != nil {
		return fmt.Errorf("failed to preload pages: %w", err)
	}

	slugs := make([]string, 0, len(res.Items))
	for _, p := range res.Items {
		slugs = append(slugs, p.Slug)
	}
	c.Warm(ctx, slugs...)
	return nil
}

// Stats returns backend statistics when the backend keeps them.
func (c *PageCache) Stats() (Stats, bool) {
	sp, ok := c.backend.(StatsProvider)
	if !ok {
		return Stats{}, false
	}
	return sp.Stats(), true
}
