// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic jobs of the CMS: announcing pages
// whose publication time has arrived and purging old events.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/service"
	"github.com/olegiv/ocms-pages/internal/store"
)

// Cron schedules of the built-in jobs.
const (
	GoLiveSchedule = "* * * * *"
	PurgeSchedule  = "0 3 * * *"
)

// DefaultRetention is how long events are kept when no retention is set.
const DefaultRetention = 90 * 24 * time.Hour

// PageWarmer refreshes cached page views. Implemented by cache.PageCache.
type PageWarmer interface {
	InvalidatePages(ctx context.Context) error
	Warm(ctx context.Context, slugs ...string) int
}

// Recorder counts job outcomes. Implemented by metrics.Metrics.
type Recorder interface {
	PagesWentLive(n int)
	EventsPurged(n int64)
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	LastRun  time.Time `json:"last_run,omitzero"`
	NextRun  time.Time `json:"next_run,omitzero"`
}

type job struct {
	name     string
	schedule string
	entryID  cron.EntryID
	lastRun  time.Time
}

// Scheduler handles scheduled tasks.
type Scheduler struct {
	queries   *store.Queries
	events    *service.EventService
	cache     PageWarmer
	metrics   Recorder
	cron      *cron.Cron
	logger    *slog.Logger
	retention time.Duration
	now       func() time.Time

	mu         sync.Mutex
	lastGoLive time.Time
	jobs       []*job
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCache refreshes the page cache when pages go live.
func WithCache(c PageWarmer) Option {
	return func(s *Scheduler) { s.cache = c }
}

// WithMetrics reports go-live and purge counts to r.
func WithMetrics(r Recorder) Option {
	return func(s *Scheduler) { s.metrics = r }
}

// WithRetention sets how long events are kept.
func WithRetention(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a new scheduler instance.
func New(db *sql.DB, events *service.EventService, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		queries:   store.New(db),
		events:    events,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		logger:    logger,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastGoLive = s.now().UTC()
	return s
}

// Start registers the built-in jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if err := s.addJob("go-live", GoLiveSchedule, func(ctx context.Context) error {
		_, err := s.CheckGoLive(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := s.addJob("event-purge", PurgeSchedule, func(ctx context.Context) error {
		_, err := s.PurgeEvents(ctx)
		return err
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) addJob(name, schedule string, fn func(context.Context) error) error {
	j := &job{name: name, schedule: schedule}
	id, err := s.cron.AddFunc(schedule, func() {
		s.mu.Lock()
		j.lastRun = s.now().UTC()
		s.mu.Unlock()

		if err := fn(context.Background()); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("registering job %s: %w", name, err)
	}
	j.entryID = id

	s.mu.Lock()
	s.jobs = append(s.jobs, j)
	s.mu.Unlock()
	return nil
}

// Jobs lists the registered jobs with their last and next run times.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, JobInfo{
			Name:     j.name,
			Schedule: j.schedule,
			LastRun:  j.lastRun,
			NextRun:  s.cron.Entry(j.entryID).Next,
		})
	}
	return out
}

// CheckGoLive finds published pages whose publication time fell between
// the previous check and now, records an event for each and refreshes the
// cache. It returns the number of pages that went live.
func (s *Scheduler) CheckGoLive(ctx context.Context) (int, error) {
	s.mu.Lock()
	after := s.lastGoLive
	now := s.now().UTC()
	s.mu.Unlock()

	pages, err := s.queries.ListPagesPublishedBetween(ctx, store.ListPagesPublishedBetweenParams{
		After: after,
		Until: now,
	})
	if err != nil {
		return 0, fmt.Errorf("listing pages gone live: %w", err)
	}

	s.mu.Lock()
	s.lastGoLive = now
	s.mu.Unlock()

	if len(pages) == 0 {
		return 0, nil
	}

	s.logger.Info("pages went live", "count", len(pages))
	if s.metrics != nil {
		s.metrics.PagesWentLive(len(pages))
	}

	slugs := make([]string, 0, len(pages))
	for _, p := range pages {
		slugs = append(slugs, p.Slug)

		if s.events == nil {
			continue
		}
		err := s.events.LogSchedulerEvent(ctx, model.EventLevelInfo, "Page went live: "+p.Title, map[string]any{
			"page_id":      p.ID,
			"page_slug":    p.Slug,
			"published_at": p.PublishedAt.Time.UTC().Format(time.RFC3339),
		})
		if err != nil {
			s.logger.Warn("failed to log go-live event", "page_id", p.ID, "error", err)
		}
	}

	if s.cache != nil {
		// Cached listings were built before these pages were visible.
		if err := s.cache.InvalidatePages(ctx); err != nil {
			s.logger.Warn("failed to invalidate page cache", "error", err)
		}
		warmed := s.cache.Warm(ctx, slugs...)
		s.logger.Debug("page cache warmed", "pages", warmed)
	}

	return len(pages), nil
}

// PurgeEvents deletes events older than the retention period.
func (s *Scheduler) PurgeEvents(ctx context.Context) (int64, error) {
	if s.events == nil {
		return 0, nil
	}

	n, err := s.events.DeleteOldEvents(ctx, s.retention)
	if err != nil {
		return 0, fmt.Errorf("purging events: %w", err)
	}
	if s.metrics != nil {
		s.metrics.EventsPurged(n)
	}
	if n > 0 {
		s.logger.Info("old events purged", "count", n, "retention", s.retention)
	}
	return n, nil
}
