// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Default admin account
const (
	DefaultAdminEmail = "admin@example.com"
	DefaultAdminName  = "Administrator"
)

type seedPage struct {
	title       string
	slug        string
	excerpt     string
	content     string
	status      string
	template    string
	sortOrder   int64
	publishedAt time.Duration // offset before now; zero means unset
	metaData    string
}

var samplePages = []seedPage{
	{
		title:       "Welcome to Our Website",
		slug:        "welcome",
		excerpt:     "What we do and why we do it.",
		content:     "# Welcome\n\nThis site runs on a small page CMS. Every page has a template, SEO metadata and optional content blocks.",
		status:      "published",
		template:    "landing",
		sortOrder:   100,
		publishedAt: 7 * 24 * time.Hour,
		metaData:    `{"title":"Welcome","description":"What we do and why we do it.","keywords":"welcome, cms"}`,
	},
	{
		title:       "About Our Company",
		slug:        "about",
		excerpt:     "Our history, our team and our values.",
		content:     "## Our story\n\nWe started small and kept going.\n\n## Our team\n\nPeople who like shipping things.",
		status:      "published",
		template:    "default",
		sortOrder:   90,
		publishedAt: 5 * 24 * time.Hour,
		metaData:    `{"title":"About Us","description":"Our history, our team and our values.","keywords":"about, team, values"}`,
	},
	{
		title:       "Getting Started with Dynamic Pages",
		slug:        "getting-started-dynamic-pages",
		excerpt:     "A short guide to creating and publishing pages.",
		content:     "1. Create a page\n2. Pick a template\n3. Fill in SEO metadata\n4. Publish now or schedule for later",
		status:      "published",
		template:    "blog",
		sortOrder:   80,
		publishedAt: 3 * 24 * time.Hour,
		metaData:    `{"title":"Getting Started with Dynamic Pages","keywords":"guide, cms"}`,
	},
	{
		title:       "Contact Us",
		slug:        "contact",
		excerpt:     "Get in touch with our team.",
		content:     "We usually answer within one business day.",
		status:      "published",
		template:    "contact",
		sortOrder:   60,
		publishedAt: 12 * time.Hour,
		metaData:    `{"title":"Contact Us"}`,
	},
	{
		title:     "Privacy Policy Draft",
		slug:      "privacy-policy-draft",
		excerpt:   "How we handle personal information.",
		content:   "This policy is still being written.",
		status:    "draft",
		template:  "default",
		sortOrder: 50,
	},
	{
		title:       "Legacy Content Archive",
		slug:        "legacy-content-archive",
		excerpt:     "Historical content kept for reference.",
		content:     "This page is no longer maintained.",
		status:      "archived",
		template:    "default",
		sortOrder:   10,
		publishedAt: 180 * 24 * time.Hour,
	},
}

// Seed creates the default admin user and a set of sample pages. Existing
// rows are left alone, so running it twice is harmless.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	user, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if errors.Is(err, sql.ErrNoRows) {
		now := time.Now().UTC()
		user, err = queries.CreateUser(ctx, CreateUserParams{
			Email:     DefaultAdminEmail,
			Name:      DefaultAdminName,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}
		slog.Info("created default admin user", "id", user.ID, "email", user.Email)
	} else if err != nil {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	created := 0
	for _, p := range samplePages {
		exists, err := queries.SlugExists(ctx, p.slug)
		if err != nil {
			return fmt.Errorf("checking sample page %q: %w", p.slug, err)
		}
		if exists > 0 {
			continue
		}

		now := time.Now().UTC()
		var publishedAt sql.NullTime
		if p.publishedAt > 0 {
			publishedAt = sql.NullTime{Time: now.Add(-p.publishedAt), Valid: true}
		}

		owner := sql.NullInt64{Int64: user.ID, Valid: true}
		if _, err := queries.CreatePage(ctx, CreatePageParams{
			Title:       p.title,
			Slug:        p.slug,
			Excerpt:     sql.NullString{String: p.excerpt, Valid: p.excerpt != ""},
			Content:     p.content,
			Status:      p.status,
			Template:    p.template,
			SortOrder:   p.sortOrder,
			PublishedAt: publishedAt,
			MetaData:    sql.NullString{String: p.metaData, Valid: p.metaData != ""},
			CreatedBy:   owner,
			UpdatedBy:   owner,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return fmt.Errorf("creating sample page %q: %w", p.slug, err)
		}
		created++
	}

	if created > 0 {
		slog.Info("created sample pages", "count", created)
	}

	return nil
}
