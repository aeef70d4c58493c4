// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render turns stored pages into public views: Markdown bodies are
// converted to HTML and sanitized, blocks are ordered and SEO data is
// attached.
package render

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/seo"
)

// PageView is the public representation of a page.
type PageView struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	Slug           string           `json:"slug"`
	URL            string           `json:"url,omitempty"`
	Excerpt        string           `json:"excerpt,omitempty"`
	Status         model.PageStatus `json:"status"`
	Template       model.Template   `json:"template"`
	TemplateLabel  string           `json:"template_label"`
	ContentHTML    string           `json:"content_html"`
	Blocks         []BlockView      `json:"blocks"`
	PublishedAt    *time.Time       `json:"published_at,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Meta           seo.Meta         `json:"meta"`
	StructuredData json.RawMessage  `json:"structured_data,omitempty"`
}

// BlockView is a rendered content block.
type BlockView struct {
	Priority int      `json:"priority"`
	HTML     string   `json:"html"`
	Images   []string `json:"images"`
}

// PageSummary is a listing entry.
type PageSummary struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	URL         string         `json:"url,omitempty"`
	Excerpt     string         `json:"excerpt,omitempty"`
	Template    model.Template `json:"template"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}

// Renderer converts pages to views. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	site   seo.SiteConfig
	now    func() time.Time
}

// New creates a Renderer for site.
func New(site seo.SiteConfig) *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// Raw HTML is allowed through goldmark and then sanitized.
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: bluemonday.UGCPolicy(),
		site:   site,
		now:    time.Now,
	}
}

// Markdown renders src to sanitized HTML.
func (r *Renderer) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Page builds the public view of page.
func (r *Renderer) Page(page *model.Page) (PageView, error) {
	body, err := r.Markdown(page.Content)
	if err != nil {
		return PageView{}, err
	}

	blocks := slices.Clone(page.Contents)
	slices.SortStableFunc(blocks, func(a, b model.ContentBlock) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	views := make([]BlockView, 0, len(blocks))
	for _, b := range blocks {
		h, err := r.Markdown(b.Text)
		if err != nil {
			return PageView{}, fmt.Errorf("block %d: %w", b.ID, err)
		}
		images := b.Images
		if images == nil {
			images = []string{}
		}
		views = append(views, BlockView{Priority: b.Priority, HTML: h, Images: images})
	}

	meta := seo.BuildMeta(page, body, r.site, r.now())

	return PageView{
		ID:             page.ID,
		Title:          page.Title,
		Slug:           page.Slug,
		URL:            meta.Canonical,
		Excerpt:        page.Excerpt,
		Status:         page.Status,
		Template:       page.Template,
		TemplateLabel:  page.Template.Label(),
		ContentHTML:    body,
		Blocks:         views,
		PublishedAt:    page.PublishedAt,
		UpdatedAt:      page.UpdatedAt,
		Meta:           meta,
		StructuredData: seo.BuildArticleSchema(page, meta, r.site),
	}, nil
}

// Summaries builds listing entries for pages.
func (r *Renderer) Summaries(pages []model.Page) []PageSummary {
	out := make([]PageSummary, 0, len(pages))
	for _, p := range pages {
		s := PageSummary{
			ID:          p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			Excerpt:     p.Excerpt,
			Template:    p.Template,
			PublishedAt: p.PublishedAt,
		}
		if r.site.SiteURL != "" {
			s.URL = seo.PageURL(r.site.SiteURL, p.Slug)
		}
		out = append(out, s)
	}
	return out
}

// Sitemap renders the sitemap of pages.
func (r *Renderer) Sitemap(pages []model.Page) ([]byte, error) {
	return seo.GenerateSitemap(r.site.SiteURL, pages)
}
