// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared by the store, service and
// presentation layers.
package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits enforced at the boundary.
const (
	MaxTitleLength           = 255
	MaxSlugLength            = 255
	MaxExcerptLength         = 1000
	MaxMetaTitleLength       = 255
	MaxMetaDescriptionLength = 500
	MaxMetaKeywordsLength    = 255
)

// PageStatus is the lifecycle state of a page.
type PageStatus string

// Page statuses
const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
	PageStatusArchived  PageStatus = "archived"
)

// PageStatuses lists every valid status in display order.
var PageStatuses = []PageStatus{PageStatusDraft, PageStatusPublished, PageStatusArchived}

var pageStatusLabels = map[PageStatus]string{
	PageStatusDraft:     "Draft",
	PageStatusPublished: "Published",
	PageStatusArchived:  "Archived",
}

// Valid reports whether s is one of the known statuses.
func (s PageStatus) Valid() bool {
	_, ok := pageStatusLabels[s]
	return ok
}

// Label returns the human-readable name of the status.
func (s PageStatus) Label() string {
	return pageStatusLabels[s]
}

// Template selects the layout used to render a page publicly.
type Template string

// Page templates
const (
	TemplateDefault   Template = "default"
	TemplateLanding   Template = "landing"
	TemplateBlog      Template = "blog"
	TemplatePortfolio Template = "portfolio"
	TemplateContact   Template = "contact"
)

// Templates lists every available template in display order.
var Templates = []Template{TemplateDefault, TemplateLanding, TemplateBlog, TemplatePortfolio, TemplateContact}

var templateLabels = map[Template]string{
	TemplateDefault:   "Default Template",
	TemplateLanding:   "Landing Page",
	TemplateBlog:      "Blog Post",
	TemplatePortfolio: "Portfolio Item",
	TemplateContact:   "Contact Page",
}

// Valid reports whether t is one of the known templates.
func (t Template) Valid() bool {
	_, ok := templateLabels[t]
	return ok
}

// Label returns the human-readable name of the template.
func (t Template) Label() string {
	return templateLabels[t]
}

// MetaData holds the optional SEO overrides of a page.
type MetaData struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

// Pruned returns a copy with falsy entries ("" and "0") removed.
func (m MetaData) Pruned() MetaData {
	return MetaData{
		Title:       pruneFalsy(m.Title),
		Description: pruneFalsy(m.Description),
		Keywords:    pruneFalsy(m.Keywords),
	}
}

// IsEmpty reports whether no entry is set.
func (m MetaData) IsEmpty() bool {
	return m.Title == "" && m.Description == "" && m.Keywords == ""
}

func pruneFalsy(s string) string {
	if s == "0" {
		return ""
	}
	return s
}

// ContentBlock is an ordered section of a page body.
type ContentBlock struct {
	ID       int64    `json:"id,omitempty"`
	PageID   int64    `json:"page_id,omitempty"`
	Priority int      `json:"priority"`
	Text     string   `json:"text,omitempty"`
	Images   []string `json:"images"`
}

// Page represents a CMS page.
type Page struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Excerpt     string         `json:"excerpt,omitempty"`
	Content     string         `json:"content"`
	Status      PageStatus     `json:"status"`
	Template    Template       `json:"template"`
	SortOrder   int            `json:"sort_order"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	MetaData    MetaData       `json:"meta_data"`
	CreatedBy   *int64         `json:"created_by,omitempty"`
	UpdatedBy   *int64         `json:"updated_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Contents    []ContentBlock `json:"contents"`
}

// IsPublishedAt reports whether the page is publicly visible at now: it must
// be in the published state and its publication time, if any, must not be
// in the future.
func (p *Page) IsPublishedAt(now time.Time) bool {
	if p.Status != PageStatusPublished {
		return false
	}
	return p.PublishedAt == nil || !p.PublishedAt.After(now)
}

// Publish moves the page to the published state effective at the given time.
func (p *Page) Publish(at time.Time) {
	p.Status = PageStatusPublished
	p.PublishedAt = &at
}

// Unpublish moves the page back to draft. PublishedAt is kept.
func (p *Page) Unpublish() {
	p.Status = PageStatusDraft
}

// Archive moves the page to the archived state. PublishedAt is kept.
func (p *Page) Archive() {
	p.Status = PageStatusArchived
}

// MetaTitle returns the SEO title, falling back to the page title.
func (p *Page) MetaTitle() string {
	if p.MetaData.Title != "" {
		return p.MetaData.Title
	}
	return p.Title
}

// MetaDescription returns the SEO description, falling back to the excerpt.
func (p *Page) MetaDescription() string {
	if p.MetaData.Description != "" {
		return p.MetaData.Description
	}
	return p.Excerpt
}

// TruncateRunes cuts s to at most n runes, trimming trailing whitespace.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
