// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds meta tags, structured data, sitemaps and robots.txt
// for public pages.
package seo

import (
	"encoding/json"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/ocms-pages/internal/model"
)

// DescriptionLength is the rune limit of a description derived from the
// page body.
const DescriptionLength = 160

var plainText = bluemonday.StrictPolicy()

// Meta holds the SEO data of a public page view.
type Meta struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Keywords      string `json:"keywords,omitempty"`
	Canonical     string `json:"canonical,omitempty"`
	OGTitle       string `json:"og_title"`
	OGDescription string `json:"og_description,omitempty"`
	OGType        string `json:"og_type"`
	OGSiteName    string `json:"og_site_name,omitempty"`
	OGURL         string `json:"og_url,omitempty"`
	Robots        string `json:"robots"`
}

// SiteConfig contains site-wide settings for SEO.
type SiteConfig struct {
	SiteName string
	SiteURL  string
}

// BuildMeta creates the meta data of page. bodyHTML is the rendered body;
// it is only used when neither a meta description nor an excerpt is set.
// Pages that are not publicly visible at now are marked noindex.
func BuildMeta(page *model.Page, bodyHTML string, site SiteConfig, now time.Time) Meta {
	meta := Meta{
		Title:      page.MetaTitle(),
		Keywords:   page.MetaData.Keywords,
		OGType:     "article",
		OGSiteName: site.SiteName,
		Robots:     buildRobotsDirective(!page.IsPublishedAt(now), false),
	}
	meta.OGTitle = meta.Title

	meta.Description = page.MetaDescription()
	if meta.Description == "" {
		meta.Description = truncateText(PlainText(bodyHTML), DescriptionLength)
	}
	meta.OGDescription = meta.Description

	if page.Slug != "" && site.SiteURL != "" {
		meta.Canonical = PageURL(site.SiteURL, page.Slug)
	}
	meta.OGURL = meta.Canonical

	return meta
}

// PageURL returns the absolute public URL of slug.
func PageURL(siteURL, slug string) string {
	return strings.TrimSuffix(siteURL, "/") + "/pages/" + slug
}

// buildRobotsDirective creates the robots meta content from noindex/nofollow flags.
func buildRobotsDirective(noIndex, noFollow bool) string {
	index, follow := "index", "follow"
	if noIndex {
		index = "noindex"
	}
	if noFollow {
		follow = "nofollow"
	}
	return index + "," + follow
}

// ArticleSchema represents JSON-LD Article structured data.
type ArticleSchema struct {
	Context          string     `json:"@context"`
	Type             string     `json:"@type"`
	Headline         string     `json:"headline"`
	Description      string     `json:"description,omitempty"`
	Image            string     `json:"image,omitempty"`
	DatePublished    string     `json:"datePublished,omitempty"`
	DateModified     string     `json:"dateModified,omitempty"`
	Publisher        *OrgSchema `json:"publisher,omitempty"`
	MainEntityOfPage string     `json:"mainEntityOfPage,omitempty"`
}

// OrgSchema represents JSON-LD Organization structured data.
type OrgSchema struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// BuildArticleSchema returns JSON-LD Article data for page. The first
// image of the first content block that has one is used as the article
// image.
func BuildArticleSchema(page *model.Page, meta Meta, site SiteConfig) json.RawMessage {
	article := ArticleSchema{
		Context:          "https://schema.org",
		Type:             "Article",
		Headline:         page.Title,
		Description:      meta.Description,
		MainEntityOfPage: meta.Canonical,
	}

	for _, b := range page.Contents {
		if len(b.Images) > 0 {
			article.Image = makeAbsoluteURL(b.Images[0], site.SiteURL)
			break
		}
	}

	if page.PublishedAt != nil {
		article.DatePublished = page.PublishedAt.UTC().Format(time.RFC3339)
	}
	if !page.UpdatedAt.IsZero() {
		article.DateModified = page.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if site.SiteName != "" {
		article.Publisher = &OrgSchema{Type: "Organization", Name: site.SiteName}
	}

	data, err := json.Marshal(article)
	if err != nil {
		return nil
	}
	return data
}

// PlainText strips every tag from s, decodes entities and collapses
// whitespace.
func PlainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(plainText.Sanitize(s))), " ")
}

// truncateText cuts text to maxLen runes, preferring a word boundary, and
// appends "..." when anything was cut.
func truncateText(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	truncated := string([]rune(text)[:maxLen])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}
	return strings.TrimSpace(truncated) + "..."
}

// makeAbsoluteURL ensures a URL is absolute by prepending site URL if needed.
func makeAbsoluteURL(url, siteURL string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	siteURL = strings.TrimSuffix(siteURL, "/")
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return siteURL + url
}
