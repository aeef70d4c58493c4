// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/util"
)

func validatePageInput(in PageInput) error {
	verr := &ValidationError{}

	switch {
	case strings.TrimSpace(in.Title) == "":
		verr.add("title", "is required")
	case utf8.RuneCountInString(in.Title) > model.MaxTitleLength:
		verr.add("title", fmt.Sprintf("must be at most %d characters", model.MaxTitleLength))
	}

	if in.Slug != "" {
		switch {
		case len(in.Slug) > model.MaxSlugLength:
			verr.add("slug", fmt.Sprintf("must be at most %d characters", model.MaxSlugLength))
		case !util.IsValidSlug(in.Slug):
			verr.add("slug", "may only contain lowercase letters, numbers and single hyphens")
		}
	}

	if utf8.RuneCountInString(in.Excerpt) > model.MaxExcerptLength {
		verr.add("excerpt", fmt.Sprintf("must be at most %d characters", model.MaxExcerptLength))
	}
	if strings.TrimSpace(in.Content) == "" {
		verr.add("content", "is required")
	}
	if !in.Status.Valid() {
		verr.add("status", "is not a valid status")
	}
	if !in.Template.Valid() {
		verr.add("template", "is not a valid template")
	}
	if in.SortOrder < 0 {
		verr.add("sort_order", "must be zero or greater")
	}

	checkLen := func(field, value string, max int) {
		if utf8.RuneCountInString(value) > max {
			verr.add(field, fmt.Sprintf("must be at most %d characters", max))
		}
	}
	checkLen("meta_data.title", in.MetaData.Title, model.MaxMetaTitleLength)
	checkLen("meta_data.description", in.MetaData.Description, model.MaxMetaDescriptionLength)
	checkLen("meta_data.keywords", in.MetaData.Keywords, model.MaxMetaKeywordsLength)

	for i, b := range in.Contents {
		if b.Priority < 0 {
			verr.add(fmt.Sprintf("contents.%d.priority", i), "must be zero or greater")
		}
	}

	return verr.orNil()
}

func validateBulkPatch(p BulkPatch) error {
	verr := &ValidationError{}
	if p.Status != nil && !p.Status.Valid() {
		verr.add("status", "is not a valid status")
	}
	if p.Template != nil && !p.Template.Valid() {
		verr.add("template", "is not a valid template")
	}
	if p.SortOrder != nil && *p.SortOrder < 0 {
		verr.add("sort_order", "must be zero or greater")
	}
	return verr.orNil()
}
