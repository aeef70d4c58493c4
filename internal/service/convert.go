// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/util"
)

func pageFromRow(row store.Page) (model.Page, error) {
	p := model.Page{
		ID:          row.ID,
		Title:       row.Title,
		Slug:        row.Slug,
		Excerpt:     row.Excerpt.String,
		Content:     row.Content,
		Status:      model.PageStatus(row.Status),
		Template:    model.Template(row.Template),
		SortOrder:   int(row.SortOrder),
		PublishedAt: util.PtrFromNullTime(row.PublishedAt),
		CreatedBy:   util.PtrFromNullInt64(row.CreatedBy),
		UpdatedBy:   util.PtrFromNullInt64(row.UpdatedBy),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.MetaData.Valid && row.MetaData.String != "" {
		if err := json.Unmarshal([]byte(row.MetaData.String), &p.MetaData); err != nil {
			return p, fmt.Errorf("decoding meta data of page %d: %w", row.ID, err)
		}
	}
	return p, nil
}

func pagesFromRows(rows []store.Page) ([]model.Page, error) {
	pages := make([]model.Page, 0, len(rows))
	for _, row := range rows {
		p, err := pageFromRow(row)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func blockFromRow(row store.PageContent) (model.ContentBlock, error) {
	b := model.ContentBlock{
		ID:       row.ID,
		PageID:   row.PageID,
		Priority: int(row.Priority),
		Text:     row.Text.String,
		Images:   []string{},
	}
	if row.Images != "" {
		if err := json.Unmarshal([]byte(row.Images), &b.Images); err != nil {
			return b, fmt.Errorf("decoding images of block %d: %w", row.ID, err)
		}
	}
	return b, nil
}

// encodeMetaData prunes m and returns its JSON form, or NULL when nothing
// is left.
func encodeMetaData(m model.MetaData) (sql.NullString, error) {
	m = m.Pruned()
	if m.IsEmpty() {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding meta data: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encoding images: %w", err)
	}
	return string(b), nil
}
