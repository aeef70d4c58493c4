// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createPageContent = `-- name: CreatePageContent :one
INSERT INTO page_contents (page_id, priority, text, images, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, page_id, priority, text, images, created_at, updated_at`

type CreatePageContentParams struct {
	PageID    int64          `json:"page_id"`
	Priority  int64          `json:"priority"`
	Text      sql.NullString `json:"text"`
	Images    string         `json:"images"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (q *Queries) CreatePageContent(ctx context.Context, arg CreatePageContentParams) (PageContent, error) {
	row := q.db.QueryRowContext(ctx, createPageContent,
		arg.PageID,
		arg.Priority,
		arg.Text,
		arg.Images,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i PageContent
	err := row.Scan(
		&i.ID,
		&i.PageID,
		&i.Priority,
		&i.Text,
		&i.Images,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listPageContents = `-- name: ListPageContents :many
SELECT id, page_id, priority, text, images, created_at, updated_at
FROM page_contents
WHERE page_id = ?
ORDER BY priority ASC, id ASC`

func (q *Queries) ListPageContents(ctx context.Context, pageID int64) ([]PageContent, error) {
	rows, err := q.db.QueryContext(ctx, listPageContents, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PageContent{}
	for rows.Next() {
		var i PageContent
		if err := rows.Scan(
			&i.ID,
			&i.PageID,
			&i.Priority,
			&i.Text,
			&i.Images,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deletePageContents = `-- name: DeletePageContents :exec
DELETE FROM page_contents WHERE page_id = ?`

func (q *Queries) DeletePageContents(ctx context.Context, pageID int64) error {
	_, err := q.db.ExecContext(ctx, deletePageContents, pageID)
	return err
}

const countPageContents = `-- name: CountPageContents :one
SELECT COUNT(*) FROM page_contents WHERE page_id = ?`

func (q *Queries) CountPageContents(ctx context.Context, pageID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPageContents, pageID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
