// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

const pageColumns = `id, title, slug, excerpt, content, status, template, sort_order, published_at, meta_data, created_by, updated_by, created_at, updated_at`

// pageOrder is the default listing order: sort_order desc, newest first.
const pageOrder = `ORDER BY sort_order DESC, created_at DESC, id DESC`

// pageFilter matches optional status, template and search arguments.
// An empty argument disables its condition.
const pageFilter = `(? = '' OR status = ?)
  AND (? = '' OR template = ?)
  AND (? = '' OR fold(title) LIKE ? ESCAPE '\' OR fold(content) LIKE ? ESCAPE '\' OR fold(IFNULL(excerpt, '')) LIKE ? ESCAPE '\')`

// publishedFilter is the effective-publication predicate.
const publishedFilter = `status = 'published' AND (published_at IS NULL OR published_at <= ?)`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPage(row rowScanner) (Page, error) {
	var i Page
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Slug,
		&i.Excerpt,
		&i.Content,
		&i.Status,
		&i.Template,
		&i.SortOrder,
		&i.PublishedAt,
		&i.MetaData,
		&i.CreatedBy,
		&i.UpdatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanPages(rows *sql.Rows) ([]Page, error) {
	defer rows.Close()
	items := []Page{}
	for rows.Next() {
		i, err := scanPage(rows)
		if err != nil {
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

// likePattern wraps the folded term for a substring LIKE match against
// folded columns, escaping wildcards.
func likePattern(term string) string {
	if term == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(Fold(term)) + "%"
}

func pageFilterArgs(status, template, search string) []interface{} {
	pattern := likePattern(search)
	return []interface{}{status, status, template, template, search, pattern, pattern, pattern}
}

const createPage = `-- name: CreatePage :one
INSERT INTO pages (
    title, slug, excerpt, content, status, template, sort_order, published_at, meta_data, created_by, updated_by, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + pageColumns

type CreatePageParams struct {
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Excerpt     sql.NullString `json:"excerpt"`
	Content     string         `json:"content"`
	Status      string         `json:"status"`
	Template    string         `json:"template"`
	SortOrder   int64          `json:"sort_order"`
	PublishedAt sql.NullTime   `json:"published_at"`
	MetaData    sql.NullString `json:"meta_data"`
	CreatedBy   sql.NullInt64  `json:"created_by"`
	UpdatedBy   sql.NullInt64  `json:"updated_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, createPage,
		arg.Title,
		arg.Slug,
		arg.Excerpt,
		arg.Content,
		arg.Status,
		arg.Template,
		arg.SortOrder,
		arg.PublishedAt,
		arg.MetaData,
		arg.CreatedBy,
		arg.UpdatedBy,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanPage(row)
}

const updatePage = `-- name: UpdatePage :one
UPDATE pages
SET title = ?, slug = ?, excerpt = ?, content = ?, status = ?, template = ?, sort_order = ?,
    published_at = ?, meta_data = ?, updated_by = ?, updated_at = ?
WHERE id = ?
RETURNING ` + pageColumns

type UpdatePageParams struct {
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Excerpt     sql.NullString `json:"excerpt"`
	Content     string         `json:"content"`
	Status      string         `json:"status"`
	Template    string         `json:"template"`
	SortOrder   int64          `json:"sort_order"`
	PublishedAt sql.NullTime   `json:"published_at"`
	MetaData    sql.NullString `json:"meta_data"`
	UpdatedBy   sql.NullInt64  `json:"updated_by"`
	UpdatedAt   time.Time      `json:"updated_at"`
	ID          int64          `json:"id"`
}

func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, updatePage,
		arg.Title,
		arg.Slug,
		arg.Excerpt,
		arg.Content,
		arg.Status,
		arg.Template,
		arg.SortOrder,
		arg.PublishedAt,
		arg.MetaData,
		arg.UpdatedBy,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanPage(row)
}

const getPageByID = `-- name: GetPageByID :one
SELECT ` + pageColumns + ` FROM pages WHERE id = ?`

func (q *Queries) GetPageByID(ctx context.Context, id int64) (Page, error) {
	row := q.db.QueryRowContext(ctx, getPageByID, id)
	return scanPage(row)
}

const getPageBySlug = `-- name: GetPageBySlug :one
SELECT ` + pageColumns + ` FROM pages WHERE slug = ?`

func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (Page, error) {
	row := q.db.QueryRowContext(ctx, getPageBySlug, slug)
	return scanPage(row)
}

const getPublishedPageBySlug = `-- name: GetPublishedPageBySlug :one
SELECT ` + pageColumns + ` FROM pages WHERE slug = ? AND ` + publishedFilter

type GetPublishedPageBySlugParams struct {
	Slug string    `json:"slug"`
	Now  time.Time `json:"now"`
}

func (q *Queries) GetPublishedPageBySlug(ctx context.Context, arg GetPublishedPageBySlugParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, getPublishedPageBySlug, arg.Slug, arg.Now)
	return scanPage(row)
}

const slugExists = `-- name: SlugExists :one
SELECT COUNT(*) FROM pages WHERE slug = ?`

func (q *Queries) SlugExists(ctx context.Context, slug string) (int64, error) {
	row := q.db.QueryRowContext(ctx, slugExists, slug)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const slugExistsExcluding = `-- name: SlugExistsExcluding :one
SELECT COUNT(*) FROM pages WHERE slug = ? AND id != ?`

type SlugExistsExcludingParams struct {
	Slug string `json:"slug"`
	ID   int64  `json:"id"`
}

func (q *Queries) SlugExistsExcluding(ctx context.Context, arg SlugExistsExcludingParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, slugExistsExcluding, arg.Slug, arg.ID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listPages = `-- name: ListPages :many
SELECT ` + pageColumns + ` FROM pages
WHERE ` + pageFilter + `
` + pageOrder + `
LIMIT ? OFFSET ?`

type ListPagesParams struct {
	Status   string `json:"status"`
	Template string `json:"template"`
	Search   string `json:"search"`
	Limit    int64  `json:"limit"`
	Offset   int64  `json:"offset"`
}

func (q *Queries) ListPages(ctx context.Context, arg ListPagesParams) ([]Page, error) {
	args := append(pageFilterArgs(arg.Status, arg.Template, arg.Search), arg.Limit, arg.Offset)
	rows, err := q.db.QueryContext(ctx, listPages, args...)
	if err != nil {
		return nil, err
	}
	return scanPages(rows)
}

const countPages = `-- name: CountPages :one
SELECT COUNT(*) FROM pages WHERE ` + pageFilter

type CountPagesParams struct {
	Status   string `json:"status"`
	Template string `json:"template"`
	Search   string `json:"search"`
}

func (q *Queries) CountPages(ctx context.Context, arg CountPagesParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPages, pageFilterArgs(arg.Status, arg.Template, arg.Search)...)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listPublishedPages = `-- name: ListPublishedPages :many
SELECT ` + pageColumns + ` FROM pages
WHERE ` + publishedFilter + `
` + pageOrder + `
LIMIT ? OFFSET ?`

type ListPublishedPagesParams struct {
	Now    time.Time `json:"now"`
	Limit  int64     `json:"limit"`
	Offset int64     `json:"offset"`
}

func (q *Queries) ListPublishedPages(ctx context.Context, arg ListPublishedPagesParams) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, listPublishedPages, arg.Now, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanPages(rows)
}

const countPublishedPages = `-- name: CountPublishedPages :one
SELECT COUNT(*) FROM pages WHERE ` + publishedFilter

func (q *Queries) CountPublishedPages(ctx context.Context, now time.Time) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPublishedPages, now)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listRecentPages = `-- name: ListRecentPages :many
SELECT ` + pageColumns + ` FROM pages ORDER BY created_at DESC, id DESC LIMIT ?`

func (q *Queries) ListRecentPages(ctx context.Context, limit int64) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, listRecentPages, limit)
	if err != nil {
		return nil, err
	}
	return scanPages(rows)
}

const listPagesPublishedBetween = `-- name: ListPagesPublishedBetween :many
SELECT ` + pageColumns + ` FROM pages
WHERE status = 'published' AND published_at > ? AND published_at <= ?
ORDER BY published_at ASC, id ASC`

type ListPagesPublishedBetweenParams struct {
	After time.Time `json:"after"`
	Until time.Time `json:"until"`
}

// ListPagesPublishedBetween returns published pages whose publication time
// falls in (After, Until].
func (q *Queries) ListPagesPublishedBetween(ctx context.Context, arg ListPagesPublishedBetweenParams) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, listPagesPublishedBetween, arg.After, arg.Until)
	if err != nil {
		return nil, err
	}
	return scanPages(rows)
}

const getNextPublicationTime = `-- name: GetNextPublicationTime :one
SELECT published_at FROM pages
WHERE status = 'published' AND published_at > ?
ORDER BY published_at ASC
LIMIT 1`

// GetNextPublicationTime returns the earliest publication time after now
// among published pages. It is invalid when no page is scheduled.
func (q *Queries) GetNextPublicationTime(ctx context.Context, now time.Time) (sql.NullTime, error) {
	row := q.db.QueryRowContext(ctx, getNextPublicationTime, now)
	var publishedAt sql.NullTime
	err := row.Scan(&publishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.NullTime{}, nil
	}
	return publishedAt, err
}

const countPagesByStatus = `-- name: CountPagesByStatus :many
SELECT status, COUNT(*) AS count FROM pages GROUP BY status`

type CountPagesByStatusRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (q *Queries) CountPagesByStatus(ctx context.Context) ([]CountPagesByStatusRow, error) {
	rows, err := q.db.QueryContext(ctx, countPagesByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountPagesByStatusRow
	for rows.Next() {
		var i CountPagesByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
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

const deletePage = `-- name: DeletePage :execrows
DELETE FROM pages WHERE id = ?`

func (q *Queries) DeletePage(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePage, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
