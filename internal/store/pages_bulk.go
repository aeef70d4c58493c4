// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// BulkUpdatePagesParams describes a set-based page update. Null fields keep
// the stored value.
type BulkUpdatePagesParams struct {
	IDs         []int64
	Status      sql.NullString
	Template    sql.NullString
	SortOrder   sql.NullInt64
	PublishedAt sql.NullTime
	UpdatedBy   sql.NullInt64
	UpdatedAt   time.Time
}

// BulkUpdatePages applies arg to every page in arg.IDs with one UPDATE and
// returns the number of rows affected.
func (q *Queries) BulkUpdatePages(ctx context.Context, arg BulkUpdatePagesParams) (int64, error) {
	if len(arg.IDs) == 0 {
		return 0, nil
	}

	query := `UPDATE pages
SET status = COALESCE(?, status),
    template = COALESCE(?, template),
    sort_order = COALESCE(?, sort_order),
    published_at = COALESCE(?, published_at),
    updated_by = COALESCE(?, updated_by),
    updated_at = ?
WHERE id IN (` + placeholders(len(arg.IDs)) + `)`

	args := make([]interface{}, 0, 6+len(arg.IDs))
	args = append(args, arg.Status, arg.Template, arg.SortOrder, arg.PublishedAt, arg.UpdatedBy, arg.UpdatedAt)
	args = appendIDs(args, arg.IDs)

	result, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeletePagesByIDs removes every page in ids with one DELETE. Content
// blocks go with them through the foreign key cascade.
func (q *Queries) DeletePagesByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM pages WHERE id IN (` + placeholders(len(ids)) + `)`
	result, err := q.db.ExecContext(ctx, query, appendIDs(nil, ids)...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func appendIDs(args []interface{}, ids []int64) []interface{} {
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
