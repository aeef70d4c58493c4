// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type Event struct {
	ID         int64         `json:"id"`
	Level      string        `json:"level"`
	Category   string        `json:"category"`
	Message    string        `json:"message"`
	UserID     sql.NullInt64 `json:"user_id"`
	Metadata   string        `json:"metadata"`
	IpAddress  string        `json:"ip_address"`
	RequestUrl string        `json:"request_url"`
	CreatedAt  time.Time     `json:"created_at"`
}

type Page struct {
	ID          int64          `json:"id"`
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

type PageContent struct {
	ID        int64          `json:"id"`
	PageID    int64          `json:"page_id"`
	Priority  int64          `json:"priority"`
	Text      sql.NullString `json:"text"`
	Images    string         `json:"images"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
