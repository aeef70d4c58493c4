// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

// Listing defaults
const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Paginated is one page of a listing. Pages are 1-indexed; asking for a
// page past LastPage yields no items and no error.
type Paginated[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// pageWindow normalizes the requested page and size and returns the
// LIMIT/OFFSET to query with.
func pageWindow(page, perPage, defaultPerPage int) (int, int, int64, int64) {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page < 1 {
		page = 1
	}
	return page, perPage, int64(perPage), int64(page-1) * int64(perPage)
}

func lastPage(total int64, perPage int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func newPaginated[T any](items []T, page, perPage int, total int64) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items:       items,
		CurrentPage: page,
		LastPage:    lastPage(total, perPage),
		PerPage:     perPage,
		Total:       total,
	}
}
