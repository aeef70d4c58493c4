// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-pages/internal/middleware"
	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/seo"
	"github.com/olegiv/ocms-pages/internal/service"
)

// ListPublishedPages handles GET /api/v1/pages.
func (h *Handler) ListPublishedPages(w http.ResponseWriter, r *http.Request) {
	perPage := queryInt(r, "per_page")
	if perPage == 0 {
		perPage = h.PublicPerPage
	}

	result, err := h.listPublished(r.Context(), perPage, queryInt(r, "page"))
	if err != nil {
		h.writeServiceError(w, r, err, "list pages")
		return
	}
	WriteSuccess(w, h.Renderer.Summaries(result.Items), paginationMeta(result))
}

// GetPublishedPage handles GET /api/v1/pages/{slug}. With ?preview=1 an
// authenticated actor may view the page in any status.
func (h *Handler) GetPublishedPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var (
		page *model.Page
		err  error
	)
	if preview := r.URL.Query().Get("preview"); preview == "1" || preview == "true" {
		if middleware.GetActor(r) == nil {
			WriteUnauthorized(w, middleware.ActorHeader+" header required for preview")
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		page, err = h.Pages.FindBySlug(ctx, slug)
	} else {
		page, err = h.publishedBySlug(ctx, slug)
	}
	if err != nil {
		h.writeServiceError(w, r, err, "retrieve page")
		return
	}

	view, err := h.Renderer.Page(page)
	if err != nil {
		h.writeServiceError(w, r, err, "render page")
		return
	}
	WriteSuccess(w, view, nil)
}

// Sitemap handles GET /sitemap.xml.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	var pages []model.Page
	for n := 1; ; n++ {
		result, err := h.Pages.ListPublished(r.Context(), service.MaxPerPage, n)
		if err != nil {
			h.Logger.Error("failed to list pages for sitemap", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		pages = append(pages, result.Items...)
		if n >= result.LastPage {
			break
		}
	}

	data, err := h.Renderer.Sitemap(pages)
	if err != nil {
		h.Logger.Error("failed to generate sitemap", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(data)
}

// Robots handles GET /robots.txt.
func (h *Handler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.GenerateRobots(h.Deps.Robots)))
}

func (h *Handler) publishedBySlug(ctx context.Context, slug string) (*model.Page, error) {
	if h.Cache != nil {
		return h.Cache.GetBySlug(ctx, slug)
	}
	return h.Pages.FindPublishedBySlug(ctx, slug)
}

func (h *Handler) listPublished(ctx context.Context, perPage, page int) (service.Paginated[model.Page], error) {
	if h.Cache != nil {
		return h.Cache.ListPublished(ctx, perPage, page)
	}
	return h.Pages.ListPublished(ctx, perPage, page)
}
