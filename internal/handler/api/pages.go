// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/ocms-pages/internal/middleware"
	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/service"
)

// dashboardRecent is the number of recent pages on the dashboard.
const dashboardRecent = 5

// ContentBlockRequest is a content block in page requests.
type ContentBlockRequest struct {
	Priority int      `json:"priority" validate:"gte=0"`
	Text     string   `json:"text"`
	Images   []string `json:"images" validate:"max=50,dive,required,max=2048"`
}

// MetaDataRequest holds the SEO overrides of a page request.
type MetaDataRequest struct {
	Title       string `json:"title" validate:"max=255"`
	Description string `json:"description" validate:"max=500"`
	Keywords    string `json:"keywords" validate:"max=255"`
}

// CreatePageRequest represents the request body for creating a page.
type CreatePageRequest struct {
	Title       string                `json:"title" validate:"required,max=255"`
	Slug        string                `json:"slug" validate:"omitempty,max=255,slug"`
	Excerpt     string                `json:"excerpt" validate:"max=1000"`
	Content     string                `json:"content" validate:"required"`
	Status      string                `json:"status" validate:"omitempty,oneof=draft published archived"`
	Template    string                `json:"template" validate:"omitempty,oneof=default landing blog portfolio contact"`
	SortOrder   int                   `json:"sort_order" validate:"gte=0"`
	PublishedAt *time.Time            `json:"published_at"`
	MetaData    MetaDataRequest       `json:"meta_data"`
	Contents    []ContentBlockRequest `json:"contents" validate:"dive"`
}

// UpdatePageRequest represents the request body for updating a page.
// Omitted fields keep their value; a present contents array replaces
// every block.
type UpdatePageRequest struct {
	Title            *string                `json:"title" validate:"omitempty,min=1,max=255"`
	Slug             *string                `json:"slug" validate:"omitempty,max=255,slug"`
	Excerpt          *string                `json:"excerpt" validate:"omitempty,max=1000"`
	Content          *string                `json:"content" validate:"omitempty,min=1"`
	Status           *string                `json:"status" validate:"omitempty,oneof=draft published archived"`
	Template         *string                `json:"template" validate:"omitempty,oneof=default landing blog portfolio contact"`
	SortOrder        *int                   `json:"sort_order" validate:"omitempty,gte=0"`
	PublishedAt      *time.Time             `json:"published_at"`
	ClearPublishedAt bool                   `json:"clear_published_at"`
	MetaData         *MetaDataRequest       `json:"meta_data"`
	Contents         *[]ContentBlockRequest `json:"contents" validate:"omitempty,dive"`
}

// PublishRequest is the optional body of the publish endpoint.
type PublishRequest struct {
	PublishedAt *time.Time `json:"published_at"`
}

// BulkRequest represents the request body of the bulk endpoint.
type BulkRequest struct {
	Action string  `json:"action" validate:"required,oneof=delete publish unpublish archive"`
	IDs    []int64 `json:"ids" validate:"required,min=1,max=500,dive,gt=0"`
}

// BulkResponse reports the outcome of a bulk action.
type BulkResponse struct {
	Action   string `json:"action"`
	Affected int64  `json:"affected"`
}

// OptionItem is a selectable value with its label.
type OptionItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionsResponse lists the templates and statuses a page may use.
type OptionsResponse struct {
	Templates []OptionItem `json:"templates"`
	Statuses  []OptionItem `json:"statuses"`
}

// DashboardResponse holds the admin dashboard data.
type DashboardResponse struct {
	Statistics  service.Statistics `json:"statistics"`
	RecentPages []model.Page       `json:"recent_pages"`
}

func toBlocks(reqs []ContentBlockRequest) []model.ContentBlock {
	blocks := make([]model.ContentBlock, 0, len(reqs))
	for _, b := range reqs {
		blocks = append(blocks, model.ContentBlock{
			Priority: b.Priority,
			Text:     b.Text,
			Images:   b.Images,
		})
	}
	return blocks
}

func (m MetaDataRequest) toModel() model.MetaData {
	return model.MetaData{Title: m.Title, Description: m.Description, Keywords: m.Keywords}
}

func (req CreatePageRequest) toInput() service.PageInput {
	return service.PageInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		Status:      model.PageStatus(req.Status),
		Template:    model.Template(req.Template),
		SortOrder:   req.SortOrder,
		PublishedAt: req.PublishedAt,
		MetaData:    req.MetaData.toModel(),
		Contents:    toBlocks(req.Contents),
	}
}

func (req UpdatePageRequest) toUpdate() service.PageUpdate {
	upd := service.PageUpdate{
		Title:            req.Title,
		Slug:             req.Slug,
		Excerpt:          req.Excerpt,
		Content:          req.Content,
		SortOrder:        req.SortOrder,
		PublishedAt:      req.PublishedAt,
		ClearPublishedAt: req.ClearPublishedAt,
	}
	if req.Status != nil {
		st := model.PageStatus(*req.Status)
		upd.Status = &st
	}
	if req.Template != nil {
		tpl := model.Template(*req.Template)
		upd.Template = &tpl
	}
	if req.MetaData != nil {
		md := req.MetaData.toModel()
		upd.MetaData = &md
	}
	if req.Contents != nil {
		upd.Contents = toBlocks(*req.Contents)
	}
	return upd
}

// ListPages handles GET /api/v1/admin/pages.
// Filters: status, template, search (or q), page, per_page.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := service.PageFilters{
		Status:   model.PageStatus(q.Get("status")),
		Template: model.Template(q.Get("template")),
		Search:   q.Get("search"),
		Page:     queryInt(r, "page"),
		PerPage:  queryInt(r, "per_page"),
	}
	if filters.Search == "" {
		filters.Search = q.Get("q")
	}
	if filters.PerPage == 0 {
		filters.PerPage = h.AdminPerPage
	}

	fieldErrs := map[string]string{}
	if filters.Status != "" && !filters.Status.Valid() {
		fieldErrs["status"] = "is not a valid status"
	}
	if filters.Template != "" && !filters.Template.Valid() {
		fieldErrs["template"] = "is not a valid template"
	}
	if len(fieldErrs) > 0 {
		WriteValidationError(w, fieldErrs)
		return
	}

	result, err := h.Pages.ListAll(r.Context(), filters)
	if err != nil {
		h.writeServiceError(w, r, err, "list pages")
		return
	}

	stats, err := h.Pages.Statistics(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "count pages")
		return
	}

	meta := paginationMeta(result)
	meta.Statistics = &stats
	WriteSuccess(w, result.Items, meta)
}

// GetPage handles GET /api/v1/admin/pages/{id}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	page, err := h.Pages.FindByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "retrieve page")
		return
	}
	WriteSuccess(w, page, nil)
}

// CreatePage handles POST /api/v1/admin/pages.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := validateRequest(req); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	page, err := h.Pages.Create(r.Context(), req.toInput(), middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err, "create page")
		return
	}
	WriteCreated(w, page)
}

// UpdatePage handles PUT /api/v1/admin/pages/{id}.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	var req UpdatePageRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := validateRequest(req); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	page, err := h.Pages.Update(r.Context(), id, req.toUpdate(), middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err, "update page")
		return
	}
	WriteSuccess(w, page, nil)
}

// DeletePage handles DELETE /api/v1/admin/pages/{id}.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	if err := h.Pages.Delete(r.Context(), id, middleware.GetActor(r)); err != nil {
		h.writeServiceError(w, r, err, "delete page")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublishPage handles POST /api/v1/admin/pages/{id}/publish. The body may
// carry a publication time; it defaults to now.
func (h *Handler) PublishPage(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	var req PublishRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	page, err := h.Pages.Publish(r.Context(), id, req.PublishedAt, middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err, "publish page")
		return
	}
	WriteSuccess(w, page, nil)
}

// UnpublishPage handles POST /api/v1/admin/pages/{id}/unpublish.
func (h *Handler) UnpublishPage(w http.ResponseWriter, r *http.Request) {
	h.pageAction(w, r, "unpublish page", h.Pages.Unpublish)
}

// ArchivePage handles POST /api/v1/admin/pages/{id}/archive.
func (h *Handler) ArchivePage(w http.ResponseWriter, r *http.Request) {
	h.pageAction(w, r, "archive page", h.Pages.Archive)
}

// DuplicatePage handles POST /api/v1/admin/pages/{id}/duplicate.
func (h *Handler) DuplicatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	page, err := h.Pages.Duplicate(r.Context(), id, middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err, "duplicate page")
		return
	}
	WriteCreated(w, page)
}

// pageAction runs a lifecycle transition on the page of the {id} parameter.
func (h *Handler) pageAction(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, int64, *service.Actor) (*model.Page, error)) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	page, err := fn(r.Context(), id, middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err, action)
		return
	}
	WriteSuccess(w, page, nil)
}

// BulkPages handles POST /api/v1/admin/pages/bulk.
func (h *Handler) BulkPages(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if errs := validateRequest(req); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	n, err := h.Pages.BulkAction(r.Context(), service.BulkAction(req.Action), req.IDs, middleware.GetActor(r))
	if err != nil {
		h.writeServiceError(w, r, err, "run bulk action")
		return
	}
	WriteSuccess(w, BulkResponse{Action: req.Action, Affected: n}, nil)
}

// PageOptions handles GET /api/v1/admin/pages/options.
func (h *Handler) PageOptions(w http.ResponseWriter, _ *http.Request) {
	resp := OptionsResponse{
		Templates: make([]OptionItem, 0, len(model.Templates)),
		Statuses:  make([]OptionItem, 0, len(model.PageStatuses)),
	}
	for _, t := range model.Templates {
		resp.Templates = append(resp.Templates, OptionItem{Value: string(t), Label: t.Label()})
	}
	for _, s := range model.PageStatuses {
		resp.Statuses = append(resp.Statuses, OptionItem{Value: string(s), Label: s.Label()})
	}
	WriteSuccess(w, resp, nil)
}

// Dashboard handles GET /api/v1/admin/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Pages.Statistics(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "count pages")
		return
	}

	recent, err := h.Pages.RecentPages(r.Context(), dashboardRecent)
	if err != nil {
		h.writeServiceError(w, r, err, "list recent pages")
		return
	}
	if recent == nil {
		recent = []model.Page{}
	}

	WriteSuccess(w, DashboardResponse{Statistics: stats, RecentPages: recent}, nil)
}
