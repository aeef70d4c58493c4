// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API of the page CMS: the admin surface for
// managing pages and the public surface serving rendered pages, the
// sitemap and robots.txt.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-pages/internal/cache"
	"github.com/olegiv/ocms-pages/internal/render"
	"github.com/olegiv/ocms-pages/internal/scheduler"
	"github.com/olegiv/ocms-pages/internal/seo"
	"github.com/olegiv/ocms-pages/internal/service"
	"github.com/olegiv/ocms-pages/internal/version"
)

// maxBodySize limits JSON request bodies.
const maxBodySize = 1 << 20

// Default page sizes.
const (
	DefaultAdminPerPage  = service.DefaultPerPage
	DefaultPublicPerPage = 12
)

// JobLister reports the registered background jobs.
type JobLister interface {
	Jobs() []scheduler.JobInfo
}

// Deps holds the dependencies of the API handlers. Cache and Scheduler
// are optional.
type Deps struct {
	DB            *sql.DB
	Pages         *service.PageService
	Events        *service.EventService
	Cache         *cache.PageCache
	CacheBackend  string
	Renderer      *render.Renderer
	Scheduler     JobLister
	Site          seo.SiteConfig
	Robots        seo.RobotsConfig
	Version       version.Info
	AdminPerPage  int
	PublicPerPage int
	Logger        *slog.Logger
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	Deps
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	if d.AdminPerPage <= 0 {
		d.AdminPerPage = DefaultAdminPerPage
	}
	if d.PublicPerPage <= 0 {
		d.PublicPerPage = DefaultPublicPerPage
	}
	if d.Renderer == nil {
		d.Renderer = render.New(d.Site)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Robots.SiteURL == "" {
		d.Robots.SiteURL = d.Site.SiteURL
	}
	return &Handler{Deps: d}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"per_page"`
	Pages      int                 `json:"pages"`
	Statistics *service.Statistics `json:"statistics,omitempty"`
}

// paginationMeta converts a service page to response metadata.
func paginationMeta[T any](p service.Paginated[T]) *Meta {
	return &Meta{
		Total:   p.Total,
		Page:    p.CurrentPage,
		PerPage: p.PerPage,
		Pages:   p.LastPage,
	}
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusConflict, "conflict", message, details)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps a service error to its HTTP response. Unexpected
// errors are logged and hidden from the client.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *service.ValidationError
	var cerr *service.ConflictError

	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.As(err, &cerr):
		WriteConflict(w, capitalizeFirst(cerr.Field)+" already taken", map[string]string{cerr.Field: "is already taken"})
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, "Page not found")
	default:
		h.Logger.Error("failed to "+action, "error", err, "path", r.URL.Path)
		WriteInternalError(w, "Failed to "+action)
	}
}

// decodeJSON reads a JSON body into dst. An empty body is accepted when
// allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF) && allowEmpty:
		return true
	case errors.Is(err, io.EOF):
		WriteBadRequest(w, "Request body is required", nil)
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Request body too large", nil)
			return false
		}
		WriteBadRequest(w, "Invalid JSON body", nil)
	}
	return false
}

// parseIDParam parses the {id} URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// requireID parses the {id} URL parameter or writes a 400 response.
func requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID", nil)
		return 0, false
	}
	return id, true
}

// queryInt returns the positive integer query parameter key, or 0 when it
// is missing or malformed.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
