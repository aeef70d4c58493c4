// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/scheduler"
	"github.com/olegiv/ocms-pages/internal/service"
)

var eventLevels = map[string]bool{
	model.EventLevelInfo:    true,
	model.EventLevelWarning: true,
	model.EventLevelError:   true,
}

// ListEvents handles GET /api/v1/admin/events.
// Filters: category, level, page, per_page.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := service.EventFilters{
		Category: q.Get("category"),
		Level:    q.Get("level"),
		Page:     queryInt(r, "page"),
		PerPage:  queryInt(r, "per_page"),
	}
	if filters.Level != "" && !eventLevels[filters.Level] {
		WriteValidationError(w, map[string]string{"level": "must be one of info, warning, error"})
		return
	}

	result, err := h.Events.ListEvents(r.Context(), filters)
	if err != nil {
		h.writeServiceError(w, r, err, "list events")
		return
	}
	WriteSuccess(w, result.Items, paginationMeta(result))
}

// ListJobs handles GET /api/v1/admin/scheduler/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	jobs := []scheduler.JobInfo{}
	if h.Scheduler != nil {
		jobs = h.Scheduler.Jobs()
	}
	WriteSuccess(w, jobs, nil)
}
