// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-pages/internal/seo"
	"github.com/olegiv/ocms-pages/internal/service"
	"github.com/olegiv/ocms-pages/internal/testutil"
)

// testEnv bundles a router over a fresh database.
type testEnv struct {
	db      *sql.DB
	pages   *service.PageService
	handler *Handler
	router  chi.Router
	actorID int64
}

// testSetup creates a test database, the API handler and its router.
func testSetup(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	user := testutil.CreateTestUser(t, db, "admin@example.com")
	logger := testutil.TestLoggerSilent()
	events := service.NewEventService(db)
	pages := service.NewPageService(db, logger, service.WithEventRecorder(events))

	h := NewHandler(Deps{
		DB:     db,
		Pages:  pages,
		Events: events,
		Site:   seo.SiteConfig{SiteName: "Test Site", SiteURL: "https://example.com"},
		Logger: logger,
	})

	return &testEnv{
		db:      db,
		pages:   pages,
		handler: h,
		router:  NewRouter(h, RouterConfig{PublicMaxAge: 60}),
		actorID: user.ID,
	}
}

// do sends a request through the router. asActor sets the actor header.
func (e *testEnv) do(t *testing.T, method, path, body string, asActor bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if asActor {
		req.Header.Set("X-Actor-ID", strconv.FormatInt(e.actorID, 10))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// admin sends an authenticated admin request.
func (e *testEnv) admin(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, path, body, true)
}

// createPage creates a page through the API and returns it.
func (e *testEnv) createPage(t *testing.T, body string) pageJSON {
	t.Helper()
	w := e.admin(t, http.MethodPost, "/api/v1/admin/pages", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create page: status %d: %s", w.Code, w.Body.String())
	}
	return unmarshalData[pageJSON](t, w)
}

// pageJSON mirrors the admin page representation.
type pageJSON struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Status      string `json:"status"`
	Template    string `json:"template"`
	PublishedAt string `json:"published_at"`
	CreatedBy   *int64 `json:"created_by"`
	Contents    []struct {
		Priority int      `json:"priority"`
		Text     string   `json:"text"`
		Images   []string `json:"images"`
	} `json:"contents"`
}

// dataResponse is a generic wrapper for API responses with a "data" field.
type dataResponse[T any] struct {
	Data T `json:"data"`
}

// listResponse is a generic wrapper for API list responses with data and meta.
type listResponse[T any] struct {
	Data []T   `json:"data"`
	Meta *Meta `json:"meta"`
}

// unmarshalData unmarshals a JSON response body into the specified type.
func unmarshalData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp dataResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data
}

// unmarshalList unmarshals a JSON list response body into the specified type.
func unmarshalList[T any](t *testing.T, w *httptest.ResponseRecorder) ([]T, *Meta) {
	t.Helper()
	var resp listResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data, resp.Meta
}

// assertErrorResponse unmarshals and validates an error response.
func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error.Code != expectedCode {
		t.Errorf("expected code '%s', got %s", expectedCode, resp.Error.Code)
	}
	return resp
}
