// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/olegiv/ocms-pages/internal/model"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 50})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		log       func(*slog.Logger)
		wantCount int
		wantLevel string
	}{
		{"error", func(l *slog.Logger) { l.Error("database connection failed", "host", "localhost") }, 1, model.EventLevelError},
		{"warn", func(l *slog.Logger) { l.Warn("slow query detected", "duration_ms", 5000) }, 1, model.EventLevelWarning},
		{"info", func(l *slog.Logger) { l.Info("server started", "port", 8080) }, 0, ""},
		{"debug", func(l *slog.Logger) { l.Debug("processing request") }, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, cleanup := testutil.TestDB(t)
			defer cleanup()

			tt.log(slog.New(NewEventLogHandler(discardHandler{}, db)))

			events := listEvents(t, db)
			if len(events) != tt.wantCount {
				t.Fatalf("events = %d, want %d", len(events), tt.wantCount)
			}
			if tt.wantCount == 1 && events[0].Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", events[0].Level, tt.wantLevel)
			}
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo))
	logger.Info("server started", "port", 8080)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Level != model.EventLevelInfo {
		t.Errorf("Level = %q, want %q", events[0].Level, model.EventLevelInfo)
	}
}

func TestEventLogHandler_Category(t *testing.T) {
	tests := []struct {
		message string
		attrs   []any
		want    string
	}{
		{"page not found", nil, model.EventCategoryPage},
		{"failed to render content", nil, model.EventCategoryPage},
		{"scheduler job failed", nil, model.EventCategoryScheduler},
		{"redis unreachable", nil, model.EventCategoryCache},
		{"invalid config value", nil, model.EventCategoryConfig},
		{"something odd", nil, model.EventCategorySystem},
		{"page write failed", []any{"category", model.EventCategoryCache}, model.EventCategoryCache},
	}

	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if _, err := db.Exec("DELETE FROM events"); err != nil {
				t.Fatalf("clearing events: %v", err)
			}

			logger.Error(tt.message, tt.attrs...)

			events := listEvents(t, db)
			if len(events) != 1 {
				t.Fatalf("events = %d, want 1", len(events))
			}
			if events[0].Category != tt.want {
				t.Errorf("Category = %q, want %q", events[0].Category, tt.want)
			}
		})
	}
}

func TestEventLogHandler_Metadata(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).With("component", "scheduler")
	logger.Warn("job slow", "category", model.EventCategoryScheduler, "quote", `say "hi"`, "count", 3)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v (%s)", err, events[0].Metadata)
	}
	if meta["component"] != "scheduler" {
		t.Errorf("component = %q, want attribute from With()", meta["component"])
	}
	if meta["quote"] != `say "hi"` {
		t.Errorf("quote = %q", meta["quote"])
	}
	if meta["count"] != "3" {
		t.Errorf("count = %q", meta["count"])
	}
	if _, ok := meta["category"]; ok {
		t.Error("category should not be stored in metadata")
	}
}

func TestEventLogHandler_EmptyMetadata(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	slog.New(NewEventLogHandler(discardHandler{}, db)).Error("bare")

	events := listEvents(t, db)
	if len(events) != 1 || events[0].Metadata != "{}" {
		t.Fatalf("events = %+v, want one event with {} metadata", events)
	}
}

func TestEventLogHandler_UserID(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	user := testutil.CreateTestUser(t, db, "editor@example.com")
	slog.New(NewEventLogHandler(discardHandler{}, db)).Warn("page delete failed", "user_id", user.ID)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if !events[0].UserID.Valid || events[0].UserID.Int64 != user.ID {
		t.Errorf("UserID = %+v, want %d", events[0].UserID, user.ID)
	}
}

func TestEventLogHandler_ForwardsToInner(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	var buf bytes.Buffer
	logger := slog.New(NewEventLogHandler(NewTextHandler(&buf, slog.LevelInfo), db))

	logger.Info("visible info")
	logger.Debug("hidden debug")

	out := buf.String()
	if !strings.Contains(out, "visible info") {
		t.Errorf("inner handler output missing info record: %q", out)
	}
	if strings.Contains(out, "hidden debug") {
		t.Errorf("inner handler should filter debug: %q", out)
	}
	if len(listEvents(t, db)) != 0 {
		t.Error("info records should not be persisted")
	}
}

func TestEventLogHandler_WithGroup(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).WithGroup("req")
	logger.Error("page lookup failed", "slug", "about")

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if !strings.Contains(events[0].Metadata, `"slug":"about"`) {
		t.Errorf("Metadata = %s", events[0].Metadata)
	}
}
