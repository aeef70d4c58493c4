// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/olegiv/ocms-pages/internal/service"
	"github.com/olegiv/ocms-pages/internal/store"
)

// ActorHeader carries the ID of the user an authenticating proxy has
// verified.
const ActorHeader = "X-Actor-ID"

// ContextKeyActor is the context key for the acting user.
const ContextKeyActor ContextKey = "actor"

// Actor resolves the acting user from ActorHeader. Requests without the
// header pass through anonymously. A malformed header or an unknown user
// is rejected.
func Actor(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(ActorHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				WriteAPIError(w, http.StatusBadRequest, "bad_request", "Invalid "+ActorHeader+" header", nil)
				return
			}

			user, err := queries.GetUserByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Unknown actor", nil)
				} else {
					slog.Error("failed to resolve actor", "user_id", id, "error", err)
					WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to resolve actor", nil)
				}
				return
			}

			ctx := WithActor(r.Context(), service.ActorFromID(user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects requests that have no resolved actor.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetActor(r) == nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", ActorHeader+" header required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor *service.Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// GetActor returns the acting user of r, or nil.
func GetActor(r *http.Request) *service.Actor {
	actor, _ := r.Context().Value(ContextKeyActor).(*service.Actor)
	return actor
}
