// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus metrics for HTTP traffic, the page
// cache and the scheduler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/ocms-pages/internal/cache"
)

// Namespace prefixes every metric name.
const Namespace = "ocms"

// unmatchedRoute labels requests that hit no route, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

// CacheStatsSource reports backend statistics. Implemented by
// cache.PageCache.
type CacheStatsSource interface {
	Stats() (cache.Stats, bool)
}

// Metrics owns a private registry and the collectors registered on it.
type Metrics struct {
	registry      *prometheus.Registry
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	pagesWentLive prometheus.Counter
	eventsPurged  prometheus.Counter
}

// New creates the collectors, including the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		pagesWentLive: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "scheduler_pages_went_live_total",
			Help:      "Pages whose scheduled publication time was reached.",
		}),
		eventsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "scheduler_events_purged_total",
			Help:      "Event log entries removed by retention.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.pagesWentLive,
		m.eventsPurged,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records count and latency per route pattern. It must run
// inside a chi router so the pattern is known once the handler returns.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RegisterCache exposes hit and miss counters of src.
func (m *Metrics) RegisterCache(src CacheStatsSource) error {
	stat := func(pick func(cache.Stats) int64) func() float64 {
		return func() float64 {
			st, ok := src.Stats()
			if !ok {
				return 0
			}
			return float64(pick(st))
		}
	}

	hits := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_hits_total",
		Help:      "Cache lookups served from the backend.",
	}, stat(func(s cache.Stats) int64 { return s.Hits }))
	misses := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_misses_total",
		Help:      "Cache lookups that went to the database.",
	}, stat(func(s cache.Stats) int64 { return s.Misses }))

	if err := m.registry.Register(hits); err != nil {
		return err
	}
	return m.registry.Register(misses)
}

// PagesWentLive adds n to the go-live counter.
func (m *Metrics) PagesWentLive(n int) {
	m.pagesWentLive.Add(float64(n))
}

// EventsPurged adds n to the purge counter.
func (m *Metrics) EventsPurged(n int64) {
	m.eventsPurged.Add(float64(n))
}
