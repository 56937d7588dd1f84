/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "d4events"

var (
	// TrackerTicksTotal counts refresh ticks evaluated by the tracker.
	TrackerTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracker_ticks_total",
		Help:      "Number of tracker refresh ticks evaluated.",
	})

	// TrackerEvaluationSeconds observes how long one tick takes to evaluate.
	TrackerEvaluationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tracker_evaluation_seconds",
		Help:      "Time spent evaluating a single tracker tick.",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
	})

	// TrackerTransitionsTotal counts status label changes per card.
	TrackerTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracker_transitions_total",
		Help:      "Status transitions observed between ticks.",
	}, []string{"card", "status"})

	// EventsDroppedTotal counts events missed by slow bus subscribers.
	EventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Events dropped because a subscriber buffer was full.",
	}, []string{"type"})

	// InjectionsTotal counts splice results by outcome.
	InjectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "injections_total",
		Help:      "Page injections by block and result.",
	}, []string{"block", "result"})

	// PreviewReloadClients tracks open live-reload websocket connections.
	PreviewReloadClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "preview_reload_clients",
		Help:      "Open live-reload websocket connections.",
	})

	// PreviewReloadsTotal counts reload broadcasts.
	PreviewReloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "preview_reloads_total",
		Help:      "Reload notifications broadcast to preview clients.",
	})

	// APIRequestDuration observes HTTP request latency of the preview server.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIRequestsTotal counts HTTP requests of the preview server.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections tracks in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_active_requests",
		Help:      "In-flight HTTP requests.",
	})
)

// Handler exposes metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
