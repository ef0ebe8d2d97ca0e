// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus metrics exposed by skycast.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// upstreamRequests counts calls to third-party APIs by host and status code. Transport
// failures use the code "error".
var upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skycast_upstream_requests_total",
	Help: "Total number of upstream API requests by host and code.",
}, []string{"host", "code"})

var upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "skycast_upstream_request_duration_seconds",
	Help:    "Duration of upstream API requests by host.",
	Buckets: prometheus.DefBuckets,
}, []string{"host"})

// searches counts dashboard lookups by outcome (ok, not_found, fetch_failed, stale).
var searches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skycast_searches_total",
	Help: "Total number of weather searches by outcome.",
}, []string{"outcome"})

var advisories = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skycast_advisories_total",
	Help: "Total number of advisory generations by outcome.",
}, []string{"outcome"})

// ObserveUpstream records a finished upstream request.
func ObserveUpstream(host, code string, took time.Duration) {
	upstreamRequests.WithLabelValues(host, code).Inc()
	upstreamDuration.WithLabelValues(host).Observe(took.Seconds())
}

// ObserveSearch records the outcome of a dashboard search.
func ObserveSearch(outcome string) {
	searches.WithLabelValues(outcome).Inc()
}

// ObserveAdvisory records the outcome of an advisory generation.
func ObserveAdvisory(outcome string) {
	advisories.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
