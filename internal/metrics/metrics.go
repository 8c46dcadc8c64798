// Package metrics declares the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rain_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rain_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	TicketsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rain_tickets_created_total",
		Help: "Tickets created, labelled by the duplicate match type (none when clean)",
	}, []string{"match_type"})

	Promotions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rain_promotions_total",
		Help: "Promote attempts by outcome",
	}, []string{"result"})
)

// Promotion outcomes.
const (
	PromoteOK         = "ok"
	PromoteNotFound   = "not_found"
	PromoteInvalid    = "invalid"
	PromoteIncomplete = "incomplete"
	PromoteError      = "error"
)
