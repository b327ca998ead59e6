// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminapi_gateway_requests_total",
		Help: "Total number of API requests issued through the gateway",
	}, []string{"method", "status"})

	GatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adminapi_gateway_request_duration_seconds",
		Help:    "Round-trip time of gateway requests, replays included",
		Buckets: prometheus.ExponentialBuckets(0.01, 2.0, 12), // 10ms to ~20s
	}, []string{"method"})

	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminapi_token_refreshes_total",
		Help: "Token refresh attempts by outcome",
	}, []string{"outcome"})

	QueuedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adminapi_refresh_queued_requests_total",
		Help: "Requests that waited for an in-flight token refresh",
	})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminapi_error_notifications_total",
		Help: "User-facing error notifications by kind",
	}, []string{"kind"})

	MockResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adminapi_mock_responses_total",
		Help: "Responses synthesized by the mock layer, by route",
	}, []string{"route"})

	MockLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adminapi_mock_latency_seconds",
		Help:    "Artificial latency applied to mock responses",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 8),
	})
)
