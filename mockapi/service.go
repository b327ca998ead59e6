// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

// Package mockapi synthesizes admin API responses from in-memory fixtures so
// the console can run without a live backend. It plugs in either as an
// http.RoundTripper in front of the network or as a gin handler.
package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bankchen1/deiex-admin-sub000/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Service owns the fixtures, the route table and the on/off switch.
type Service struct {
	enabled atomic.Bool

	fixtures *Fixtures
	sessions *Sessions
	router   *Router
	builtAt  time.Time

	minDelay time.Duration
	maxDelay time.Duration
	sleep    func(ctx context.Context, d time.Duration) error

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithSeed fixes the fixture generator and latency jitter.
func WithSeed(seed int64) Option {
	return func(s *Service) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithLatency sets the artificial delay range [min, max).
func WithLatency(min, max time.Duration) Option {
	return func(s *Service) { s.minDelay, s.maxDelay = min, max }
}

// WithSleep replaces the function used to wait out the delay.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) { s.sleep = sleep }
}

// WithSessions shares a session registry, e.g. with the dev server middleware.
func WithSessions(sessions *Sessions) Option {
	return func(s *Service) { s.sessions = sessions }
}

// New builds the fixtures and the route table. The service starts disabled.
func New(opts ...Option) *Service {
	s := &Service{
		minDelay: 200 * time.Millisecond,
		maxDelay: 700 * time.Millisecond,
		sleep:    sleepContext,
		builtAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.sessions == nil {
		s.sessions = NewSessions(2*time.Hour, nil)
	}
	s.fixtures = NewFixtures(s.rng.Int63(), s.builtAt)

	// Most specific domains first: "/users" also occurs in "/admin/users/stats"
	// and "/users/{id}/orders", so the users route goes last.
	s.router = NewRouter(
		Route{Name: "auth", Match: contains("/auth/"), Respond: s.authResponder},
		Route{Name: "dashboard", Match: isStatsPath, Respond: s.dashboardResponder},
		Route{Name: "orders", Match: contains("/orders", "/positions", "/trades"), Respond: s.ordersResponder},
		Route{Name: "config", Match: contains("/config/"), Respond: s.configResponder},
		Route{Name: "ops", Match: contains("/ops/"), Respond: s.opsResponder},
		Route{Name: "assets", Match: contains("/assets/"), Respond: s.assetsResponder},
		Route{Name: "kyc", Match: contains("/kyc"), Respond: s.kycResponder},
		Route{Name: "users", Match: contains("/users"), Respond: s.usersResponder},
	)
	return s
}

func (s *Service) Enable() {
	s.enabled.Store(true)
	log.Info().Msg("mock API enabled, requests are answered from fixtures")
}

func (s *Service) Disable() {
	s.enabled.Store(false)
	log.Info().Msg("mock API disabled, requests go to the network")
}

func (s *Service) IsEnabled() bool { return s.enabled.Load() }

// Fixtures exposes the generated data set. Callers must not modify it.
func (s *Service) Fixtures() *Fixtures { return s.fixtures }

// Sessions returns the token registry fed by the auth responder.
func (s *Service) Sessions() *Sessions { return s.sessions }

// Routes lists route names in evaluation order.
func (s *Service) Routes() []string { return s.router.Names() }

// Dispatch answers req from the route table without any delay.
func (s *Service) Dispatch(req *Request) *Response {
	resp, route := s.router.Dispatch(req)
	metrics.MockResponses.WithLabelValues(route).Inc()
	return resp
}

func (s *Service) delay() time.Duration {
	if s.maxDelay <= s.minDelay {
		return s.minDelay
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minDelay + time.Duration(s.rng.Int63n(int64(s.maxDelay-s.minDelay)))
}

func (s *Service) wait(ctx context.Context) error {
	d := s.delay()
	metrics.MockLatency.Observe(d.Seconds())
	return s.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Transport installs the interceptor in front of next. While the service is
// enabled no request reaches next.
func (s *Service) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &interceptor{svc: s, next: next}
}

type interceptor struct {
	svc  *Service
	next http.RoundTripper
}

func (t *interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.svc.IsEnabled() {
		return t.next.RoundTrip(req)
	}

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading mock request body: %w", err)
		}
	}

	if err := t.svc.wait(req.Context()); err != nil {
		return nil, err
	}

	resp := t.svc.Dispatch(&Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Header: req.Header,
		Body:   body,
	})

	data, err := json.Marshal(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("encoding mock response: %w", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json; charset=utf-8")
	header.Set("Content-Length", strconv.Itoa(len(data)))
	header.Set("X-Mock", "true")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.Status, http.StatusText(resp.Status)),
		StatusCode:    resp.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
		Request:       req,
	}, nil
}

// Handler serves the route table over HTTP with the same latency emulation.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
			return
		}
		if err := s.wait(c.Request.Context()); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Request canceled"})
			return
		}
		resp := s.Dispatch(&Request{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.Query(),
			Header: c.Request.Header,
			Body:   body,
		})
		c.Header("X-Mock", "true")
		c.JSON(resp.Status, resp.Body)
	}
}
