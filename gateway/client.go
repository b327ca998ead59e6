// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

// Package gateway is the single chokepoint for admin API calls. It attaches
// auth and tracing headers, refreshes the access token on 401 and replays the
// request once, and reports every unrecovered failure to the operator.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bankchen1/deiex-admin-sub000/config"
	"github.com/bankchen1/deiex-admin-sub000/metrics"
	"github.com/bankchen1/deiex-admin-sub000/mockapi"
	"github.com/bankchen1/deiex-admin-sub000/notify"
	"github.com/bankchen1/deiex-admin-sub000/tokenstore"
	"github.com/rs/zerolog/log"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderRequestTime = "X-Request-Time"

	refreshPath = "/auth/refresh"
	loginPath   = "/auth/login"
	logoutPath  = "/auth/logout"
)

// Client issues admin API calls. Build one with New; the zero value is not
// usable.
type Client struct {
	baseURL   string
	http      *http.Client
	transport http.RoundTripper
	store     tokenstore.Store
	notifier  notify.Notifier
	navigator notify.Navigator
	mock      *mockapi.Service
	debug     bool
	now       func() time.Time

	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithHTTPClient replaces the underlying http.Client. Its transport still gets
// wrapped by the mock interceptor when mock mode is on.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.http = hc
		return nil
	}
}

// WithTransport sets the network transport beneath the interceptors.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		c.transport = rt
		return nil
	}
}

// WithNotifier sets where user-facing error messages go.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) error {
		c.notifier = n
		return nil
	}
}

// WithNavigator sets what happens when the session cannot be recovered.
func WithNavigator(n notify.Navigator) Option {
	return func(c *Client) error {
		c.navigator = n
		return nil
	}
}

// WithMock installs svc ahead of the network transport, whatever the config
// says about mock mode.
func WithMock(svc *mockapi.Service) Option {
	return func(c *Client) error {
		c.mock = svc
		return nil
	}
}

// WithDebugLogging dumps requests and responses at debug level.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = enabled
		return nil
	}
}

// WithClock replaces time.Now for the tracing headers.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		c.now = now
		return nil
	}
}

// New builds a Client from the api and mock sections of cfg. When
// cfg.Mock.Enabled is set and no WithMock option is given, a mock service is
// created, enabled and installed in front of the network.
func New(cfg *config.Config, store tokenstore.Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("token store must not be nil")
	}
	c := &Client{
		baseURL:   strings.TrimSuffix(cfg.API.BaseURL, "/"),
		http:      &http.Client{Timeout: cfg.API.Timeout},
		store:     store,
		notifier:  notify.LogNotifier{},
		navigator: notify.LogNavigator{},
		debug:     cfg.API.Debug,
		now:       time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.mock == nil && cfg.Mock.Enabled {
		mopts := []mockapi.Option{mockapi.WithLatency(cfg.Mock.MinLatency, cfg.Mock.MaxLatency)}
		if cfg.Mock.TokenTTL > 0 {
			mopts = append(mopts, mockapi.WithSessions(mockapi.NewSessions(cfg.Mock.TokenTTL, nil)))
		}
		if cfg.Mock.Seed != 0 {
			mopts = append(mopts, mockapi.WithSeed(cfg.Mock.Seed))
		}
		c.mock = mockapi.New(mopts...)
		c.mock.Enable()
	}

	rt := c.transport
	if rt == nil {
		rt = c.http.Transport
	}
	if rt == nil {
		rt = http.DefaultTransport
	}
	if c.mock != nil {
		rt = c.mock.Transport(rt)
	}
	if c.debug {
		rt = &debugTransport{base: rt}
	}
	hc := *c.http
	hc.Transport = rt
	c.http = &hc
	return c, nil
}

// Mock returns the installed mock service, or nil.
func (c *Client) Mock() *mockapi.Service { return c.mock }

// RequestOption adjusts a single call.
type RequestOption func(*envelope)

// WithQuery adds query parameters.
func WithQuery(q url.Values) RequestOption {
	return func(e *envelope) {
		for k, vs := range q {
			for _, v := range vs {
				e.query.Add(k, v)
			}
		}
	}
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(e *envelope) { e.header.Set(key, value) }
}

// envelope is one logical call. It survives a replay, so the body is kept as
// bytes and retried records whether the 401 replay was already spent.
type envelope struct {
	method  string
	path    string
	query   url.Values
	header  http.Header
	body    []byte
	retried bool
	// token is the access token the latest attempt carried.
	token string
}

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do sends one call and returns the response body. On failure the operator
// has been notified and the returned error is the original *Error, except for
// a 401 that a token refresh recovered, which is invisible to the caller.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	start := time.Now()
	env := &envelope{method: method, path: path, query: url.Values{}, header: http.Header{}}
	for _, opt := range opts {
		opt(env)
	}

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			err = &Error{Kind: KindRequest, Method: method, URL: path, Err: fmt.Errorf("encoding request body: %w", err)}
			c.report(err)
			return nil, err
		}
		env.body = data
	}

	data, err := c.send(ctx, env)
	metrics.GatewayDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	metrics.GatewayRequests.WithLabelValues(method, statusLabel(err)).Inc()
	return data, err
}

func (c *Client) send(ctx context.Context, env *envelope) (json.RawMessage, error) {
	for {
		data, err := c.roundTrip(ctx, env)
		if err == nil {
			return data, nil
		}
		if !IsUnauthorized(err) {
			c.report(err)
			return nil, err
		}

		if env.retried {
			// a fresh token did not help either
			c.expireSession(ctx)
			c.report(err)
			return nil, err
		}
		env.retried = true

		if rerr := c.awaitRefresh(ctx, env.token, err); rerr != nil {
			return nil, fmt.Errorf("%w: %w", rerr, err)
		}
	}
}

// roundTrip performs one attempt: build the request, decorate it, send it.
func (c *Client) roundTrip(ctx context.Context, env *envelope) (json.RawMessage, error) {
	target := c.resolve(env.path, env.query)

	var body io.Reader
	if env.body != nil {
		body = bytes.NewReader(env.body)
	}
	req, err := http.NewRequestWithContext(ctx, env.method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Method: env.method, URL: target, Err: err}
	}
	for k, vs := range env.header {
		req.Header[k] = append([]string(nil), vs...)
	}
	if env.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	token, err := c.store.AccessToken(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("reading access token failed, sending request without it")
		token = ""
	}
	env.token = token
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	c.stamp(req)

	return c.exchange(req)
}

// stamp attaches the tracing headers.
func (c *Client) stamp(req *http.Request) {
	now := c.now()
	req.Header.Set(HeaderRequestID, NewRequestID(now))
	req.Header.Set(HeaderRequestTime, strconv.FormatInt(now.UnixMilli(), 10))
}

func (c *Client) exchange(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: req.Method, URL: req.URL.String(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(req.Method, req.URL.String(), resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}
	if len(query) == 0 {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + query.Encode()
}

// report shows err to the operator.
func (c *Client) report(err error) {
	var kind string
	var e *Error
	if errors.As(err, &e) {
		kind = e.Kind.String()
		log.Warn().Str("method", e.Method).Str("url", e.URL).Int("status", e.StatusCode).Err(e.Err).Msg("API request failed")
	} else {
		kind = "other"
		log.Warn().Err(err).Msg("API request failed")
	}
	metrics.Notifications.WithLabelValues(kind).Inc()
	if c.notifier != nil {
		c.notifier.ReportAPIError(UserMessage(err))
	}
}

// expireSession drops both tokens and sends the operator to the login page.
func (c *Client) expireSession(ctx context.Context) {
	if err := tokenstore.ClearAll(context.WithoutCancel(ctx), c.store); err != nil {
		log.Error().Err(err).Msg("clearing tokens failed")
	}
	if c.navigator != nil {
		c.navigator.RedirectToLogin()
	}
}

func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindHTTP {
			return strconv.Itoa(e.StatusCode)
		}
		return e.Kind.String()
	}
	return "error"
}

// NewRequestID returns "{unix_ms}-{6 random base36 chars}".
func NewRequestID(now time.Time) string {
	const base36x6 = 36 * 36 * 36 * 36 * 36 * 36
	suffix := strconv.FormatInt(rand.Int63n(base36x6), 36)
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + strings.Repeat("0", 6-len(suffix)) + suffix
}

// Decode unmarshals a response body returned by one of the verb methods.
//
//	users, err := gateway.Decode[mockapi.Page[mockapi.User]](c.Get(ctx, "/users"))
func Decode[T any](data json.RawMessage, err error) (T, error) {
	var v T
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decoding response: %w", err)
	}
	return v, nil
}
