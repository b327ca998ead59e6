// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(opts ...Option) *Service {
	return New(append([]Option{WithSeed(42), WithLatency(0, 0)}, opts...)...)
}

// decodeBody marshals resp.Body the way the interceptor does and decodes it into v.
func decodeBody(t *testing.T, resp *Response, v any) {
	t.Helper()
	data, err := json.Marshal(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestRouteOrder(t *testing.T) {
	s := newTestService()
	assert.Equal(t, []string{"auth", "dashboard", "orders", "config", "ops", "assets", "kyc", "users"}, s.Routes())
}

func TestFixturesAreDeterministic(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewFixtures(9, now)
	b := NewFixtures(9, now)
	assert.Equal(t, a, b)

	assert.Len(t, a.Users, 120)
	assert.Len(t, a.KYC, 45)
	assert.Len(t, a.Orders, 150)
	assert.Len(t, a.Trades, 200)
	assert.Equal(t, "U100001", a.Users[0].ID)
}

func TestUserStatsPrecedeUsers(t *testing.T) {
	s := newTestService()

	for _, path := range []string{"/admin/users/stats", "/api/admin/users/stats/"} {
		resp := s.Dispatch(get(path, nil))
		var stats UserStats
		decodeBody(t, resp, &stats)
		assert.Equal(t, 120, stats.Total, path)
		assert.Equal(t, stats.Total, stats.Active+stats.Disabled+stats.Suspended, path)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestService()

	var counts map[string]int
	decodeBody(t, s.Dispatch(get("/api/orders/stats", nil)), &counts)
	assert.Equal(t, 150, counts["total"])

	var overview Overview
	decodeBody(t, s.Dispatch(get("/api/dashboard/overview", nil)), &overview)
	assert.Equal(t, 120, overview.Users.Total)
	assert.Equal(t, 60, overview.OpenPositions)

	var trends Items[TrendPoint]
	decodeBody(t, s.Dispatch(get("/api/dashboard/trends", nil)), &trends)
	require.Len(t, trends.Items, 30)
	assert.Less(t, trends.Items[0].Date, trends.Items[29].Date)
}

func TestUsers(t *testing.T) {
	s := newTestService()
	users := s.Fixtures().Users

	t.Run("List", func(t *testing.T) {
		var page Page[User]
		decodeBody(t, s.Dispatch(get("/api/users", url.Values{"pageSize": {"20"}})), &page)
		assert.Equal(t, 120, page.Total)
		assert.Len(t, page.Data, 20)
		assert.Equal(t, users[0].ID, page.Data[0].ID)
	})

	t.Run("FilterByStatus", func(t *testing.T) {
		var page Page[User]
		decodeBody(t, s.Dispatch(get("/api/users", url.Values{"status": {"active"}, "pageSize": {"200"}})), &page)
		require.NotEmpty(t, page.Data)
		for _, u := range page.Data {
			assert.Equal(t, "active", u.Status)
		}
		assert.Equal(t, page.Total, len(page.Data))
	})

	t.Run("Detail", func(t *testing.T) {
		var got struct {
			Success bool `json:"success"`
			Data    User `json:"data"`
		}
		decodeBody(t, s.Dispatch(get("/api/users/"+users[7].ID, nil)), &got)
		assert.True(t, got.Success)
		assert.Equal(t, users[7].ID, got.Data.ID)
	})

	t.Run("DetailFallsBackToFirst", func(t *testing.T) {
		var got struct {
			Data User `json:"data"`
		}
		decodeBody(t, s.Dispatch(get("/api/users/does-not-exist", nil)), &got)
		assert.Equal(t, users[0].ID, got.Data.ID)
	})

	t.Run("Balances", func(t *testing.T) {
		var first, second struct {
			Data []Balance `json:"data"`
		}
		decodeBody(t, s.Dispatch(get("/api/users/U100003/balances", nil)), &first)
		decodeBody(t, s.Dispatch(get("/api/users/U100003/balances", nil)), &second)
		assert.Len(t, first.Data, len(currencies))
		assert.Equal(t, first, second)
	})

	t.Run("MutationEchoesBody", func(t *testing.T) {
		req := &Request{Method: http.MethodPut, Path: "/api/users/U100001/status", Query: url.Values{}, Body: json.RawMessage(`{"status":"frozen"}`)}
		data, err := json.Marshal(s.Dispatch(req).Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"message":"User status updated","data":{"status":"frozen"}}`, string(data))
		assert.NotEqual(t, "frozen", users[0].Status)
	})
}

func TestOrdersScopedToUser(t *testing.T) {
	s := newTestService()
	owner := s.Fixtures().Orders[0].UserID

	var page Page[Order]
	decodeBody(t, s.Dispatch(get("/api/users/"+owner+"/orders", url.Values{"pageSize": {"200"}})), &page)
	require.NotEmpty(t, page.Data)
	for _, o := range page.Data {
		assert.Equal(t, owner, o.UserID)
	}

	var trades Page[Trade]
	decodeBody(t, s.Dispatch(get("/api/trades", url.Values{"userId": {owner}, "pageSize": {"500"}})), &trades)
	for _, tr := range trades.Data {
		assert.Equal(t, owner, tr.UserID)
	}

	cancel := s.Dispatch(&Request{Method: http.MethodPost, Path: "/api/orders/abc/cancel", Query: url.Values{}})
	var res struct {
		Message string `json:"message"`
	}
	decodeBody(t, cancel, &res)
	assert.Equal(t, "Order canceled", res.Message)
}

func TestConfigEnvelopes(t *testing.T) {
	s := newTestService()

	for _, path := range []string{"/api/config/fees", "/api/config/margin", "/api/config/risk-rules"} {
		var raw map[string]json.RawMessage
		decodeBody(t, s.Dispatch(get(path, nil)), &raw)
		assert.Contains(t, raw, "items", path)
		assert.Contains(t, raw, "total", path)
		assert.NotContains(t, raw, "page", path)
	}

	var pairs Page[TradingPair]
	decodeBody(t, s.Dispatch(get("/api/config/trading-pairs", nil)), &pairs)
	assert.Equal(t, len(s.Fixtures().TradingPairs), pairs.Total)
	assert.Equal(t, 1, pairs.Page)
}

func TestListEndpoints(t *testing.T) {
	s := newTestService()
	f := s.Fixtures()

	tests := []struct {
		path  string
		total int
	}{
		{"/api/kyc/applications", len(f.KYC)},
		{"/api/assets/deposits", len(f.Deposits)},
		{"/api/assets/withdrawals", len(f.Withdrawals)},
		{"/api/assets/wallets", len(f.Wallets)},
		{"/api/positions", len(f.Positions)},
		{"/api/ops/audit-logs", len(f.AuditLogs)},
		{"/api/ops/announcements", len(f.Announcements)},
		{"/api/ops/reports", len(f.Reports)},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var page Page[json.RawMessage]
			decodeBody(t, s.Dispatch(get(tt.path, nil)), &page)
			assert.Equal(t, tt.total, page.Total)
			assert.Len(t, page.Data, min(10, tt.total))
		})
	}
}

func TestAuthResponder(t *testing.T) {
	s := newTestService()

	login := s.Dispatch(&Request{Method: http.MethodPost, Path: "/api/auth/login", Query: url.Values{}, Body: json.RawMessage(`{"username":"ops.lee","password":"x"}`)})
	var got struct {
		Data loginResult `json:"data"`
	}
	decodeBody(t, login, &got)
	assert.Equal(t, "ops.lee", got.Data.User.Username)
	require.NotEmpty(t, got.Data.AccessToken)

	ok, err := s.Sessions().ValidateToken(got.Data.AccessToken)
	require.NoError(t, err)
	assert.True(t, ok)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+got.Data.AccessToken)
	s.Dispatch(&Request{Method: http.MethodPost, Path: "/api/auth/logout", Query: url.Values{}, Header: header})

	ok, err = s.Sessions().ValidateToken(got.Data.AccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionsExpire(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions := NewSessions(time.Hour, func() time.Time { return now })
	pair := sessions.Issue()
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	ok, _ := sessions.ValidateToken(pair.AccessToken)
	assert.True(t, ok)

	now = now.Add(time.Hour)
	ok, _ = sessions.ValidateToken(pair.AccessToken)
	assert.False(t, ok)

	ok, _ = sessions.ValidateToken("never-issued")
	assert.False(t, ok)
}

func TestUnknownPathFallsThrough(t *testing.T) {
	s := newTestService()
	data, err := json.Marshal(s.Dispatch(get("/api/nowhere", nil)).Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{}}`, string(data))
}

func TestLatencyWithinBounds(t *testing.T) {
	var mu sync.Mutex
	var waited []time.Duration
	s := New(WithSeed(3), WithLatency(200*time.Millisecond, 700*time.Millisecond),
		WithSleep(func(ctx context.Context, d time.Duration) error {
			mu.Lock()
			waited = append(waited, d)
			mu.Unlock()
			return nil
		}))
	s.Enable()

	client := &http.Client{Transport: s.Transport(nil)}
	for i := 0; i < 50; i++ {
		resp, err := client.Get("http://admin.invalid/api/users")
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.Len(t, waited, 50)
	for _, d := range waited {
		assert.GreaterOrEqual(t, d, 200*time.Millisecond)
		assert.Less(t, d, 700*time.Millisecond)
	}
}

type countingTransport struct{ calls int }

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.calls++
	return nil, errors.New("network")
}

func TestTransport(t *testing.T) {
	s := newTestService()
	next := &countingTransport{}
	client := &http.Client{Transport: s.Transport(next)}

	t.Run("Disabled", func(t *testing.T) {
		_, err := client.Get("http://admin.invalid/api/users")
		assert.Error(t, err)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("Enabled", func(t *testing.T) {
		s.Enable()
		defer s.Disable()

		resp, err := client.Post("http://admin.invalid/api/kyc/applications/KYC00001/approve", "application/json", strings.NewReader(`{"note":"ok"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, 1, next.calls)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "true", resp.Header.Get("X-Mock"))

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"message":"KYC application approved","data":{"note":"ok"}}`, string(data))
	})

	t.Run("Canceled", func(t *testing.T) {
		s := New(WithSeed(1), WithLatency(time.Second, 2*time.Second))
		s.Enable()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://admin.invalid/api/users", nil)
		require.NoError(t, err)
		_, err = (&http.Client{Transport: s.Transport(next)}).Do(req)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newTestService()
	router := gin.New()
	router.Any("/api/*path", s.Handler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Mock"))
	var stats UserStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 120, stats.Total)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/config/fees", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items"`)
}

func TestHandlerCanceled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(WithSeed(1), WithLatency(time.Second, 2*time.Second))
	router := gin.New()
	router.Any("/api/*path", s.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Header().Get("X-Mock"))
	assert.Contains(t, w.Body.String(), "Request canceled")
}

func TestEnableToggle(t *testing.T) {
	s := newTestService()
	assert.False(t, s.IsEnabled())
	s.Enable()
	assert.True(t, s.IsEnabled())
	s.Disable()
	assert.False(t, s.IsEnabled())
}
