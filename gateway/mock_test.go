// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/bankchen1/deiex-admin-sub000/mockapi"
	"github.com/bankchen1/deiex-admin-sub000/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offline fails the test if a request ever reaches the network.
func offline(t *testing.T) http.RoundTripper {
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		t.Errorf("unexpected network request: %s %s", r.Method, r.URL)
		return nil, errors.New("offline")
	})
}

func newMockClient(t *testing.T) (*Client, *mockapi.Service) {
	svc := mockapi.New(mockapi.WithSeed(42), mockapi.WithLatency(0, 0))
	svc.Enable()
	c, _, _ := newTestClient(t, "http://admin.invalid/api", WithMock(svc), WithTransport(offline(t)))
	return c, svc
}

func TestMockModeServesFixtures(t *testing.T) {
	c, svc := newMockClient(t)
	ctx := context.Background()

	stats, err := Decode[mockapi.UserStats](c.Get(ctx, "/admin/users/stats"))
	require.NoError(t, err)
	assert.Equal(t, len(svc.Fixtures().Users), stats.Total)
	assert.Equal(t, stats.Total, stats.Active+stats.Disabled+stats.Suspended)

	page, err := Decode[mockapi.Page[mockapi.User]](c.Get(ctx, "/users", WithQuery(url.Values{"page": {"3"}, "pageSize": {"25"}})))
	require.NoError(t, err)
	assert.Equal(t, 120, page.Total)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 25, page.PageSize)
	require.Len(t, page.Data, 25)
	assert.Equal(t, svc.Fixtures().Users[50].ID, page.Data[0].ID)
}

func TestMockModeLoginAndLogout(t *testing.T) {
	c, svc := newMockClient(t)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "ops.lee", "secret"))
	access, refresh := tokens(t, c.store)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	valid, err := svc.Sessions().ValidateToken(access)
	require.NoError(t, err)
	assert.True(t, valid)

	// logout revokes whatever bearer token the request carried
	require.NoError(t, c.Logout(ctx))
	valid, err = svc.Sessions().ValidateToken(access)
	require.NoError(t, err)
	assert.False(t, valid)

	access, refresh = tokens(t, c.store)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestMockModeRefresh(t *testing.T) {
	c, _ := newMockClient(t)
	ctx := context.Background()
	seedTokens(t, c.store)

	require.NoError(t, c.Refresh(ctx))
	access, refresh := tokens(t, c.store)
	assert.NotEqual(t, "old-access", access)
	assert.NotEqual(t, "refresh-1", refresh)
}

func TestMockModeFromConfig(t *testing.T) {
	cfg := testConfig("http://admin.invalid/api")
	cfg.Mock.Enabled = true
	cfg.Mock.Seed = 7

	c, err := New(cfg, tokenstore.NewMemoryStore(), WithTransport(offline(t)))
	require.NoError(t, err)
	require.NotNil(t, c.Mock())
	assert.True(t, c.Mock().IsEnabled())

	data, err := c.Post(context.Background(), "/users/U100001/status", map[string]string{"status": "disabled"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"User status updated","data":{"status":"disabled"}}`, string(data))
}

func TestMockDisabledUsesNetwork(t *testing.T) {
	var hits int
	transport := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		hits++
		return nil, errors.New("connection refused")
	})
	svc := mockapi.New(mockapi.WithSeed(1), mockapi.WithLatency(0, 0))
	c, _, rec := newTestClient(t, "http://admin.invalid/api", WithMock(svc), WithTransport(transport))

	_, err := c.Get(context.Background(), "/users")
	require.Error(t, err)
	assert.Equal(t, 1, hits)
	assert.Equal(t, []string{"Network error, please check your connection"}, rec.Messages())

	svc.Enable()
	_, err = c.Get(context.Background(), "/users")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}
