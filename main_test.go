// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bankchen1/deiex-admin-sub000/config"
	"github.com/bankchen1/deiex-admin-sub000/mockapi"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSetup(t *testing.T) (*config.Config, *mockapi.Service, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	t.Setenv("ADMIN_MOCK_MIN_LATENCY", "0s")
	t.Setenv("ADMIN_MOCK_MAX_LATENCY", "1ms")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Metrics.Enabled = true
	cfg.Auth.Enabled = true
	cfg.Auth.Tokens = []string{"static-token"}

	svc := newMockService(cfg)
	svc.Enable()
	return cfg, svc, setupRouter(cfg, svc)
}

func TestMainSetup(t *testing.T) {
	_, _, r := testSetup(t)

	// Get all registered routes
	routes := r.Routes()
	routeMap := make(map[string]bool)
	for _, route := range routes {
		routeMap[route.Path] = true
	}

	// Verify required endpoints are registered
	assert.True(t, routeMap["/api/*path"], "Missing /api endpoint")
	assert.True(t, routeMap["/health"], "Missing /health endpoint")
	assert.True(t, routeMap["/swagger/*any"], "Missing /swagger endpoint")
	assert.True(t, routeMap["/metrics"], "Missing /metrics endpoint")
}

func TestHealthCheck(t *testing.T) {
	_, _, r := testSetup(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestDevServerAuth(t *testing.T) {
	_, _, r := testSetup(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/users/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// login is public and the issued token opens the rest of the API
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"admin","password":"x"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.AccessToken)

	for _, token := range []string{login.Data.AccessToken, "static-token"} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":120`)
	}
}

func TestCallCommand(t *testing.T) {
	t.Setenv("ADMIN_MOCK_MIN_LATENCY", "0s")
	t.Setenv("ADMIN_MOCK_MAX_LATENCY", "1ms")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"call", "--mock", "-u", "admin", "-p", "x", "GET", "/admin/users/stats"})
	require.NoError(t, cmd.Execute())

	var stats mockapi.UserStats
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	assert.Equal(t, 120, stats.Total)
}

func TestCallCommandRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		{"call"},
		{"call", "POST", "/users", "--data", "{not json"},
		{"call", "GET", "/users", "-q", "missing-equals"},
	} {
		cmd := NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		assert.Error(t, cmd.Execute(), strings.Join(args, " "))
	}
}
