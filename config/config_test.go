// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	tmpfile, err := os.CreateTemp("", "config.*.yaml")
	assert.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	_, err = tmpfile.Write([]byte(content))
	assert.NoError(t, err)
	tmpfile.Close()
	return tmpfile.Name()
}

func TestLoadConfig(t *testing.T) {
	name := writeConfig(t, `
server:
  host: testhost
  port: 9090

api:
  base_url: https://admin.example.com/api
  timeout: 15s

mock:
  enabled: true
  min_latency: 10ms
  max_latency: 20ms
  seed: 42

metrics:
  enabled: true
  path: /metrics

tokens:
  backend: redis
  redis:
    host: localhost
    port: 6379
    key_ttl: 3600
`)

	cfg, err := LoadConfig(name)
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "testhost", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://admin.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Mock.Enabled)
	assert.Equal(t, 10*time.Millisecond, cfg.Mock.MinLatency)
	assert.Equal(t, 20*time.Millisecond, cfg.Mock.MaxLatency)
	assert.Equal(t, int64(42), cfg.Mock.Seed)
	assert.Equal(t, true, cfg.Metrics.Enabled)
	assert.Equal(t, "redis", cfg.Tokens.Backend)
	assert.Equal(t, 3600, cfg.Tokens.Redis.KeyTTL)
}

func TestDefaultValues(t *testing.T) {
	name := writeConfig(t, `{}`)

	cfg, err := LoadConfig(name)
	assert.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Mock.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.Mock.MinLatency)
	assert.Equal(t, 700*time.Millisecond, cfg.Mock.MaxLatency)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "memory", cfg.Tokens.Backend)
	assert.Equal(t, "admin_tokens", cfg.Tokens.Postgres.Table)
}

func TestEnvironmentOverrides(t *testing.T) {
	name := writeConfig(t, `
api:
  base_url: http://from-file
mock:
  enabled: false
`)
	t.Setenv("ADMIN_API_BASE_URL", "http://from-env")
	t.Setenv("ADMIN_API_TIMEOUT", "5s")
	t.Setenv("ADMIN_MOCK_ENABLED", "true")
	t.Setenv("ADMIN_MOCK_MIN_LATENCY", "0s")
	t.Setenv("ADMIN_MOCK_MAX_LATENCY", "5ms")

	cfg, err := LoadConfig(name)
	assert.NoError(t, err)

	assert.Equal(t, "http://from-env", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Mock.Enabled)
	assert.Zero(t, cfg.Mock.MinLatency)
	assert.Equal(t, 5*time.Millisecond, cfg.Mock.MaxLatency)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)

	name := writeConfig(t, "server: [unterminated")
	_, err = LoadConfig(name)
	assert.Error(t, err)

	t.Setenv("ADMIN_API_TIMEOUT", "not-a-duration")
	_, err = LoadConfig("")
	assert.Error(t, err)
}
