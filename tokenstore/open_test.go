// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package tokenstore

import (
	"context"
	"testing"

	"github.com/bankchen1/deiex-admin-sub000/config"
	"github.com/stretchr/testify/assert"
)

func TestOpenMemory(t *testing.T) {
	cfg := &config.Config{}
	store, closer, err := Open(context.Background(), cfg)
	assert.NoError(t, err)
	assert.NotNil(t, store)
	assert.NoError(t, closer.Close())
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Tokens.Backend = "etcd"
	_, _, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpenRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &config.Config{}
	cfg.Tokens.Backend = "redis"
	cfg.Tokens.Redis.Host = "127.0.0.1"
	cfg.Tokens.Redis.Port = 1

	_, _, err := Open(ctx, cfg)
	assert.Error(t, err)
}
