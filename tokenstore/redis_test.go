// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bankchen1/deiex-admin-sub000/config"
	"github.com/stretchr/testify/assert"
)

func setupRedisTest(t *testing.T) (*config.Config, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Tokens.Backend = "redis"
	cfg.Tokens.Redis.Host = mr.Host()
	cfg.Tokens.Redis.Port = mr.Server().Addr().Port
	cfg.Tokens.Redis.Prefix = "test:"
	cfg.Tokens.Redis.KeyTTL = 1 // 1 second TTL for testing

	return cfg, mr
}

func TestRedisSlot(t *testing.T) {
	cfg, mr := setupRedisTest(t)
	defer mr.Close()

	ctx := context.Background()
	client := NewRedisClient(cfg)
	defer client.Close()
	slot := NewRedisSlot(client, "test:refresh_token", time.Second)

	t.Run("GetMissingToken", func(t *testing.T) {
		token, err := slot.Get(ctx)
		assert.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("SetAndGetToken", func(t *testing.T) {
		assert.NoError(t, slot.Set(ctx, "refresh-1"))

		token, err := slot.Get(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "refresh-1", token)
		assert.True(t, mr.Exists("test:refresh_token"))
	})

	t.Run("ClearToken", func(t *testing.T) {
		assert.NoError(t, slot.Set(ctx, "refresh-2"))
		assert.NoError(t, slot.Clear(ctx))

		token, err := slot.Get(ctx)
		assert.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("TokenExpiration", func(t *testing.T) {
		assert.NoError(t, slot.Set(ctx, "expiring"))

		mr.FastForward(2 * time.Second)

		token, err := slot.Get(ctx)
		assert.NoError(t, err)
		assert.Empty(t, token)
	})
}

func TestOpenRedis(t *testing.T) {
	cfg, mr := setupRedisTest(t)
	defer mr.Close()

	ctx := context.Background()
	store, closer, err := Open(ctx, cfg)
	assert.NoError(t, err)
	defer closer.Close()

	assert.NoError(t, Save(ctx, store, "access", "refresh"))
	got, err := mr.Get("test:refresh_token")
	assert.NoError(t, err)
	assert.Equal(t, "refresh", got)

	// the access token never leaves the process
	assert.False(t, mr.Exists("test:access_token"))
}
