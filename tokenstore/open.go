// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package tokenstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bankchen1/deiex-admin-sub000/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const refreshKey = "refresh_token"

// pingAttempts bounds how often a persistent backend is pinged at startup.
const pingAttempts = 5

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open builds the Store selected by cfg.Tokens.Backend. The access token is
// always kept in memory; only the refresh token outlives the process.
func Open(ctx context.Context, cfg *config.Config) (*Pair, io.Closer, error) {
	switch cfg.Tokens.Backend {
	case "", "memory":
		return NewMemoryStore(), closerFunc(func() error { return nil }), nil

	case "redis":
		client := NewRedisClient(cfg)
		if err := ping(ctx, "redis", func() error { return client.Ping(ctx).Err() }); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		ttl := time.Duration(cfg.Tokens.Redis.KeyTTL) * time.Second
		slot := NewRedisSlot(client, cfg.Tokens.Redis.Prefix+refreshKey, ttl)
		return NewPair(NewMemorySlot(), slot), client, nil

	case "postgres":
		db, err := OpenPostgres(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := ping(ctx, "postgres", func() error { return db.PingContext(ctx) }); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres ping failed: %w", err)
		}
		slot := NewPostgresSlot(db, cfg.Tokens.Postgres.Table, cfg.Tokens.Postgres.Key+":"+refreshKey)
		return NewPair(NewMemorySlot(), slot), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown token backend %q", cfg.Tokens.Backend)
	}
}

func ping(ctx context.Context, backend string, op func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), pingAttempts-1), ctx)
	return backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("backend", backend).Dur("retry_in", wait).Msg("token store not reachable")
	})
}
