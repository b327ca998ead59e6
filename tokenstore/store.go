// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

// Package tokenstore keeps the admin session's token pair. The access token
// lives in a short-lived session slot, the refresh token in a persistent one.
package tokenstore

import (
	"context"
	"errors"
)

// Slot holds a single opaque token. Get returns "" when nothing is stored.
type Slot interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Store defines the token operations the API gateway needs
type Store interface {
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	ClearAccessToken(ctx context.Context) error

	RefreshToken(ctx context.Context) (string, error)
	SetRefreshToken(ctx context.Context, token string) error
	ClearRefreshToken(ctx context.Context) error
}

// Pair implements Store on top of a session slot and a persistent slot.
type Pair struct {
	Session    Slot
	Persistent Slot
}

// NewPair returns a Pair. A nil persistent slot falls back to memory.
func NewPair(session, persistent Slot) *Pair {
	if session == nil {
		session = NewMemorySlot()
	}
	if persistent == nil {
		persistent = NewMemorySlot()
	}
	return &Pair{Session: session, Persistent: persistent}
}

// NewMemoryStore returns a Store that keeps both tokens in process memory.
func NewMemoryStore() *Pair {
	return NewPair(NewMemorySlot(), NewMemorySlot())
}

func (p *Pair) AccessToken(ctx context.Context) (string, error) { return p.Session.Get(ctx) }

func (p *Pair) SetAccessToken(ctx context.Context, token string) error {
	return p.Session.Set(ctx, token)
}

func (p *Pair) ClearAccessToken(ctx context.Context) error { return p.Session.Clear(ctx) }

func (p *Pair) RefreshToken(ctx context.Context) (string, error) { return p.Persistent.Get(ctx) }

func (p *Pair) SetRefreshToken(ctx context.Context, token string) error {
	return p.Persistent.Set(ctx, token)
}

func (p *Pair) ClearRefreshToken(ctx context.Context) error { return p.Persistent.Clear(ctx) }

// Save writes both tokens. The refresh token is written first so a failure
// never leaves a fresh access token next to a stale refresh token.
func Save(ctx context.Context, s Store, access, refresh string) error {
	if err := s.SetRefreshToken(ctx, refresh); err != nil {
		return err
	}
	return s.SetAccessToken(ctx, access)
}

// ClearAll removes both tokens, attempting each even when the other fails.
func ClearAll(ctx context.Context, s Store) error {
	return errors.Join(s.ClearAccessToken(ctx), s.ClearRefreshToken(ctx))
}
