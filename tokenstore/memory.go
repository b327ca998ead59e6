// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package tokenstore

import (
	"context"
	"sync"
)

// MemorySlot is a process-local Slot, used for the session-scoped access token
// and in tests.
type MemorySlot struct {
	mu    sync.RWMutex
	token string
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (m *MemorySlot) Get(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemorySlot) Set(ctx context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemorySlot) Clear(ctx context.Context) error {
	return m.Set(ctx, "")
}
