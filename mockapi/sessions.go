// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TokenPair is what login and refresh hand out.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Sessions remembers which access tokens were issued and until when. Only the
// dev server consults it; the in-process interceptor never validates tokens.
type Sessions struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tokens map[string]time.Time
}

func NewSessions(ttl time.Duration, now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{ttl: ttl, now: now, tokens: make(map[string]time.Time)}
}

// Issue creates and registers a fresh token pair.
func (s *Sessions) Issue() TokenPair {
	pair := TokenPair{
		AccessToken:  "mock-access-" + uuid.NewString(),
		RefreshToken: "mock-refresh-" + uuid.NewString(),
		ExpiresIn:    int64(s.ttl / time.Second),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for tok, exp := range s.tokens {
		if !now.Before(exp) {
			delete(s.tokens, tok)
		}
	}
	s.tokens[pair.AccessToken] = now.Add(s.ttl)
	return pair
}

// Revoke forgets an access token.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// ValidateToken reports whether token was issued and has not expired.
func (s *Sessions) ValidateToken(token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[token]
	return ok && s.now().Before(exp), nil
}
