// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bankchen1/deiex-admin-sub000/metrics"
	"github.com/bankchen1/deiex-admin-sub000/tokenstore"
	"github.com/rs/zerolog/log"
)

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// awaitRefresh makes sure the access token is newer than sent, refreshing it
// if nobody else is. At most one refresh is in flight; callers arriving while
// it runs queue up and are released in arrival order with its outcome. When
// the refresh fails, only the caller that ran it ends the session and reports
// cause to the operator.
func (c *Client) awaitRefresh(ctx context.Context, sent string, cause error) error {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan error, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()
		metrics.QueuedRequests.Inc()

		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// A 401 for a token that was already replaced belongs to a settled
	// refresh; replaying with the current token is enough.
	current, err := c.store.AccessToken(ctx)
	if err == nil && current != "" && current != sent {
		c.mu.Unlock()
		return nil
	}
	// Both tokens went away after this request was sent: a settled refresh
	// failed and already ended the session.
	if err == nil && current == "" && sent != "" {
		if refresh, rerr := c.store.RefreshToken(ctx); rerr == nil && refresh == "" {
			c.mu.Unlock()
			return ErrNoRefreshToken
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	// The refresh serves every queued caller, so it must not die with ours.
	err = c.Refresh(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}

	if err != nil {
		log.Warn().Err(err).Int("queued", len(waiters)).Msg("token refresh failed, session ended")
		c.expireSession(ctx)
		c.report(cause)
		return err
	}
	log.Debug().Int("queued", len(waiters)).Msg("token refreshed")
	return nil
}

// Refresh exchanges the stored refresh token for a new token pair. Without a
// refresh token it fails at once and makes no network call. On any failure
// both tokens are cleared.
func (c *Client) Refresh(ctx context.Context) error {
	refresh, err := c.store.RefreshToken(ctx)
	if err != nil || refresh == "" {
		if cerr := tokenstore.ClearAll(ctx, c.store); cerr != nil {
			log.Error().Err(cerr).Msg("clearing tokens failed")
		}
		metrics.TokenRefreshes.WithLabelValues("missing").Inc()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}
		return ErrNoRefreshToken
	}

	pair, err := c.requestTokens(ctx, refreshPath, map[string]string{"refreshToken": refresh})
	if err == nil {
		err = tokenstore.Save(ctx, c.store, pair.AccessToken, pair.RefreshToken)
	}
	if err != nil {
		if cerr := tokenstore.ClearAll(ctx, c.store); cerr != nil {
			log.Error().Err(cerr).Msg("clearing tokens failed")
		}
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	return nil
}

// requestTokens posts body to path outside the 401 handling and expects
// {"data": {"accessToken", "refreshToken"}} back.
func (c *Client) requestTokens(ctx context.Context, path string, body any) (tokenPair, error) {
	var pair tokenPair
	payload, err := json.Marshal(body)
	if err != nil {
		return pair, err
	}

	target := c.resolve(path, nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return pair, &Error{Kind: KindRequest, Method: http.MethodPost, URL: target, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.stamp(req)

	data, err := c.exchange(req)
	if err != nil {
		return pair, err
	}

	var envelope struct {
		Data tokenPair `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return pair, fmt.Errorf("decoding token response: %w", err)
	}
	if envelope.Data.AccessToken == "" || envelope.Data.RefreshToken == "" {
		return pair, fmt.Errorf("token response is missing tokens")
	}
	return envelope.Data, nil
}

// Login authenticates with username and password and stores the token pair.
// Failures are reported to the operator like any other call.
func (c *Client) Login(ctx context.Context, username, password string) error {
	pair, err := c.requestTokens(ctx, loginPath, map[string]string{"username": username, "password": password})
	if err != nil {
		c.report(err)
		return err
	}
	return tokenstore.Save(ctx, c.store, pair.AccessToken, pair.RefreshToken)
}

// Logout tells the server and drops both tokens, even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Post(ctx, logoutPath, nil)
	if cerr := tokenstore.ClearAll(ctx, c.store); cerr != nil {
		return cerr
	}
	return err
}
