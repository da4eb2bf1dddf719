// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
)

// DefaultSessionTTL is how long a resolved identity is trusted before
// the next Resolve re-fetches it.
const DefaultSessionTTL = 5 * time.Minute

// FetchFunc retrieves the current identity from the identity endpoint.
type FetchFunc func(ctx context.Context) (*model.Identity, error)

// SessionCache memoizes the identity endpoint for consumers that poll
// it, such as navigation widgets. Within the TTL window repeated
// Resolve calls are answered from memory; a fetch failure clears the
// cache and reports signed-out rather than propagating the error.
type SessionCache struct {
	fetch FetchFunc
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time

	mu        sync.Mutex
	cached    *model.Identity
	fetchedAt time.Time
}

// NewSessionCache creates a session cache. A non-positive ttl falls
// back to DefaultSessionTTL.
func NewSessionCache(fetch FetchFunc, ttl time.Duration, log *slog.Logger) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCache{
		fetch: fetch,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// Resolve returns the current identity, fetching only when the cached
// value is absent or older than the TTL. A nil identity means
// signed out.
func (c *SessionCache) Resolve(ctx context.Context) *model.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.cached
	}
	return c.refreshLocked(ctx)
}

// ForceRefresh bypasses the TTL and re-fetches immediately. Used after
// sign-in and sign-out, when the cached value is known stale.
func (c *SessionCache) ForceRefresh(ctx context.Context) *model.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// Invalidate drops the cached identity without fetching.
func (c *SessionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
	c.fetchedAt = time.Time{}
}

func (c *SessionCache) refreshLocked(ctx context.Context) *model.Identity {
	identity, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("session fetch failed, treating as signed out", "error", err)
		c.cached = nil
		c.fetchedAt = time.Time{}
		return nil
	}
	c.cached = identity
	c.fetchedAt = c.now()
	return identity
}

// NewHTTPFetch returns a FetchFunc against the identity endpoint at
// baseURL, forwarding the given session cookie.
func NewHTTPFetch(client *http.Client, baseURL, cookieName, cookieValue string) FetchFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) (*model.Identity, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/auth/session", nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create session request: %w", err)
		}
		if cookieValue != "" {
			req.AddCookie(&http.Cookie{Name: cookieName, Value: cookieValue})
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("session request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("session fetch failed with status %d", resp.StatusCode)
		}

		var identity model.Identity
		if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
			return nil, fmt.Errorf("failed to parse session response: %w", err)
		}
		return &identity, nil
	}
}
