// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
	"github.com/GyGaByyyTe/nextlevel-food/internal/testutil"
)

func signedInIdentity() *model.Identity {
	return &model.Identity{
		User: &model.Session{
			UserID: 1,
			Email:  "maria@example.com",
			Name:   "Maria",
		},
		Expires: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}
}

func TestResolveFetchesOncePerWindow(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) (*model.Identity, error) {
		calls++
		return signedInIdentity(), nil
	}
	c := NewSessionCache(fetch, 5*time.Minute, testutil.TestLogger())
	base := time.Now()
	c.now = func() time.Time { return base }
	ctx := context.Background()

	first := c.Resolve(ctx)
	second := c.Resolve(ctx)

	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
	if !first.Authenticated() || !second.Authenticated() {
		t.Error("expected authenticated identity from both resolves")
	}
}

func TestResolveRefetchesAfterTTL(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) (*model.Identity, error) {
		calls++
		return signedInIdentity(), nil
	}
	c := NewSessionCache(fetch, 5*time.Minute, testutil.TestLogger())
	base := time.Now()
	c.now = func() time.Time { return base }
	ctx := context.Background()

	c.Resolve(ctx)
	c.now = func() time.Time { return base.Add(6 * time.Minute) }
	c.Resolve(ctx)

	if calls != 2 {
		t.Errorf("fetch calls = %d, want 2", calls)
	}
}

func TestResolveFailureReportsSignedOut(t *testing.T) {
	healthy := true
	fetch := func(ctx context.Context) (*model.Identity, error) {
		if !healthy {
			return nil, fmt.Errorf("endpoint down")
		}
		return signedInIdentity(), nil
	}
	c := NewSessionCache(fetch, 5*time.Minute, testutil.TestLogger())
	base := time.Now()
	c.now = func() time.Time { return base }
	ctx := context.Background()

	if identity := c.Resolve(ctx); !identity.Authenticated() {
		t.Fatal("expected signed-in identity before failure")
	}

	healthy = false
	c.now = func() time.Time { return base.Add(6 * time.Minute) }
	if identity := c.Resolve(ctx); identity.Authenticated() {
		t.Error("expected signed-out identity after fetch failure")
	}

	// The failure also cleared the cache, so recovery is immediate.
	healthy = true
	if identity := c.Resolve(ctx); !identity.Authenticated() {
		t.Error("expected signed-in identity after recovery")
	}
}

func TestForceRefreshBypassesTTL(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) (*model.Identity, error) {
		calls++
		return signedInIdentity(), nil
	}
	c := NewSessionCache(fetch, 5*time.Minute, testutil.TestLogger())
	ctx := context.Background()

	c.Resolve(ctx)
	c.ForceRefresh(ctx)

	if calls != 2 {
		t.Errorf("fetch calls = %d, want 2", calls)
	}
}

func TestInvalidateDropsCachedValue(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) (*model.Identity, error) {
		calls++
		return signedInIdentity(), nil
	}
	c := NewSessionCache(fetch, 5*time.Minute, testutil.TestLogger())
	ctx := context.Background()

	c.Resolve(ctx)
	c.Invalidate()
	c.Resolve(ctx)

	if calls != 2 {
		t.Errorf("fetch calls = %d, want 2", calls)
	}
}

func TestNewHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/session" {
			http.NotFound(w, r)
			return
		}
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "tok" {
			_ = json.NewEncoder(w).Encode(&model.Identity{})
			return
		}
		_ = json.NewEncoder(w).Encode(signedInIdentity())
	}))
	defer srv.Close()

	fetch := NewHTTPFetch(srv.Client(), srv.URL, "session", "tok")
	identity, err := fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !identity.Authenticated() {
		t.Error("expected authenticated identity")
	}
	if identity.User.Email != "maria@example.com" {
		t.Errorf("email = %q", identity.User.Email)
	}

	anon := NewHTTPFetch(srv.Client(), srv.URL, "session", "")
	identity, err = anon(context.Background())
	if err != nil {
		t.Fatalf("anonymous fetch: %v", err)
	}
	if identity.Authenticated() {
		t.Error("expected unauthenticated identity without cookie")
	}
}
