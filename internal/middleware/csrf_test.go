// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newCSRFProtected(t *testing.T) http.Handler {
	t.Helper()

	cfg := DefaultCSRFConfig([]byte("0123456789abcdef0123456789abcdef"), "localhost:8080", true)
	return CSRF(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRFAllowsGET(t *testing.T) {
	handler := newCSRFProtected(t)

	req := httptest.NewRequest(http.MethodGet, "/meals", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for GET, got %d", rec.Code)
	}
}

func TestCSRFAllowsSameOriginPost(t *testing.T) {
	handler := newCSRFProtected(t)

	req := httptest.NewRequest(http.MethodPost, "/meals/share", strings.NewReader("title=x"))
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for same-origin POST, got %d", rec.Code)
	}
}

func TestCSRFRejectsCrossSitePost(t *testing.T) {
	handler := newCSRFProtected(t)

	req := httptest.NewRequest(http.MethodPost, "/meals/share", strings.NewReader("title=x"))
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for cross-site POST, got %d", rec.Code)
	}
}

func TestCSRFAllowsNonBrowserPost(t *testing.T) {
	handler := newCSRFProtected(t)

	// No fetch metadata at all, e.g. curl. Not a browser, not CSRF.
	req := httptest.NewRequest(http.MethodPost, "/meals/share", strings.NewReader("title=x"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for a request without fetch metadata, got %d", rec.Code)
	}
}
