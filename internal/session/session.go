// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side session manager backed by
// the SQLite sessions table.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session data keys.
const (
	// KeyUserID holds the signed-in user's row id.
	KeyUserID = "userID"

	// KeyOAuthState holds the CSRF state token between the sign-in
	// redirect and the provider callback.
	KeyOAuthState = "oauthState"

	// KeyReturnTo holds the URL to land on after the provider callback.
	KeyReturnTo = "returnTo"
)

// CookieName returns the session cookie name New configures for the
// environment. Clients of the identity endpoint need it to forward
// their session.
func CookieName(isDev bool) string {
	if isDev {
		return "session"
	}
	// __Host- prefix binds the cookie to this host over HTTPS.
	return "__Host-session"
}

// New creates a session manager configured with the SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.Name = CookieName(isDev)
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Path = "/"
	}

	return sm
}
