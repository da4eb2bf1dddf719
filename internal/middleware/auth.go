// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// rate limiting, CSRF protection and security headers.
package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
	"github.com/GyGaByyyTe/nextlevel-food/internal/session"
	"github.com/GyGaByyyTe/nextlevel-food/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeySession holds the resolved *model.Session, or nothing for
// anonymous requests.
const ContextKeySession ContextKey = "session"

// LoadUser resolves the signed-in user from the session cookie and
// places a *model.Session in the request context. Anonymous requests
// pass through untouched; a dangling user id clears the session.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), session.KeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			sess := &model.Session{
				UserID:  user.ID,
				Email:   user.Email,
				Name:    user.Name,
				IsAdmin: user.IsAdmin,
				Expires: time.Now().Add(sm.Lifetime),
			}
			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser redirects anonymous requests to the sign-in page,
// remembering where they were headed. Must run after LoadUser.
func RequireUser(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetSession(r) == nil {
				if r.Method == http.MethodGet {
					sm.Put(r.Context(), session.KeyReturnTo, r.URL.RequestURI())
				}
				http.Redirect(w, r, "/signin", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSession retrieves the current session from the request context.
// Returns nil for anonymous requests.
func GetSession(r *http.Request) *model.Session {
	sess, ok := r.Context().Value(ContextKeySession).(*model.Session)
	if !ok {
		return nil
	}
	return sess
}

// GetUserIDPtr returns a pointer to the current user's id, or nil for
// anonymous requests. Used by the event logger.
func GetUserIDPtr(r *http.Request) *int64 {
	if sess := GetSession(r); sess != nil {
		id := sess.UserID
		return &id
	}
	return nil
}
