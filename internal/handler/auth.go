// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/GyGaByyyTe/nextlevel-food/internal/auth"
	"github.com/GyGaByyyTe/nextlevel-food/internal/middleware"
	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
	"github.com/GyGaByyyTe/nextlevel-food/internal/render"
	"github.com/GyGaByyyTe/nextlevel-food/internal/session"
	"github.com/GyGaByyyTe/nextlevel-food/internal/store"
)

// AuthHandler handles the sign-in flow and the session endpoint.
type AuthHandler struct {
	queries  *store.Queries
	provider auth.Provider // nil when OAuth is not configured
	sessions *scs.SessionManager
	renderer *render.Renderer
	log      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. A nil provider disables
// the Google flow; the sign-in page then explains the situation.
func NewAuthHandler(db *sql.DB, provider auth.Provider, sm *scs.SessionManager,
	renderer *render.Renderer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		queries:  store.New(db),
		provider: provider,
		sessions: sm,
		renderer: renderer,
		log:      log,
	}
}

type signinData struct {
	OAuthEnabled bool
}

// SigninForm renders the sign-in page. Already-authenticated users are
// sent back to the meal listing.
func (h *AuthHandler) SigninForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r) != nil {
		http.Redirect(w, r, RouteMeals, http.StatusSeeOther)
		return
	}

	err := h.renderer.Render(w, r, "signin", render.TemplateData{
		Title: "Sign in",
		Data:  signinData{OAuthEnabled: h.provider != nil},
	})
	if err != nil {
		renderError(w, r, h.renderer, h.log, err)
	}
}

// GoogleStart begins the Google OAuth flow: a fresh state token is
// stored in the session and the browser is sent to the consent screen.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		http.NotFound(w, r)
		return
	}

	state := uuid.NewString()
	h.sessions.Put(r.Context(), session.KeyOAuthState, state)

	http.Redirect(w, r, h.provider.LoginURL(state), http.StatusFound)
}

// GoogleCallback completes the OAuth flow: the state token is checked,
// the code is exchanged for the user's identity, and the local user
// row is created or refreshed.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		http.NotFound(w, r)
		return
	}

	if errCode := r.URL.Query().Get("error"); errCode != "" {
		h.log.Warn("oauth consent denied", "error", errCode)
		h.failSignin(w, r, "Sign-in was cancelled.")
		return
	}

	state := r.URL.Query().Get("state")
	expected := h.sessions.PopString(r.Context(), session.KeyOAuthState)
	if state == "" || expected == "" || state != expected {
		h.log.Warn("oauth state mismatch", "remote", r.RemoteAddr)
		h.failSignin(w, r, "Sign-in failed. Please try again.")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.failSignin(w, r, "Sign-in failed. Please try again.")
		return
	}

	info, err := h.provider.ExchangeCode(r.Context(), code)
	if err != nil {
		h.log.Error("oauth code exchange failed", "category", "auth", "error", err)
		h.failSignin(w, r, "Sign-in failed. Please try again.")
		return
	}

	user, err := h.queries.UpsertUser(r.Context(), strings.ToLower(info.Email), info.Name)
	if err != nil {
		h.log.Error("upserting user after sign-in", "category", "auth", "error", err)
		h.failSignin(w, r, "Sign-in failed. Please try again.")
		return
	}

	// Rotate the session token on privilege change.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		h.log.Error("renewing session token", "category", "auth", "error", err)
		h.failSignin(w, r, "Sign-in failed. Please try again.")
		return
	}
	h.sessions.Put(r.Context(), session.KeyUserID, user.ID)

	h.log.Info("user signed in", "category", "auth", "user_id", user.ID)

	returnTo := h.sessions.PopString(r.Context(), session.KeyReturnTo)
	if returnTo == "" || !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") {
		returnTo = RouteMeals
	}
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

// Signout destroys the session and lands on the homepage.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		h.log.Error("destroying session", "category", "auth", "error", err)
	}
	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// Session reports the signed-in identity as JSON. Clients poll this to
// decide between the sign-in link and the user menu; an empty object
// means unauthenticated.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	identity := model.Identity{}
	if sess := middleware.GetSession(r); sess != nil {
		identity.User = sess
		identity.Expires = sess.Expires.UTC().Format("2006-01-02T15:04:05.000Z")
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(identity); err != nil {
		h.log.Error("encoding session payload", "error", err)
	}
}

func (h *AuthHandler) failSignin(w http.ResponseWriter, r *http.Request, message string) {
	h.renderer.SetFlash(r, message, "error")
	http.Redirect(w, r, RouteSignin, http.StatusSeeOther)
}
