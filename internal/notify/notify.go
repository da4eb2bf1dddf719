// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify implements the post-redirect toast relay. A mutation
// redirects with a success marker in the query string; the marker is
// latched in the session so the toast shows exactly once, surviving
// the redirect but not a page refresh or a shared link.
package notify

import (
	"context"
	"net/url"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
)

// Toast kinds, one per successful mutation that announces itself.
const (
	KindCreated = "created"
	KindUpdated = "updated"
)

// Query parameter names of the success marker.
const (
	ParamSuccess = "success"
	ParamNonce   = "n"
)

// messages maps a toast kind to its user-facing text.
var messages = map[string]string{
	KindCreated: "Recipe shared successfully!",
	KindUpdated: "Recipe updated successfully!",
}

// Toast is a one-shot notification rendered after a redirect.
type Toast struct {
	Kind    string
	Message string
}

// Relay latches success markers in the session. Each marker carries a
// nonce; the nonce is single-use, so replaying the URL shows nothing.
type Relay struct {
	sessions *scs.SessionManager
	newNonce func() string
}

// NewRelay creates a relay over the given session manager.
func NewRelay(sessions *scs.SessionManager) *Relay {
	return &Relay{
		sessions: sessions,
		newNonce: uuid.NewString,
	}
}

// Latch registers a pending toast of the given kind and returns the
// query string to append to the redirect target. Returns "" for
// unknown kinds.
func (r *Relay) Latch(ctx context.Context, kind string) string {
	if _, ok := messages[kind]; !ok {
		return ""
	}
	nonce := r.newNonce()
	r.sessions.Put(ctx, sessionKey(kind), nonce)

	params := url.Values{
		ParamSuccess: {kind},
		ParamNonce:   {nonce},
	}
	return params.Encode()
}

// Consume checks a success marker against the latched nonce. On a
// match the latch is cleared and the toast is returned; any later call
// with the same marker yields nothing.
func (r *Relay) Consume(ctx context.Context, kind, nonce string) (*Toast, bool) {
	message, ok := messages[kind]
	if !ok || nonce == "" {
		return nil, false
	}

	latched := r.sessions.PopString(ctx, sessionKey(kind))
	if latched == "" || latched != nonce {
		return nil, false
	}

	return &Toast{Kind: kind, Message: message}, true
}

func sessionKey(kind string) string {
	return "notice:" + kind
}
