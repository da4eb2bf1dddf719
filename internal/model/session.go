// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Session is the authenticated-user view resolved from the identity
// layer. A nil *Session means unauthenticated.
type Session struct {
	UserID  int64     `json:"id,string"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Image   string    `json:"image,omitempty"`
	IsAdmin bool      `json:"isAdmin"`
	Expires time.Time `json:"-"`
}

// Identity is the wire form of GET /api/auth/session. Absence of
// user.email means unauthenticated.
type Identity struct {
	User    *Session `json:"user,omitempty"`
	Expires string   `json:"expires,omitempty"`
}

// Authenticated reports whether the payload carries a signed-in user.
func (i *Identity) Authenticated() bool {
	return i != nil && i.User != nil && i.User.Email != ""
}
