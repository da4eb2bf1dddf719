// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// User represents a local mirror of an identity-provider account.
// Rows are created on first successful sign-in; the name is refreshed
// on later sign-ins when it changed upstream. The admin flag is only
// ever set by out-of-band tooling, never by request handlers.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
