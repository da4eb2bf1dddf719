// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package authz holds the pure authorization policy for recipe
// mutations. No I/O, no side effects.
package authz

import "github.com/GyGaByyyTe/nextlevel-food/internal/model"

// CanModify reports whether the session's user may edit or delete a
// meal created by creatorEmail. Administrators may modify any meal;
// everyone else only their own, by case-sensitive exact email match.
// A nil session can never modify anything.
func CanModify(session *model.Session, creatorEmail string) bool {
	if session == nil || session.Email == "" {
		return false
	}
	if session.IsAdmin {
		return true
	}
	return session.Email == creatorEmail
}
