// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Meal, User, Session, and the error taxonomy.
package model

import "time"

// Meal represents a shared recipe.
type Meal struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Summary      string    `json:"summary"`
	Instructions string    `json:"instructions"`
	Creator      string    `json:"creator"`
	CreatorEmail string    `json:"creator_email"`
	Image        string    `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsOwnedBy returns true if the meal was created by the given email.
// Comparison is case-sensitive: the stored value is the identity
// provider's canonical form.
func (m *Meal) IsOwnedBy(email string) bool {
	return email != "" && m.CreatorEmail == email
}
