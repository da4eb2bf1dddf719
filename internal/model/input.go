// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// CreateMealInput carries the submitted fields of the share-meal form.
// The raw values survive validation failures so the form can redisplay
// them; sanitization happens in the repository, not here.
type CreateMealInput struct {
	Title         string
	Summary       string
	Instructions  string
	Creator       string
	CreatorEmail  string
	Image         []byte
	ImageFilename string
}

// UpdateMealInput carries the submitted fields of the edit-meal form.
// An empty Image payload means "keep the stored image". Slug and
// creator_email are never part of an update.
type UpdateMealInput struct {
	Title         string
	Summary       string
	Instructions  string
	Creator       string
	Image         []byte
	ImageFilename string
}
