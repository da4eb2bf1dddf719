// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validate checks submitted recipe fields before persistence.
// Rules run in a fixed order and short-circuit at the first failure so
// error reporting is deterministic. No I/O happens here.
package validate

import (
	"strings"

	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
)

// Field kinds reported in ValidationError.Field, in evaluation order.
const (
	FieldTitle        = "title"
	FieldSummary      = "summary"
	FieldInstructions = "instructions"
	FieldCreator      = "creator"
	FieldCreatorEmail = "creator_email"
	FieldImage        = "image"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// textRules returns the first failure among the shared text fields, or nil.
func textRules(title, summary, instructions, creator string) *model.ValidationError {
	switch {
	case blank(title):
		return model.NewValidationError(FieldTitle, "Please provide a recipe title.")
	case blank(summary):
		return model.NewValidationError(FieldSummary, "Please provide a short summary.")
	case blank(instructions):
		return model.NewValidationError(FieldInstructions, "Please provide cooking instructions.")
	case blank(creator):
		return model.NewValidationError(FieldCreator, "Please provide your name.")
	}
	return nil
}

// Create validates the share-meal submission. Returns nil on success or
// a *model.ValidationError naming the first failing field.
func Create(in model.CreateMealInput) error {
	if err := textRules(in.Title, in.Summary, in.Instructions, in.Creator); err != nil {
		return err
	}
	if blank(in.CreatorEmail) || !strings.Contains(in.CreatorEmail, "@") {
		return model.NewValidationError(FieldCreatorEmail, "Please provide a valid email address.")
	}
	if in.Image == nil {
		return model.NewValidationError(FieldImage, "Please pick a recipe image.")
	}
	if len(in.Image) == 0 {
		return model.NewValidationError(FieldImage, "The selected image is empty.")
	}
	return nil
}

// Update validates the edit-meal submission. The image is optional:
// an absent or empty payload keeps the stored image.
func Update(in model.UpdateMealInput) error {
	if err := textRules(in.Title, in.Summary, in.Instructions, in.Creator); err != nil {
		return err
	}
	return nil
}
