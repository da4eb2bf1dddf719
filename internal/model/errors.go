// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the meal lifecycle. Handlers translate these to
// HTTP status codes and flash messages; actions translate them to form
// results where the surface is a resubmittable form.
var (
	// ErrNotFound indicates the requested meal slug does not exist.
	ErrNotFound = errors.New("meal not found")

	// ErrUnauthenticated indicates no session where one is required.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrUnauthorized indicates a session that fails the authorization
	// policy for the targeted meal.
	ErrUnauthorized = errors.New("you can only modify your own recipes")

	// ErrSlugConflict indicates a storage-level uniqueness violation on
	// the derived slug. Two distinct titles may slugify identically;
	// the conflict is surfaced instead of silently overwriting.
	ErrSlugConflict = errors.New("a recipe with this title already exists")
)

// ValidationError reports the first field that failed meal validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StorageError wraps a failure of the image or row persistence step.
type StorageError struct {
	Op  string // "image" or "row"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
