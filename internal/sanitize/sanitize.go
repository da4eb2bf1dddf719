// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanitize strips markup injection from user-submitted recipe
// text before it is persisted or rendered.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// strictPolicy strips all HTML. Used for plain-text fields (title,
// summary, creator name) where markup has no legitimate use.
var strictPolicy = bluemonday.StrictPolicy()

// ugcPolicy allows the safe user-generated-content subset while
// stripping <script>, event handlers and similar vectors. Instructions
// are markdown-bearing and may legitimately contain benign inline HTML.
var ugcPolicy = bluemonday.UGCPolicy()

// Text sanitizes a plain-text field, removing every HTML element.
func Text(s string) string {
	return strictPolicy.Sanitize(s)
}

// Instructions sanitizes the markdown-bearing instructions field,
// keeping benign markup but removing script injection vectors.
func Instructions(s string) string {
	return ugcPolicy.Sanitize(s)
}
