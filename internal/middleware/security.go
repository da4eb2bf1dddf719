// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityHeadersConfig holds configuration for the security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS for plain-HTTP local serving.
	IsDevelopment bool

	// ImageHosts lists extra origins images may load from, e.g. the
	// MinIO public URL and Google profile picture hosts.
	ImageHosts []string

	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds.
	HSTSMaxAge int
}

// DefaultSecurityHeadersConfig returns defaults for the app.
func DefaultSecurityHeadersConfig(isDev bool, imageHosts ...string) SecurityHeadersConfig {
	return SecurityHeadersConfig{
		IsDevelopment: isDev,
		ImageHosts:    imageHosts,
		HSTSMaxAge:    31536000, // 1 year
	}
}

// SecurityHeaders sets the standard browser hardening headers on every
// response.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	imgSrc := "'self' data:"
	for _, host := range cfg.ImageHosts {
		if host != "" {
			imgSrc += " " + host
		}
	}

	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src " + imgSrc,
		"font-src 'self'",
		"form-action 'self' https://accounts.google.com",
		"object-src 'none'",
		"base-uri 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	hsts := "max-age=" + strconv.Itoa(cfg.HSTSMaxAge) + "; includeSubDomains"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StaticCache adds Cache-Control headers for static files and stored
// images. Image keys carry a timestamp, so long max-age is safe.
func StaticCache(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
			next.ServeHTTP(w, r)
		})
	}
}
