// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded recipe photos: it decodes the
// common web formats, applies the EXIF orientation, caps the longest
// edge and re-encodes without metadata.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

const defaultQuality = 95

// Result is a processed image ready for storage.
type Result struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Processor normalizes uploaded images using pure Go codecs.
type Processor struct {
	maxEdge int
	quality int
}

// NewProcessor creates a processor that caps the longest image edge at
// maxEdge pixels. A zero maxEdge disables downscaling.
func NewProcessor(maxEdge int) *Processor {
	return &Processor{
		maxEdge: maxEdge,
		quality: defaultQuality,
	}
}

// Process decodes an uploaded image, auto-rotates it per its EXIF
// orientation, downscales it if it exceeds the edge cap, and re-encodes
// it in its source format. WebP input is re-encoded as JPEG since pure
// Go has no WebP encoder.
func (p *Processor) Process(data []byte) (*Result, error) {
	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	orientation := readExifOrientation(bytes.NewReader(data))
	img = applyOrientation(img, orientation)

	bounds := img.Bounds()
	if p.maxEdge > 0 && (bounds.Dx() > p.maxEdge || bounds.Dy() > p.maxEdge) {
		img = imaging.Fit(img, p.maxEdge, p.maxEdge, imaging.Lanczos)
		bounds = img.Bounds()
	}

	// Pure Go encoders drop EXIF, which also strips GPS tags from
	// uploads.
	encoded, outFormat, err := encodeImage(img, format, p.quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &Result{
		Data:        encoded,
		ContentType: formatToMimeType(outFormat),
		Ext:         formatToExt(outFormat),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// IsSupported reports whether data looks like an image this processor
// can handle.
func (p *Processor) IsSupported(data []byte) bool {
	return detectFormat(data) != ""
}

// DetectContentType detects the MIME type of image data.
func DetectContentType(data []byte) string {
	contentType := http.DetectContentType(data)
	// http.DetectContentType returns types like "image/jpeg; charset=utf-8"
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image with the specified format and quality,
// returning the bytes and the format actually used.
func encodeImage(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer

	switch format {
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "jpeg", nil
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "png", nil
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "gif", nil
	default:
		// WebP and anything else falls back to JPEG output.
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "jpeg", nil
	}
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	switch DetectContentType(data) {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		// Everything else is rejected, TIFF among it
		// (CVE-2023-36308 in disintegration/imaging).
		return ""
	}
}

// formatToMimeType converts format string to MIME type.
func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// formatToExt converts format string to a file extension with dot.
func formatToExt(format string) string {
	switch format {
	case "jpeg", "jpg":
		return ".jpg"
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	case "webp":
		return ".webp"
	default:
		return ".bin"
	}
}
