package util

import (
	"net/http"
	"strings"
)

// SniffImage returns the image media type of b, or "" when b is not an image.
func SniffImage(b []byte) string {
	// JPEG: FF D8
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	// PNG
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	if len(b) == 0 {
		return ""
	}
	if mime := http.DetectContentType(b); strings.HasPrefix(mime, "image/") {
		return mime
	}
	return ""
}

// MakeDataURL embeds b as a base64 data URI.
func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}
