package util

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMIME sniffs the head of r and rewinds it. Content that sniffs as a
// generic stream falls back to the extension of name.
func DetectMIME(r io.ReadSeeker, name string) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	sniffed, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	detected := sniffed.String()
	if strings.HasPrefix(detected, "application/octet-stream") || strings.HasPrefix(detected, "text/plain") {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
			return byExt, nil
		}
	}
	return detected, nil
}

func baseMIME(mimeType string) string {
	base, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return base
}

// IsThumbnailMIME reports whether the decoders linked into the file manager
// can read the type.
func IsThumbnailMIME(mimeType string) bool {
	switch baseMIME(mimeType) {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff":
		return true
	default:
		return false
	}
}

// IsTextMIME reports whether the editor may open the type.
func IsTextMIME(mimeType string) bool {
	base := baseMIME(mimeType)
	if strings.HasPrefix(base, "text/") {
		return true
	}
	switch base {
	case "application/json", "application/xml", "application/javascript", "application/x-sh", "application/toml", "application/yaml", "application/x-yaml":
		return true
	default:
		return false
	}
}
