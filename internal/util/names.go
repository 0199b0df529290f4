package util

import (
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"hostpanel/pkg/apierror"
)

const maxNameRunes = 255

var reservedNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

func invalidName(message string, details string) error {
	return apierror.New("INVALID_FILENAME", message, details, http.StatusBadRequest)
}

// SanitizeName makes name safe as a single path element: control and format
// runes are dropped, separators and shell-hostile characters become "_".
// Dot files are refused unless allowHidden is set.
func SanitizeName(name string, allowHidden bool) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", invalidName("filename cannot be empty", "")
	}

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.TrimSpace(reservedNameChars.ReplaceAllString(b.String(), "_"))
	if cleaned == "" {
		return "", invalidName("filename is invalid after sanitization", trimmed)
	}

	if runes := []rune(cleaned); len(runes) > maxNameRunes {
		cleaned = string(runes[:maxNameRunes])
	}

	if cleaned == "." || cleaned == ".." {
		return "", invalidName("filename cannot be current or parent directory", cleaned)
	}
	if strings.HasPrefix(cleaned, ".") && !allowHidden {
		return "", invalidName("hidden filenames are not allowed", cleaned)
	}

	return cleaned, nil
}
