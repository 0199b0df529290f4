package storage

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode"

	"hostpanel/pkg/apierror"
)

// Sandbox maps slash-separated client paths onto an absolute directory and
// refuses anything that would escape it.
type Sandbox struct {
	rootAbs string
}

func NewSandbox(root string) (*Sandbox, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve files root: %w", err)
	}

	return &Sandbox{rootAbs: rootAbs}, nil
}

func (s *Sandbox) RootAbs() string {
	return s.rootAbs
}

// Resolve turns clientPath into an absolute path under the root. "", "/" and
// "." all name the root itself.
func (s *Sandbox) Resolve(clientPath string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(clientPath), `\`, "/")
	if normalized == "" || normalized == "/" {
		return s.rootAbs, nil
	}

	if hasControlCharacters(normalized) {
		return "", apierror.New("INVALID_PATH", "path contains invalid characters", clientPath, http.StatusBadRequest)
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", apierror.New("PATH_TRAVERSAL", "path traversal attempt detected", clientPath, http.StatusForbidden)
		}
	}

	cleanRel := filepath.Clean(strings.TrimPrefix(normalized, "/"))
	if cleanRel == "." {
		return s.rootAbs, nil
	}

	resolved, err := filepath.Abs(filepath.Join(s.rootAbs, cleanRel))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	if !isWithinRoot(s.rootAbs, resolved) {
		return "", apierror.New("PATH_TRAVERSAL", "resolved path is outside files root", clientPath, http.StatusForbidden)
	}

	return resolved, nil
}

// ClientPath is the inverse of Resolve.
func (s *Sandbox) ClientPath(absPath string) string {
	rel, err := filepath.Rel(s.rootAbs, absPath)
	if err != nil {
		return "/"
	}
	return Clean("/" + filepath.ToSlash(rel))
}

// Clean normalizes a client path to a rooted, slash-separated form.
func Clean(path string) string {
	cleaned := filepath.ToSlash(filepath.Clean("/" + strings.TrimSpace(path)))
	if cleaned == "." || cleaned == "" {
		return "/"
	}
	return cleaned
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	if candidateAbs == rootAbs {
		return true
	}
	return strings.HasPrefix(candidateAbs, rootAbs+string(filepath.Separator))
}
