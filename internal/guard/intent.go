package guard

import (
	"net/url"
	"strings"
)

const (
	LoginPath = "/login"
	FromParam = "from"
)

// LoginURL builds the login location carrying requested as navigation intent.
func LoginURL(requested string) string {
	return LoginPath + "?" + url.Values{FromParam: {ReturnPath(requested)}}.Encode()
}

// ReturnPath reduces raw to a local path safe to redirect to after login. Absent,
// absolute, protocol-relative or login-pointing values yield "/".
func ReturnPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return "/"
	}
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") || strings.ContainsAny(raw, "\r\n") {
		return "/"
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" || parsed.User != nil {
		return "/"
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if path == LoginPath || strings.HasPrefix(path, LoginPath+"/") {
		return "/"
	}

	if parsed.RawQuery != "" {
		return path + "?" + parsed.RawQuery
	}
	return path
}
