package web

import (
	"net/url"
	"strings"
)

// isLocalPath reports whether path is a same-origin absolute path that is
// safe to redirect to after login.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}

	// Protocol-relative URLs (//evil.com) and backslash variants.
	if strings.HasPrefix(path, "//") || strings.Contains(path, "\\") {
		return false
	}

	if strings.Contains(path, "://") {
		return false
	}

	u, err := url.Parse(path)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return false
	}
	return true
}

func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

func loginURL(next string) string {
	if next == "" || next == "/" || !isLocalPath(next) {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}
