package utils

import (
	"net/url"
	"strings"
)

// NormalizeURL trims the input, adds a missing https scheme and lower-cases
// the host. Fragments are dropped.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", NewError(ErrCodeInvalidURL, "url is empty").Build()
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", WrapError(err, ErrCodeInvalidURL, "url cannot be parsed")
	}
	if u.Host == "" {
		return "", NewError(ErrCodeInvalidURL, "url has no host").WithContext("url", rawURL).Build()
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String(), nil
}

// Hostname returns the lower-cased host of rawURL without port and without
// a leading "www.". It returns "" when the URL has no host.
func Hostname(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed != "" && !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// IsValidURL checks if a string is an absolute http(s) URL
func IsValidURL(str string) bool {
	u, err := url.Parse(str)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// TruncateString truncates a string to at most maxLen runes
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
