// Package favicon derives the icon shown next to a bookmark.
package favicon

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

const serviceURL = "https://www.google.com/s2/favicons"

// Size is the icon edge length requested from the favicon service.
const Size = 32

// URL returns the favicon service address for the site raw points at, or ""
// when raw is not an absolute URL with a host.
func URL(raw string) string {
	host, ok := hostname(raw)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s?domain=%s&sz=%d", serviceURL, host, Size)
}

// Domain returns the host name of raw, or raw itself when it cannot be parsed.
func Domain(raw string) string {
	if host, ok := hostname(raw); ok {
		return host
	}
	return raw
}

// Initial returns the upper-cased first character of title for use as a
// fallback icon, or "?" for an empty title.
func Initial(title string) string {
	r, size := utf8.DecodeRuneInString(title)
	if size == 0 || r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

func hostname(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return "", false
	}
	host := u.Hostname()
	return host, host != ""
}
