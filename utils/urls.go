package utils

import (
	"net/url"
	"strings"
)

// ResolveURL resolves ref against base. Protocol-relative refs
// ("//host/path") get the https scheme. An empty or unparseable ref, or one
// that does not resolve to an http(s) URL, yields the empty string.
func ResolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if !refURL.IsAbs() {
		baseURL, err := url.Parse(base)
		if err != nil || !baseURL.IsAbs() {
			return ""
		}
		refURL = baseURL.ResolveReference(refURL)
	}

	switch strings.ToLower(refURL.Scheme) {
	case "http", "https":
		return refURL.String()
	}
	return ""
}
