package scraper

import (
	"net/url"
	"strings"
)

// NormalizeURL returns the canonical trailing-slash form of a product URL.
// The same product is requested both with and without the trailing slash in
// the wild; canonicalizing keeps the cache keyed on one form. Fragments are
// dropped, the host is lowercased, the query survives untouched.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	} else if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}
