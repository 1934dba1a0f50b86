package cache

import (
	"net/url"
	"strings"
)

// Key generates a deterministic cache key for a request URL.
// Format: page:host/path:query (query params sorted for determinism)
//
// Example:
//
//	page:api.example.com/products:limit=20&skip=0
func Key(rawURL string) string {
	parts := []string{"page"}

	u, err := url.Parse(rawURL)
	if err != nil {
		// Unparseable URLs still need a stable key
		return "page:" + rawURL
	}

	endpoint := u.Host + strings.TrimRight(u.Path, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(u.Query()) > 0 {
		// url.Values.Encode sorts keys
		parts = append(parts, u.Query().Encode())
	}

	return strings.Join(parts, ":")
}
