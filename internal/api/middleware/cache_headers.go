package middleware

import (
	"net/http"
	"strings"
)

// CacheHeadersMiddleware sets Cache-Control headers for public read endpoints.
// Listing pages and search results are safe to cache briefly at the edge;
// everything else stays private because responses depend on the caller's
// identity (a signed-in owner sees their unverified listings, for example).
func CacheHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			w.Header().Set("Cache-Control", cacheControlFor(r))
		}
		next.ServeHTTP(w, r)
	})
}

func cacheControlFor(r *http.Request) string {
	// Authenticated requests get a personalized view; never share those.
	if r.Header.Get("Authorization") != "" {
		return "private, no-cache"
	}

	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/businesses/search"):
		// Search results go stale as soon as new listings are verified.
		return "public, max-age=60, must-revalidate"
	case strings.HasSuffix(path, "/reviews") || strings.HasSuffix(path, "/posts"):
		return "public, max-age=60, must-revalidate"
	case strings.HasPrefix(path, "/api/businesses"):
		return "public, max-age=300, must-revalidate"
	default:
		return "private, no-cache"
	}
}
