package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crossroads-hq/crossroads-backend/internal/api/middleware"
)

func TestCacheHeadersMiddleware(t *testing.T) {
	handler := middleware.CacheHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		method     string
		path       string
		authHeader string
		want       string
	}{
		{
			name:   "search results cache briefly",
			method: http.MethodGet,
			path:   "/api/businesses/search?q=bbq",
			want:   "public, max-age=60, must-revalidate",
		},
		{
			name:   "business detail caches longer",
			method: http.MethodGet,
			path:   "/api/businesses/biz-1",
			want:   "public, max-age=300, must-revalidate",
		},
		{
			name:   "reviews cache briefly",
			method: http.MethodGet,
			path:   "/api/businesses/biz-1/reviews",
			want:   "public, max-age=60, must-revalidate",
		},
		{
			name:       "authenticated requests stay private",
			method:     http.MethodGet,
			path:       "/api/businesses/biz-1",
			authHeader: "Bearer token",
			want:       "private, no-cache",
		},
		{
			name:   "non-business endpoints stay private",
			method: http.MethodGet,
			path:   "/api/users/me",
			want:   "private, no-cache",
		},
		{
			name:   "writes get no cache header",
			method: http.MethodPost,
			path:   "/api/businesses",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Header().Get("Cache-Control"))
		})
	}
}
