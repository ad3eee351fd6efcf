package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
)

type contextKey string

// PrincipalContextKey is the context key the authenticated principal is stored under
const PrincipalContextKey contextKey = "principal"

// Claims represents the JWT claims issued by the identity provider
type Claims struct {
	Username string   `json:"username,omitempty"`
	Groups   []string `json:"groups,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware provides JWT authentication
type AuthMiddleware struct {
	secret []byte
	issuer string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(secret, issuer string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), issuer: issuer}
}

// Require rejects requests without a valid bearer token
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.principalFromRequest(r)
		if err != nil {
			respondAuthError(w, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches a principal when a valid token is present but lets
// anonymous requests through. Public read endpoints use this so signed-in
// callers still get personalized results.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal, err := m.principalFromRequest(r); err == nil {
			ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) principalFromRequest(r *http.Request) (*authz.Principal, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errMalformedHeader
	}

	claims, err := m.validateToken(parts[1])
	if err != nil {
		return nil, err
	}

	return &authz.Principal{
		Subject:  claims.Subject,
		Username: claims.Username,
		Groups:   claims.Groups,
	}, nil
}

func (m *AuthMiddleware) validateToken(tokenString string) (*Claims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// PrincipalFromContext extracts the authenticated principal, if any
func PrincipalFromContext(ctx context.Context) *authz.Principal {
	if principal, ok := ctx.Value(PrincipalContextKey).(*authz.Principal); ok {
		return principal
	}
	return nil
}

// WebhookAuthMiddleware authenticates identity-provider trigger calls with a
// shared secret carried in the X-Webhook-Secret header.
func WebhookAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Webhook-Secret")
			if secret == "" || !hmac.Equal(sha256Sum(provided), sha256Sum(secret)) {
				respondAuthError(w, "invalid webhook secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sha256Sum(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errMissingToken    = authError("missing authorization header")
	errMalformedHeader = authError("invalid authorization header format")
	errInvalidToken    = authError("invalid or expired token")
)

func respondAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
