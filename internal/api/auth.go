package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCConfig holds OIDC authentication settings.
type OIDCConfig struct {
	IssuerURL string
	Audience  string
	Enabled   bool
}

// Identity is the authenticated caller taken from a verified ID token.
type Identity struct {
	// User is the token subject, or its email when the subject is empty.
	User string
	// Client is the authorized party (azp) the token was issued to.
	Client string
}

type identityKey struct{}

// IdentityFromContext returns the caller identity set by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// UserFromContext returns the authenticated user, or "".
func UserFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.User
}

// ClientFromContext returns the OAuth client the token was issued to, or "".
func ClientFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Client
}

// publicPaths skip authentication.
var publicPaths = map[string]bool{
	"/api/v1/health": true,
}

var (
	errMissingAuth  = errors.New("missing Authorization header")
	errBadAuthShape = errors.New("invalid Authorization header format")
)

// bearerToken extracts the raw token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errMissingAuth
	}
	scheme, token, ok := strings.Cut(h, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errBadAuthShape
	}
	return token, nil
}

// oidcAuth returns middleware that verifies bearer ID tokens against the
// provider's keys and audience.
func oidcAuth(provider *oidc.Provider, audience string) func(http.Handler) http.Handler {
	verifier := provider.Verifier(&oidc.Config{ClientID: audience})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := bearerToken(r)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}
			token, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				unauthorized(w, "invalid token: "+err.Error())
				return
			}

			var claims struct {
				Sub   string `json:"sub"`
				Email string `json:"email"`
				Azp   string `json:"azp"`
			}
			if err := token.Claims(&claims); err != nil {
				unauthorized(w, "invalid token claims")
				return
			}
			id := Identity{User: claims.Sub, Client: claims.Azp}
			if id.User == "" {
				id.User = claims.Email
			}

			ctx := context.WithValue(r.Context(), identityKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	writeError(w, http.StatusUnauthorized, msg)
}
