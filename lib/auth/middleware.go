package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// TokenVerifier verifies a bearer token and returns the claims it carries.
type TokenVerifier interface {
	Verify(token string) (AccessClaims, error)
}

// Middleware authenticates requests and enforces role checks at the HTTP boundary,
// before any call reaches the domain services.
type Middleware struct {
	Verifier TokenVerifier
}

// Secure wraps a handler, requiring a valid bearer token carrying one of the
// allowed roles. An empty allow-list admits any authenticated caller.
func (m Middleware) Secure(next http.HandlerFunc, allowed ...Role) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		header := request.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			http.Error(writer, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := m.Verifier.Verify(token)
		if err != nil {
			log.Ctx(request.Context()).Debug().Err(err).Msg("Rejected bearer token")
			http.Error(writer, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		if err := RequireRole(claims, allowed...); err != nil {
			http.Error(writer, "insufficient role", http.StatusForbidden)
			return
		}
		next(writer, request.WithContext(WithClaims(request.Context(), claims)))
	}
}
