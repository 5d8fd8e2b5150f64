package auth

import (
	"net/http"
	"strings"

	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/pkg/utils"
)

// Credential extracts the bearer credential from a request: the
// Authorization header, or a token query parameter for transports that
// cannot set headers (the WebSocket handshake from browsers).
func Credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// CredentialUsable rejects empty credentials and the literal strings
// "undefined" and "null", which a buggy client interpolates into the
// handshake instead of a real token.
func CredentialUsable(credential string) bool {
	switch credential {
	case "", "undefined", "null":
		return false
	}
	return true
}

// Middleware authenticates every request and stores the identity in the
// context. Unauthenticated requests are answered with 401.
func Middleware(resolver Resolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := Credential(r)
			if !CredentialUsable(credential) {
				utils.WriteError(w, "authentication required", http.StatusUnauthorized)
				return
			}

			id, err := resolver.Verify(r.Context(), credential)
			if err != nil {
				utils.WriteError(w, "invalid credential", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRoles guards a route subtree to the given roles.
func RequireRoles(roles ...entities.Role) func(next http.Handler) http.Handler {
	allowed := make(map[entities.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				utils.WriteError(w, "authentication required", http.StatusUnauthorized)
				return
			}
			if !allowed[id.Role] {
				utils.WriteError(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
