package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/evolvesprouts/backend/internal/identity"
	"github.com/evolvesprouts/backend/internal/logging"
)

// AuthorizerContextHeader carries the authorizer claims the API gateway
// resolved for the caller, as a JSON object. The gateway validates the
// bearer token; this service only interprets the forwarded claims.
const AuthorizerContextHeader = "X-Authorizer-Context"

// Authorizer extracts the caller identity from the forwarded authorizer
// claims and stores it on the request context. Requests without the
// header proceed anonymously; handlers decide whether that is allowed.
func Authorizer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw := r.Header.Get(AuthorizerContextHeader); raw != "" {
				var claims map[string]any
				if err := json.Unmarshal([]byte(raw), &claims); err != nil {
					logging.FromContext(ctx).Warn("malformed authorizer context", "error", err)
				} else {
					ctx = identity.WithIdentity(ctx, identity.FromClaims(claims))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
