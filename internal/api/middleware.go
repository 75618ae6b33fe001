// Package api provides the HTTP transport for the relay: identity
// middleware, conversation and message handlers, and the router.
package api

import (
	"context"
	"net/http"

	"github.com/coginfy/relay/internal/api/respond"
	"github.com/coginfy/relay/internal/auth"
)

type contextKey string

const identityKey contextKey = "relay.identity"

// IdentityFrom returns the verified identity placed on the request context
// by RequireIdentity. The second return is false on routes that bypass the
// middleware.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// RequireIdentity verifies the bearer credential on every request and
// rejects with 401 before any handler runs. The resolved identity is
// attached to the request context. A missing header is passed to the
// authorizer as an empty credential so the development bypass can accept
// unauthenticated requests; every production authorizer rejects it.
func RequireIdentity(authorizer auth.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred, _ := auth.ExtractBearer(r)
			id, err := authorizer.Verify(r.Context(), cred)
			if err != nil {
				respond.WriteUnauthorized(w, "invalid or missing credential")
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, *id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
