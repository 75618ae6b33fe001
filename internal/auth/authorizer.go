package auth

import "context"

// Identity is the verified principal behind a request.
type Identity struct {
	UserID string `json:"userId"`
}

// Authorizer turns a caller-supplied credential into a verified identity.
// Verification internals (token format, upstream identity provider) are
// behind this interface; the relay core only consumes the result.
type Authorizer interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}
