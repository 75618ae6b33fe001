package auth

import "context"

// DevUserID is the fixed identity resolved by the development bypass.
const DevUserID = "test-user-id"

// DevAuthorizer bypasses verification and resolves every request to
// DevUserID. Only the factory constructs it, and never for a production
// configuration.
type DevAuthorizer struct{}

// NewDevAuthorizer creates the development bypass authorizer.
func NewDevAuthorizer() *DevAuthorizer { return &DevAuthorizer{} }

// Verify accepts any credential, including an empty one.
func (a *DevAuthorizer) Verify(ctx context.Context, credential string) (*Identity, error) {
	return &Identity{UserID: DevUserID}, nil
}
