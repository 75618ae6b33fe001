package auth

import "context"

// StaticAuthorizer verifies bearer credentials against a fixed key -> user
// mapping supplied by configuration. This is the production authorizer for
// single-deployment installs; key issuance lives outside the relay.
type StaticAuthorizer struct {
	keys map[string]string
}

// NewStaticAuthorizer builds an authorizer over a credential -> user id map.
// The map is copied; later mutation of the argument has no effect.
func NewStaticAuthorizer(keys map[string]string) *StaticAuthorizer {
	cp := make(map[string]string, len(keys))
	for k, v := range keys {
		cp[k] = v
	}
	return &StaticAuthorizer{keys: cp}
}

// Verify resolves the credential to its user id or rejects it.
func (a *StaticAuthorizer) Verify(ctx context.Context, credential string) (*Identity, error) {
	userID, ok := a.keys[credential]
	if !ok || userID == "" {
		return nil, ErrInvalidCredential
	}
	return &Identity{UserID: userID}, nil
}
