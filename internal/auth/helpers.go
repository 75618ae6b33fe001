package auth

import (
	"net/http"
	"strings"
)

// ExtractBearer extracts the credential from an "Authorization: Bearer <credential>"
// header. Returns ErrMissingCredential if the header is absent or malformed.
func ExtractBearer(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingCredential
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrMissingCredential
	}
	return parts[1], nil
}
