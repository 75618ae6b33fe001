package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coginfy/relay/internal/auth"
	"github.com/coginfy/relay/internal/config"
)

// NewAuthorizer returns the configured authorizer. The development bypass is
// refused here even if config validation was skipped.
func NewAuthorizer(cfg *config.Config, log zerolog.Logger) (auth.Authorizer, error) {
	switch cfg.AuthMode {
	case config.AuthModeStatic:
		if len(cfg.APIKeys) == 0 {
			return nil, fmt.Errorf("RELAY_API_KEYS is required when AUTH_MODE=static")
		}
		return auth.NewStaticAuthorizer(cfg.APIKeys), nil

	case config.AuthModeDevBypass:
		if cfg.IsProduction() {
			return nil, fmt.Errorf("auth bypass is not allowed in production")
		}
		log.Warn().Msg("auth bypass active; every request resolves to the test identity")
		return auth.NewDevAuthorizer(), nil

	default:
		return nil, fmt.Errorf("unknown AUTH_MODE: %s", cfg.AuthMode)
	}
}
