package factory

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coginfy/relay/internal/config"
)

func TestNewStoreSQLite(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "relay.db")

	st, err := NewStore(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, st)
}

func TestNewStoreUnknownDriver(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DBDriver = "mongo"

	_, err := NewStore(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewStorePostgresRequiresDSN(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.DBDriver = "postgres"
	cfg.PostgresDSN = ""

	_, err := NewStore(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewAuthorizerStaticRequiresKeys(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.AuthMode = config.AuthModeStatic
	cfg.APIKeys = nil

	_, err := NewAuthorizer(cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg.APIKeys = map[string]string{"k": "alice"}
	a, err := NewAuthorizer(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, a)
}

func TestNewAuthorizerRefusesBypassInProduction(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.Environment = config.EnvProduction
	cfg.AuthMode = config.AuthModeDevBypass

	_, err := NewAuthorizer(cfg, zerolog.Nop())
	assert.Error(t, err)
}
