package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coginfy/relay/internal/crypto"
	"github.com/coginfy/relay/internal/model"
)

func TestBodyColumnsEnveloped(t *testing.T) {
	env := crypto.Envelope{IV: "aXY=", Ciphertext: "Y3Q="}
	iv, ct, legacy := BodyColumns(model.EnvelopedBody(env))
	assert.True(t, iv.Valid)
	assert.True(t, ct.Valid)
	assert.False(t, legacy.Valid)

	back := BodyFromColumns(iv, ct, legacy)
	assert.Equal(t, model.BodyEnveloped, back.Kind)
	assert.Equal(t, env, back.Envelope)
}

func TestBodyColumnsLegacy(t *testing.T) {
	iv, ct, legacy := BodyColumns(model.LegacyBody("hello"))
	assert.False(t, iv.Valid)
	assert.False(t, ct.Valid)
	assert.True(t, legacy.Valid)

	back := BodyFromColumns(iv, ct, legacy)
	assert.Equal(t, model.BodyPlainLegacy, back.Kind)
	assert.Equal(t, "hello", back.Legacy)
}

func TestBodyFromColumnsPartialEnvelopeFallsBackToLegacy(t *testing.T) {
	iv, _, _ := BodyColumns(model.EnvelopedBody(crypto.Envelope{IV: "aXY=", Ciphertext: "Y3Q="}))
	back := BodyFromColumns(iv, sql.NullString{}, sql.NullString{})
	assert.Equal(t, model.BodyPlainLegacy, back.Kind)
}
