package store

import (
	"database/sql"

	"github.com/coginfy/relay/internal/crypto"
	"github.com/coginfy/relay/internal/model"
)

// BodyColumns flattens a message body into the nullable iv / ciphertext /
// legacy_text columns shared by both drivers.
func BodyColumns(b model.Body) (iv, ciphertext, legacy sql.NullString) {
	switch b.Kind {
	case model.BodyEnveloped:
		iv = sql.NullString{String: b.Envelope.IV, Valid: true}
		ciphertext = sql.NullString{String: b.Envelope.Ciphertext, Valid: true}
	case model.BodyPlainLegacy:
		legacy = sql.NullString{String: b.Legacy, Valid: true}
	}
	return iv, ciphertext, legacy
}

// BodyFromColumns rebuilds the tagged body variant from row columns. A row
// carrying both iv and ciphertext is enveloped; anything else is treated as
// a legacy clear-text record.
func BodyFromColumns(iv, ciphertext, legacy sql.NullString) model.Body {
	if iv.Valid && ciphertext.Valid {
		return model.EnvelopedBody(crypto.Envelope{IV: iv.String, Ciphertext: ciphertext.String})
	}
	return model.LegacyBody(legacy.String)
}
