package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	key, err := ParseKey("1fe7f3a7fc258225635b3562884d46473175a913ef02c18a24b825f7e54cfb7d")
	require.NoError(t, err)
	c, err := New(key)
	require.NoError(t, err)
	return c
}

func TestParseKey(t *testing.T) {
	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseKey("")
		assert.Error(t, err)
	})
	t.Run("rejects non-hex", func(t *testing.T) {
		_, err := ParseKey(strings.Repeat("zz", 32))
		assert.Error(t, err)
	})
	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseKey("deadbeef")
		assert.Error(t, err)
	})
	t.Run("accepts 32 bytes of hex", func(t *testing.T) {
		key, err := ParseKey(strings.Repeat("ab", 32))
		require.NoError(t, err)
		assert.Len(t, key, KeySize)
	})
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := testCipher(t)
	for _, text := range []string{
		"",
		"Hello",
		"exactly sixteen!",
		strings.Repeat("long message body ", 200),
		"unicode: héllo wörld 日本語",
	} {
		env, err := c.Encrypt(text)
		require.NoError(t, err)
		got, err := c.Decrypt(env)
		require.NoError(t, err)
		assert.Equal(t, text, got)
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	c := testCipher(t)
	a, err := c.Encrypt("same input")
	require.NoError(t, err)
	b, err := c.Encrypt("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a.IV, b.IV, "two encryptions must not share an IV")
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	c := testCipher(t)
	const original = "a perfectly ordinary message"
	env, err := c.Encrypt(original)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	env.Ciphertext = base64.StdEncoding.EncodeToString(raw)

	// CBC without a MAC cannot promise a padding error on every flip;
	// what it must never do is yield the original plaintext.
	got, err := c.Decrypt(env)
	if err == nil {
		assert.NotEqual(t, original, got)
	}
}

func TestDecryptRejectsMalformedEnvelope(t *testing.T) {
	c := testCipher(t)
	env, err := c.Encrypt("hi")
	require.NoError(t, err)

	cases := map[string]Envelope{
		"bad iv base64":         {IV: "!!!!", Ciphertext: env.Ciphertext},
		"short iv":              {IV: base64.StdEncoding.EncodeToString([]byte("short")), Ciphertext: env.Ciphertext},
		"bad ciphertext base64": {IV: env.IV, Ciphertext: "!!!!"},
		"unaligned ciphertext":  {IV: env.IV, Ciphertext: base64.StdEncoding.EncodeToString([]byte("abc"))},
		"empty ciphertext":      {IV: env.IV, Ciphertext: ""},
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decrypt(bad)
			assert.Error(t, err)
		})
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	c := testCipher(t)
	env, err := c.Encrypt("secret")
	require.NoError(t, err)

	otherKey, err := ParseKey(strings.Repeat("42", 32))
	require.NoError(t, err)
	other, err := New(otherKey)
	require.NoError(t, err)

	got, err := other.Decrypt(env)
	if err == nil {
		// CBC padding can accidentally validate under a wrong key; the
		// plaintext must still never match.
		assert.NotEqual(t, "secret", got)
	}
}
