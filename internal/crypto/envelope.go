// Package crypto implements the symmetric envelope applied to every
// message body before it reaches the store: AES-256-CBC with a fresh
// random IV per call and PKCS#7 padding, encoded as base64 for transport.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	// KeySize is the required key length in bytes (AES-256).
	KeySize = 32
	// IVSize is the AES block size; every envelope carries its own IV.
	IVSize = aes.BlockSize
)

// Placeholder replaces the body of a record that cannot be decrypted.
// A corrupt historical record must not hide the rest of a conversation.
const Placeholder = "[Encrypted message]"

// Envelope is the (IV, ciphertext) pair for one message body. The two
// fields are meaningless apart and are always stored and read together.
type Envelope struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// Cipher encrypts and decrypts message bodies with the process-wide key.
// The key is fixed at construction; there is no rotation path.
type Cipher struct {
	key []byte
}

// ParseKey decodes a hex-encoded 32-byte key.
func ParseKey(hexKey string) ([]byte, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("encryption key is required")
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid hex: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

// New constructs a Cipher from a raw 32-byte key.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	c := &Cipher{key: make([]byte, KeySize)}
	copy(c.key, key)
	return c, nil
}

// Encrypt seals plaintext into an envelope with a freshly random IV.
// It fails only on cipher-engine errors, never on input content; callers
// treat a failure as fatal for the current request.
func (c *Cipher) Encrypt(plaintext string) (Envelope, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return Envelope{}, fmt.Errorf("cipher init: %w", err)
	}
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return Envelope{}, fmt.Errorf("iv generation: %w", err)
	}
	padded := pad([]byte(plaintext))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return Envelope{
		IV:         base64.StdEncoding.EncodeToString(iv),
		Ciphertext: base64.StdEncoding.EncodeToString(out),
	}, nil
}

// Decrypt opens an envelope. It reports an error on corrupt base64, a
// wrong-size IV, non-block-aligned ciphertext or a padding mismatch; the
// read path maps any such error to Placeholder rather than failing the page.
func (c *Cipher) Decrypt(env Envelope) (string, error) {
	iv, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return "", fmt.Errorf("iv decode: %w", err)
	}
	if len(iv) != IVSize {
		return "", fmt.Errorf("iv must be %d bytes, got %d", IVSize, len(iv))
	}
	data, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("ciphertext decode: %w", err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not a positive multiple of the block size", len(data))
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("cipher init: %w", err)
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	unpadded, err := unpad(out)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// pad applies PKCS#7 padding up to the AES block size.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}
