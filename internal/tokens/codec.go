// Package tokens implements the seller session token lifecycle: the
// encrypted cookie codec and the manager that keeps an access token fresh.
package tokens

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// Codec seals a TokenSet into an opaque cookie value and back. The value is
// AES-256-GCM ciphertext with the random nonce prepended, base64url
// encoded. GCM authentication means any tampering, truncation, or foreign
// key decodes to nothing rather than to garbage tokens.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec creates a Codec from 32 bytes of key material.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("cookie key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// Encode seals ts into an opaque string suitable for a cookie value.
func (c *Codec) Encode(ts *domain.TokenSet) (string, error) {
	plaintext, err := json.Marshal(ts)
	if err != nil {
		return "", fmt.Errorf("marshaling token set: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode reverses Encode. It returns nil for any malformed input: bad
// base64, short ciphertext, authentication failure (tampering or wrong
// key), or a payload that is not a TokenSet. Callers treat nil as "no
// credentials"; decode failures never surface as errors.
func (c *Codec) Decode(value string) *domain.TokenSet {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}

	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil
	}

	plaintext, err := c.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil
	}

	ts := &domain.TokenSet{}
	if err := json.Unmarshal(plaintext, ts); err != nil {
		return nil
	}
	if ts.AccessToken == "" && ts.RefreshToken == "" {
		return nil
	}

	return ts
}
