// Package persistence provides codecs and middleware for session stores
// that hold conversation state outside the process.
package persistence

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dunehq/dune/pkg/domain"
)

// Codec serializes sessions for an external store.
type Codec interface {
	Marshal(sess domain.Session) ([]byte, error)
	Unmarshal(data []byte) (domain.Session, error)
}

// JSONCodec is the default plain-text serialization.
type JSONCodec struct{}

// Marshal encodes the session as JSON.
func (JSONCodec) Marshal(sess domain.Session) ([]byte, error) {
	return json.Marshal(sess)
}

// Unmarshal decodes a JSON session.
func (JSONCodec) Unmarshal(data []byte) (domain.Session, error) {
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return sess, nil
}

// AESCodec encrypts sessions with AES-GCM before they leave the process,
// so untrusted conversation text is never stored in the clear.
type AESCodec struct {
	// activeKey encrypts new data. Must be 32 bytes for AES-256.
	activeKey []byte

	// fallbackKeys are old keys tried when decryption fails, enabling
	// zero-downtime key rotation.
	fallbackKeys [][]byte
}

// NewAESCodec creates an encrypting codec. The active key must be 32 bytes.
func NewAESCodec(activeKey []byte, fallbackKeys ...[]byte) (*AESCodec, error) {
	if len(activeKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return &AESCodec{activeKey: activeKey, fallbackKeys: fallbackKeys}, nil
}

// Marshal serializes and seals the session.
func (c *AESCodec) Marshal(sess domain.Session) ([]byte, error) {
	plaintext, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return encrypt(plaintext, c.activeKey)
}

// Unmarshal opens the envelope, trying the active key first and then the
// fallback keys in order.
func (c *AESCodec) Unmarshal(data []byte) (domain.Session, error) {
	plaintext, err := c.open(data)
	if err != nil {
		return domain.Session{}, err
	}
	var sess domain.Session
	if err := json.Unmarshal(plaintext, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("failed to unmarshal decrypted session: %w", err)
	}
	return sess, nil
}

func (c *AESCodec) open(ciphertext []byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, c.activeKey); err == nil {
		return plain, nil
	}
	for _, key := range c.fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
