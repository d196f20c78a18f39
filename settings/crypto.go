package settings

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	keySize = 32

	algorithmAESGCM = "AES-256-GCM"
)

// Argon2id cost parameters for DeriveKey.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// keySalt is fixed so the same passphrase always opens the same document.
var keySalt = []byte("testgen settings credentials v1")

var (
	// ErrDecrypt is returned when an encrypted document cannot be opened,
	// usually because the passphrase changed.
	ErrDecrypt = errors.New("failed to decrypt credentials")

	// ErrPassphraseRequired is returned when encrypted credentials are loaded
	// without a passphrase.
	ErrPassphraseRequired = errors.New("credentials are encrypted but no passphrase is configured")
)

// DeriveKey derives a 32 byte AES key from a passphrase with Argon2id.
func DeriveKey(passphrase string) []byte {
	return argon2.IDKey([]byte(passphrase), keySalt, argonTime, argonMemory, argonThreads, keySize)
}

// encryptedDocument is the stored form of an encrypted document.
type encryptedDocument struct {
	Algorithm string `json:"alg"`
	Data      string `json:"data"`
}

// Encrypt seals plaintext with AES-256-GCM and returns the JSON envelope.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return json.Marshal(encryptedDocument{
		Algorithm: algorithmAESGCM,
		Data:      base64.StdEncoding.EncodeToString(sealed),
	})
}

// Decrypt opens an envelope produced by Encrypt.
func Decrypt(key, envelope []byte) ([]byte, error) {
	doc, ok := parseEnvelope(envelope)
	if !ok {
		return nil, fmt.Errorf("%w: not an encrypted document", ErrDecrypt)
	}

	sealed, err := base64.StdEncoding.DecodeString(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}

// IsEncrypted reports whether data is an envelope produced by Encrypt.
func IsEncrypted(data []byte) bool {
	_, ok := parseEnvelope(data)
	return ok
}

func parseEnvelope(data []byte) (encryptedDocument, bool) {
	var doc encryptedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, false
	}
	return doc, doc.Algorithm == algorithmAESGCM && doc.Data != ""
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes", keySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
