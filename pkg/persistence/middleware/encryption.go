package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// envelopeModel marks a stored document as an encryption envelope rather than
// a real scene. The ciphertext rides in the marker record's ID field since a
// scene document has no free-form payload slot.
const envelopeModel = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SceneStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts scene documents
// with AES-GCM before they reach the underlying store. The store only ever
// sees an opaque envelope: no node models, positions, or wiring.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.SceneStore) ports.SceneStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, sceneID string, doc *domain.SceneDocument) error {
	plainText, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt scene: %w", err)
	}

	envelope := &domain.SceneDocument{
		Nodes: []domain.NodeRecord{{
			ID:    domain.NodeID(base64.StdEncoding.EncodeToString(ciphertext)),
			Model: envelopeModel,
		}},
	}

	return m.next.Save(ctx, sceneID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sceneID string) (*domain.SceneDocument, error) {
	envelope, err := m.next.Load(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	// Fail closed: a store configured with encryption only accepts envelopes,
	// never plain documents saved before encryption was enabled.
	if len(envelope.Nodes) != 1 || envelope.Nodes[0].Model != envelopeModel {
		return nil, errors.New("scene is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(string(envelope.Nodes[0].ID))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt scene: %w", err)
	}

	var doc domain.SceneDocument
	if err := json.Unmarshal(plainText, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted scene: %w", err)
	}

	return &doc, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sceneID string) error {
	return m.next.Delete(ctx, sceneID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
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

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
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
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
