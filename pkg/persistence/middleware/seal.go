package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
)

// sealedPrefix marks an error text stored as ciphertext.
const sealedPrefix = "sealed:"

// SealConfig holds the keys for sealing and opening error texts.
type SealConfig struct {
	// ActiveKey is the key used for sealing new records.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open a
	// record, so keys can be rotated without rewriting the ledger.
	FallbackKeys [][]byte
}

type sealMiddleware struct {
	next   ports.RunLedger
	config SealConfig
}

// NewSealMiddleware creates a middleware that stores the error text of runs
// encrypted with AES-GCM. Tags, counters and outcome stay readable so the
// ledger can still be listed and filtered.
func NewSealMiddleware(config SealConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, fmt.Errorf("active key must be 32 bytes (AES-256), got %d", len(config.ActiveKey))
	}
	return func(next ports.RunLedger) ports.RunLedger {
		return &sealMiddleware{next: next, config: config}
	}, nil
}

func (m *sealMiddleware) Record(ctx context.Context, rec *domain.RunRecord) error {
	text, ok := errorText(rec)
	if !ok {
		return m.next.Record(ctx, rec)
	}
	ciphertext, err := seal([]byte(text), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to seal run error: %w", err)
	}
	return m.next.Record(ctx, withError(rec, sealedPrefix+base64.StdEncoding.EncodeToString(ciphertext)))
}

func (m *sealMiddleware) Load(ctx context.Context, id string) (*domain.RunRecord, error) {
	rec, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	text, ok := errorText(rec)
	if !ok {
		return rec, nil
	}
	encoded, sealed := strings.CutPrefix(text, sealedPrefix)
	if !sealed {
		// Recorded before sealing was enabled.
		return rec, nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sealed error: %w", err)
	}
	plain, err := openWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to open run %s: %w", id, err)
	}
	return withError(rec, string(plain)), nil
}

func (m *sealMiddleware) List(ctx context.Context, tag string) ([]string, error) {
	return m.next.List(ctx, tag)
}

func (m *sealMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

// Helpers

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func seal(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func openWithRotation(ciphertext, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	for _, key := range append([][]byte{activeKey}, fallbackKeys...) {
		if plain, err := open(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func open(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
