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

	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are older keys tried when decryption with ActiveKey fails,
	// so keys can be rotated without dropping live sessions.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SessionStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals sessions with AES-GCM.
// Registration sessions hold the plaintext password until the account is
// created, so deployments with a shared backend should enable it.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

// ErrUnreadableSession is returned when a stored session cannot be opened
// with any configured key, or was stored without a sealed payload.
var ErrUnreadableSession = errors.New("session cannot be decrypted")

func (m *encryptionMiddleware) Save(ctx context.Context, session *domain.Session) error {
	plainText, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	sealed, err := sealSession(m.config.ActiveKey, session.ID, plainText)
	if err != nil {
		return fmt.Errorf("failed to encrypt session %s: %w", session.ID, err)
	}

	// The envelope keeps only what the backend needs for indexing and expiry.
	envelope := &domain.Session{
		ID:        session.ID,
		Kind:      session.Kind,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		Sealed:    base64.StdEncoding.EncodeToString(sealed),
	}
	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Fail closed: a plain session under an encrypting store is treated as corrupt.
	if envelope.Sealed == "" {
		return nil, fmt.Errorf("session %s has no sealed payload: %w", sessionID, ErrUnreadableSession)
	}
	sealed, err := base64.StdEncoding.DecodeString(envelope.Sealed)
	if err != nil {
		return nil, fmt.Errorf("session %s payload is not base64: %w", sessionID, ErrUnreadableSession)
	}

	plainText, err := m.open(sessionID, sealed)
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(plainText, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// open tries the active key, then each fallback key in order.
func (m *encryptionMiddleware) open(sessionID string, sealed []byte) ([]byte, error) {
	keys := append([][]byte{m.config.ActiveKey}, m.config.FallbackKeys...)
	for _, key := range keys {
		if plain, err := openSession(key, sessionID, sealed); err == nil {
			return plain, nil
		}
	}
	return nil, fmt.Errorf("session %s: %w", sessionID, ErrUnreadableSession)
}

func sessionAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// sealSession encrypts payload as nonce||ciphertext. The session id is bound
// as additional data, so a payload copied under another id does not open.
func sealSession(key []byte, sessionID string, payload []byte) ([]byte, error) {
	aead, err := sessionAEAD(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, payload, []byte(sessionID)), nil
}

func openSession(key []byte, sessionID string, sealed []byte) ([]byte, error) {
	aead, err := sessionAEAD(key)
	if err != nil {
		return nil, err
	}
	n := aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrUnreadableSession
	}
	return aead.Open(nil, sealed[:n], sealed[n:], []byte(sessionID))
}
