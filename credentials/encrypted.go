package credentials

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the required master key length for EncryptedBackend.
const KeySize = 32

const hkdfInfo = "go-session-gateway/credentials/v1"

var _ Backend = (*EncryptedBackend)(nil)

// EncryptedBackend seals every value with XChaCha20-Poly1305 before handing it to the wrapped
// backend. The key name is bound as additional data, so a value copied to another key fails to open.
type EncryptedBackend struct {
	inner Backend
	aead  cipher.AEAD
}

// NewEncryptedBackend derives the sealing key from masterKey with HKDF-SHA256.
func NewEncryptedBackend(inner Backend, masterKey []byte) (*EncryptedBackend, error) {
	if inner == nil {
		return nil, errors.New("[NewEncryptedBackend] inner backend is required")
	}
	if len(masterKey) != KeySize {
		return nil, ErrInvalidKey
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, errors.Wrap(err, "[NewEncryptedBackend] deriving key")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "[NewEncryptedBackend] creating cipher")
	}

	return &EncryptedBackend{
		inner: inner,
		aead:  aead,
	}, nil
}

func (e *EncryptedBackend) Get(key string) (string, bool, error) {
	sealed, ok, err := e.inner.Get(key)
	if err != nil || !ok {
		return "", ok, err
	}

	data, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", false, errors.Wrap(ErrCorruptValue, key)
	}
	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return "", false, errors.Wrap(ErrCorruptValue, key)
	}
	plain, err := e.aead.Open(nil, data[:nonceSize], data[nonceSize:], []byte(key))
	if err != nil {
		return "", false, errors.Wrap(ErrCorruptValue, key)
	}
	return string(plain), true, nil
}

func (e *EncryptedBackend) Set(key, value string) error {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(value)+e.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "[EncryptedBackend Set] nonce")
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return e.inner.Set(key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (e *EncryptedBackend) Delete(key string) error {
	return e.inner.Delete(key)
}
