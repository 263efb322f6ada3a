package keystore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// saltEntry holds the per-installation argon2 salt. It lives in the
// inner store alongside the sealed entries but is itself plaintext.
const saltEntry = "keystore.salt"

const saltSize = 16

// EncryptedStore seals every entry with AES-256-GCM under a key
// derived from a local passcode. A wrong passcode surfaces as a Get
// error, which the session layer treats the same as "no entry" — never
// a hard failure.
type EncryptedStore struct {
	inner Store
	key   []byte
}

// NewEncryptedStore derives the sealing key from passcode using the
// salt persisted in inner, generating the salt on first use.
func NewEncryptedStore(ctx context.Context, inner Store, passcode string) (*EncryptedStore, error) {
	if passcode == "" {
		return nil, fmt.Errorf("keystore: passcode must not be empty")
	}

	salt, err := inner.Get(ctx, saltEntry)
	if err != nil {
		return nil, fmt.Errorf("keystore: read salt: %w", err)
	}
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("keystore: generate salt: %w", err)
		}
		if err := inner.Set(ctx, saltEntry, salt); err != nil {
			return nil, fmt.Errorf("keystore: persist salt: %w", err)
		}
	}

	key := argon2.IDKey([]byte(passcode), salt, 1, 64*1024, 4, 32)
	return &EncryptedStore{inner: inner, key: key}, nil
}

func (s *EncryptedStore) seal(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// nonce prefixes the ciphertext so open can split them back apart
	return append(nonce, aesgcm.Seal(nil, nonce, plaintext, nil)...), nil
}

func (s *EncryptedStore) open(blob []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(blob) < ns {
		return nil, fmt.Errorf("sealed value too short")
	}
	return aesgcm.Open(nil, blob[:ns], blob[ns:], nil)
}

func (s *EncryptedStore) Get(ctx context.Context, name string) ([]byte, error) {
	blob, err := s.inner.Get(ctx, name)
	if err != nil || blob == nil {
		return nil, err
	}

	plain, err := s.open(blob)
	if err != nil {
		return nil, fmt.Errorf("keystore: unseal %s: %w", name, err)
	}
	return plain, nil
}

func (s *EncryptedStore) Set(ctx context.Context, name string, value []byte) error {
	blob, err := s.seal(value)
	if err != nil {
		return fmt.Errorf("keystore: seal %s: %w", name, err)
	}
	return s.inner.Set(ctx, name, blob)
}

func (s *EncryptedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}
