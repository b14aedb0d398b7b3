// Package crypto encrypts wire messages exchanged over TCP.
//
// A Key is derived from the shared token with HKDF-SHA256 and used with NaCl
// secretbox. Each sealed message is
//
//	[ 24-byte random nonce ][ secretbox ciphertext ]
//
// The local IPC socket is owner-restricted and carries plaintext; only the
// TCP listener uses a Key.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var (
	hkdfInfo = []byte("clipmunk-wire-v1")

	// ErrDecrypt is returned when a message cannot be opened with the key,
	// usually because the peers use different tokens.
	ErrDecrypt = errors.New("crypto: decryption failed (wrong token?)")
)

// Key is a secretbox key.
type Key [32]byte

// DeriveKey derives the Key for token. Both peers must use the same token.
func DeriveKey(token string) (*Key, error) {
	if token == "" {
		return nil, errors.New("crypto: empty token")
	}
	var k Key
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(token), nil, hkdfInfo), k[:]); err != nil {
		return nil, fmt.Errorf("crypto: derive key: %w", err)
	}
	return &k, nil
}

// Seal encrypts plaintext under a fresh random nonce.
func (k *Key) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("crypto: nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, (*[32]byte)(k)), nil
}

// Open decrypts the output of Seal.
func (k *Key) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrDecrypt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, (*[32]byte)(k))
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}
