package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipmunk/internal/crypto"
)

func TestSealOpen(t *testing.T) {
	k, err := crypto.DeriveKey("s3cret")
	require.NoError(t, err)

	sealed, err := k.Seal([]byte("hello"))
	require.NoError(t, err)

	k2, err := crypto.DeriveKey("s3cret")
	require.NoError(t, err)
	plain, err := k2.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))
}

func TestOpenWrongToken(t *testing.T) {
	k, _ := crypto.DeriveKey("a")
	other, _ := crypto.DeriveKey("b")

	sealed, err := k.Seal([]byte("hello"))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, crypto.ErrDecrypt)

	_, err = k.Open([]byte("short"))
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestDeriveKeyEmpty(t *testing.T) {
	_, err := crypto.DeriveKey("")
	assert.Error(t, err)
}
