package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef")

func TestQQTea_RoundTrip(t *testing.T) {
	c, err := NewQQTea(testKey)
	require.NoError(t, err)

	for _, n := range []int{0, 1, 7, 8, 9, 15, 16, 100, 1024} {
		plain := bytes.Repeat([]byte{0xAB}, n)
		enc, err := c.Encrypt(plain)
		require.NoError(t, err)
		assert.Zero(t, len(enc)%8, "len=%d", n)

		dec, err := c.Decrypt(enc)
		require.NoError(t, err, "len=%d", n)
		assert.Equal(t, plain, dec, "len=%d", n)
	}
}

func TestQQTea_WrongKey(t *testing.T) {
	c, _ := NewQQTea(testKey)
	other, _ := NewQQTea([]byte("fedcba9876543210"))

	enc, err := c.Encrypt([]byte("session tickets"))
	require.NoError(t, err)

	dec, err := other.Decrypt(enc)
	if err == nil {
		assert.NotEqual(t, []byte("session tickets"), dec)
	}
}

func TestQQTea_InvalidInput(t *testing.T) {
	c, _ := NewQQTea(testKey)

	_, err := c.Decrypt(make([]byte, 12))
	assert.True(t, errors.Is(err, ErrInvalidCipherText))

	_, err = NewQQTea([]byte("short"))
	assert.Error(t, err)
}
