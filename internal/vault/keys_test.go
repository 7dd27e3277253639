package vault

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKeyIsDeterministic(t *testing.T) {
	a := DeriveKey("jane", "$2y$10$hash")
	b := DeriveKey("jane", "$2y$10$hash")
	assert.Equal(t, a, b)
}

func TestDeriveKeyScopedToUserAndSecret(t *testing.T) {
	base := DeriveKey("jane", "hash")
	assert.NotEqual(t, base, DeriveKey("john", "hash"))
	assert.NotEqual(t, base, DeriveKey("jane", "other"))
}

func TestDeriveKeyMatchesStoredFormat(t *testing.T) {
	want := sha256.Sum256([]byte("hash::widgets_form_key::jane"))
	assert.Equal(t, Key(want), DeriveKey("jane", "hash"))
}

func TestDeriveKeyFallback(t *testing.T) {
	assert.True(t, IsFallback(""))
	assert.False(t, IsFallback("hash"))

	want := sha256.Sum256([]byte("fallback-secret-jane::widgets_form_key::jane"))
	assert.Equal(t, Key(want), DeriveKey("jane", ""))
	assert.Equal(t, DeriveKey("jane", "fallback-secret-jane"), DeriveKey("jane", ""))
}

func TestKeyWipe(t *testing.T) {
	k := DeriveKey("jane", "hash")
	k.Wipe()
	assert.Equal(t, Key{}, k)
}
