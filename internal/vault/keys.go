package vault

import (
	"crypto/sha256"
)

// KeySize is the length of a derived record key in bytes.
const KeySize = 32

const (
	keyDomainTag   = "::widgets_form_key::"
	fallbackPrefix = "fallback-secret-"
)

// Key is a derived per-user record key.
type Key [KeySize]byte

// DeriveKey derives the record key for username from the stored credential secret.
// An empty secret derives from a username-only placeholder, see IsFallback.
func DeriveKey(username, secret string) Key {
	if secret == "" {
		secret = fallbackPrefix + username
	}
	return Key(sha256.Sum256([]byte(secret + keyDomainTag + username)))
}

// IsFallback reports whether DeriveKey would use the username-only placeholder for secret.
func IsFallback(secret string) bool {
	return secret == ""
}

// Wipe zeroes the key in place.
func (k *Key) Wipe() {
	for i := range k {
		k[i] = 0
	}
}
