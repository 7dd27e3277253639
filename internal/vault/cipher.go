package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	kerrors "github.com/PolarWolf314/formvault/internal/errors"
)

// Tag is the framing prefix of an encrypted line.
const Tag = "ENCv1:"

// Outcome classifies the result of DecryptLine.
type Outcome int

const (
	// Decrypted means the line carried the tag and decrypted under the key.
	Decrypted Outcome = iota
	// Legacy means the line carried no tag and was returned unchanged.
	Legacy
	// Failed means the line carried the tag but could not be decrypted.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Decrypted:
		return "decrypted"
	case Legacy:
		return "legacy"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the typed outcome of decrypting a single line.
// Plaintext is only meaningful when Outcome is Decrypted or Legacy;
// an empty Plaintext with Outcome Decrypted is a valid empty line.
type Result struct {
	Plaintext string
	Outcome   Outcome
	Err       error
}

// OK reports whether Plaintext holds usable line content.
func (r Result) OK() bool {
	return r.Outcome != Failed
}

// IsEncrypted reports whether line carries the encrypted framing tag.
func IsEncrypted(line string) bool {
	return strings.HasPrefix(line, Tag)
}

// EncryptLine encrypts plaintext under key with a fresh random IV and returns the framed line.
func EncryptLine(key Key, plaintext string) (string, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generating iv: %w", err)
	}

	padded := pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	var b strings.Builder
	b.Grow(len(Tag) + base64.StdEncoding.EncodedLen(len(iv)) + 1 + base64.StdEncoding.EncodedLen(len(ciphertext)))
	b.WriteString(Tag)
	b.WriteString(base64.StdEncoding.EncodeToString(iv))
	b.WriteByte(':')
	b.WriteString(base64.StdEncoding.EncodeToString(ciphertext))
	return b.String(), nil
}

// DecryptLine decrypts a framed line under key.
// Untagged lines are returned unchanged with Outcome Legacy.
func DecryptLine(key Key, line string) Result {
	if !IsEncrypted(line) {
		return Result{Plaintext: line, Outcome: Legacy}
	}

	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 {
		return failed(kerrors.ErrInvalidFraming)
	}

	iv, err := base64.StdEncoding.Strict().DecodeString(parts[1])
	if err != nil {
		return failed(fmt.Errorf("%w: iv: %v", kerrors.ErrInvalidFraming, err))
	}
	ciphertext, err := base64.StdEncoding.Strict().DecodeString(parts[2])
	if err != nil {
		return failed(fmt.Errorf("%w: ciphertext: %v", kerrors.ErrInvalidFraming, err))
	}
	if len(iv) != aes.BlockSize {
		return failed(fmt.Errorf("%w: iv is %d bytes", kerrors.ErrInvalidFraming, len(iv)))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return failed(fmt.Errorf("%w: ciphertext is %d bytes", kerrors.ErrInvalidFraming, len(ciphertext)))
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return failed(err)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	plain, err = unpad(plain, aes.BlockSize)
	if err != nil {
		return failed(err)
	}

	return Result{Plaintext: string(plain), Outcome: Decrypted}
}

func failed(err error) Result {
	return Result{Outcome: Failed, Err: fmt.Errorf("%w: %w", kerrors.ErrDecryptFailed, err)}
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append(make([]byte, 0, len(data)+n), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, kerrors.ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, kerrors.ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, kerrors.ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}
