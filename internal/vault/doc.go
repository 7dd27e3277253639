// Package vault provides the cryptographic primitives behind formvault's
// record files.
//
// # Key Derivation
//
// Each user's record key is derived from the credential hash held by the
// accounts package:
//
//	key = SHA-256(secret + "::widgets_form_key::" + username)
//
// The key is recomputed for every operation and never written to disk.
// When no credential exists yet a placeholder secret built from the username
// is used instead; IsFallback reports that case and it must be treated as
// offering no confidentiality.
//
// # Line Framing
//
// Every line of a record file is encrypted on its own:
//
//	ENCv1:<base64 IV>:<base64 ciphertext>
//
// The cipher is AES-256-CBC with PKCS#7 padding and a fresh 16-byte IV per
// line. Lines without the ENCv1: tag are legacy plaintext and are returned
// unchanged by DecryptLine.
//
// # Limitations
//
// CBC carries no authentication tag. A tampered line either fails to decrypt
// or decrypts to different bytes without detection.
package vault
