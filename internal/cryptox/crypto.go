// Package cryptox implements the cryptographic primitives behind the account
// vault: password-based key derivation, authenticated encryption of JSON
// payloads into self-contained blobs, hashing and random token generation.
//
// Keys are always re-derived from the password for every operation; nothing
// in this package caches derived key material.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/waxworks/vinylvault/internal/common"
)

// Fixed format parameters. These are part of the stored blob layout and must
// not change without a format version bump.
const (
	SaltSize   = 32
	NonceSize  = 12
	KeySize    = 32
	TagSize    = 16
	Iterations = 100_000
)

// AlgorithmName describes the cipher suite for envelope metadata.
const AlgorithmName = "AES-256-GCM"

// KDFName describes the key derivation function for envelope metadata.
const KDFName = "PBKDF2-SHA256"

// DeriveKey derives a 32-byte AES key from a password and salt using
// PBKDF2-HMAC-SHA256 with a fixed iteration count. The same (password, salt)
// pair always yields the same key.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, Iterations, KeySize, sha256.New)
}

// Encrypt serializes v to JSON and encrypts it with a key derived from
// password. A fresh random salt and nonce are generated on every call, so
// encrypting the same value twice never yields the same blob.
//
// The returned string is base64(salt ‖ nonce ‖ ciphertext+tag); everything
// needed to decrypt it, except the password, is contained in the blob itself.
func Encrypt(v any, password []byte) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	salt := common.GenerateRandByteArray(SaltSize)
	nonce := common.GenerateRandByteArray(NonceSize)

	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	blob := make([]byte, 0, SaltSize+NonceSize+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt: it decodes the blob, re-derives the key from
// password and the embedded salt, authenticates and decrypts the payload and
// unmarshals it into v.
//
// Every failure mode (bad encoding, truncated blob, wrong password, tampered
// ciphertext) returns the bare common.ErrDecryption sentinel. The caller must
// not be able to tell a wrong password from corrupted data.
func Decrypt(blob string, password []byte, v any) error {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return common.ErrDecryption
	}
	if len(raw) < SaltSize+NonceSize+TagSize {
		return common.ErrDecryption
	}

	salt := raw[:SaltSize]
	nonce := raw[SaltSize : SaltSize+NonceSize]
	ciphertext := raw[SaltSize+NonceSize:]

	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return common.ErrDecryption
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return common.ErrDecryption
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return common.ErrDecryption
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return common.ErrDecryption
	}
	return nil
}

// Hash returns the SHA-256 digest of s as lowercase hex.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// RandomToken returns byteLength cryptographically random bytes hex-encoded.
// Used for session ids and verification tokens (32 bytes each).
func RandomToken(byteLength int) (string, error) {
	return common.MakeRandHexString(byteLength)
}

// DataHash serializes v with encoding/json and returns the SHA-256 hex digest
// of the serialization. The same serialization rules apply when producing and
// verifying a hash: for structs, field declaration order; for maps, sorted
// keys (encoding/json sorts them). Callers hash Go structs, never free-form
// maps, so the serialization is stable across runs.
func DataHash(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(string(data)), nil
}
