package helpers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 12
)

var ErrPasswordLength = fmt.Errorf("password must be %d-%d characters", MinPasswordLength, MaxPasswordLength)

// CheckPlainPassword validates the plaintext length bounds. The check runs
// on the raw value before hashing; stored digests are always 64 hex chars.
func CheckPlainPassword(plain string) error {
	if len(plain) < MinPasswordLength || len(plain) > MaxPasswordLength {
		return ErrPasswordLength
	}
	return nil
}

// HashPassword returns the hex-encoded SHA-256 digest of plain combined
// with salt. Deterministic: the same inputs always produce the same digest.
func HashPassword(plain, salt string) string {
	sum := sha256.Sum256([]byte(plain + salt))
	return hex.EncodeToString(sum[:])
}

// CompareHashAndPassword recomputes the salted digest from plain and
// compares it with hash in constant time.
func CompareHashAndPassword(hash, plain, salt string) bool {
	computed := HashPassword(plain, salt)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(computed)) == 1
}

var errNoSalt = errors.New("password salt not configured")

// RequireSalt guards service start-up paths that must not run without a salt.
func RequireSalt(salt string) error {
	if salt == "" {
		return errNoSalt
	}
	return nil
}
