package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns a hex string built from size random bytes, so the
// result is 2*size characters long. The bytes come from crypto/rand; a failed
// read surfaces as the generator's error.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes the slice in place. Call it when a buffer held secret
// material (a password, key bytes) that should not outlive its use. A nil
// slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
