package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey derives the stored lookup hash from a shared access key. The hash
// must be deterministic — it is the key the household row is found by — so
// this is a plain SHA-256, not a salted KDF.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
