package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// OwnerPrefix returns the object key prefix for an owner. Raw owner ids never
// appear in storage paths.
func OwnerPrefix(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])
}
