// Package util provides content hashing used for ETags and render cache keys.
package util

import (
	"crypto/sha256"
	"encoding/hex"
)

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

// ETag quotes a content hash for use in an ETag header.
func ETag(content []byte) string {
	return `"` + ContentHash(content)[:16] + `"`
}
