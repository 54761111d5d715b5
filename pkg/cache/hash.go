package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a namespaced cache key: the object-class prefix ("grid",
// "artifact") followed by the SHA-256 of the JSON-encoded key parts, which
// are the graph content hash plus the options that shaped the object. The
// full 64-character digest keeps distinct option sets from colliding.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex-encoded SHA-256 of data. Graph content hashing and
// the file backend's shard paths both go through it, so a graph's key
// material is stable across backends.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
