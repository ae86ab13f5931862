package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the [Hash] of the JSON encoding of v. Values that cannot
// be encoded hash as their error text, which still keeps distinct inputs
// apart for the key types used here.
func HashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return Hash([]byte(err.Error()))
	}
	return Hash(data)
}

// hashKey returns "<kind>:<HashJSON(parts)>".
func hashKey(kind string, parts ...any) string {
	return kind + ":" + HashJSON(parts)
}
