package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a cache key of the form prefix:sha256(parts). The keyers
// route every dataset, frame, and artifact key through here so key length
// stays fixed no matter how large the chart spec or dataset identity grows.
// The full 256-bit digest is kept: frame keys for distinct chart states must
// never collide, since a collision would serve one chart's frames for
// another.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data. Chart states use it to fingerprint
// their spec bytes plus loaded datasets; identical fingerprints make a
// render pass a frame-cache lookup.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
