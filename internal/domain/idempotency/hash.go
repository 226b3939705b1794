package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
)

// sha256Hex is grounded on the teacher's internal/pkg/idempotency key
// derivation (SHA-256 over a canonical string), applied here to the
// method|path|body fingerprint instead of the teacher's formatted operation
// tuple.
func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
