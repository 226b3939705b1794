// Package idempotency defines the HTTP-layer idempotency cache row. It is
// the first line of defence against duplicate money movement (spec.md
// §4.9); the second line lives on the Transfer aggregate's unique
// idempotency key column, which this package knows nothing about.
package idempotency

import "time"

// Record caches a prior response against an idempotency key and a hash of
// the method, path and body of the request that produced it, so a replay
// with the same key and the same request returns the stored response
// without re-running the handler, while a replay with the same key and a
// different request is rejected.
type Record struct {
	Key          string
	RequestHash  string
	ResponseCode int
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

func (r Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// HashRequest returns a deterministic digest of method | path | body (spec.md
// §4.9's request fingerprint), used to detect whether a repeated idempotency
// key is being reused for a different logical request. Folding method and
// path into the digest is what stops the same key/body pair from replaying
// across two different operations, e.g. POST /accounts and POST /transfers.
func HashRequest(method, path string, body []byte) string {
	data := make([]byte, 0, len(method)+1+len(path)+1+len(body))
	data = append(data, method...)
	data = append(data, '|')
	data = append(data, path...)
	data = append(data, '|')
	data = append(data, body...)
	return sha256Hex(data)
}
