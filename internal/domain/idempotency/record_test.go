package idempotency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashRequestIsDeterministic(t *testing.T) {
	body := []byte(`{"amount":500}`)
	assert.Equal(t, HashRequest("POST", "/transfers", body), HashRequest("POST", "/transfers", body))
}

func TestHashRequestDiffersOnDifferentBody(t *testing.T) {
	assert.NotEqual(t,
		HashRequest("POST", "/transfers", []byte(`{"amount":500}`)),
		HashRequest("POST", "/transfers", []byte(`{"amount":501}`)),
	)
}

func TestHashRequestDiffersOnDifferentPathWithSameBody(t *testing.T) {
	body := []byte(`{"amount":500}`)
	assert.NotEqual(t,
		HashRequest("POST", "/accounts", body),
		HashRequest("POST", "/transfers", body),
		"the same key and body must not collide across different operations",
	)
}

func TestRecordExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := Record{ExpiresAt: now.Add(-time.Second)}
	assert.True(t, r.Expired(now))

	r.ExpiresAt = now.Add(time.Second)
	assert.False(t, r.Expired(now))
}
