package idempotencysvc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKeyRejectsEmpty(t *testing.T) {
	err := ValidateKey("")
	require.ErrorIs(t, err, ErrKeyRequired)
}

func TestValidateKeyRejectsTooLong(t *testing.T) {
	err := ValidateKey(strings.Repeat("k", MaxKeyLen+1))
	require.ErrorIs(t, err, ErrKeyTooLong)
}

func TestValidateKeyAcceptsWithinBounds(t *testing.T) {
	assert.NoError(t, ValidateKey("a-valid-key"))
	assert.NoError(t, ValidateKey(strings.Repeat("k", MaxKeyLen)))
}
