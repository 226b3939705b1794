package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
)

func TestNewCurrency(t *testing.T) {
	c, err := NewCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, Currency("USD"), c)

	_, err = NewCurrency("US")
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeValidation, de.Code)
}

func TestAmountAddSubtract(t *testing.T) {
	usd := Currency("USD")
	a := New(500, usd)
	b := New(300, usd)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(800), sum.Minor)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(200), diff.Minor)
}

func TestSubtractInsufficientFunds(t *testing.T) {
	usd := Currency("USD")
	a := New(100, usd)
	b := New(200, usd)

	_, err := a.Subtract(b)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeInsufficientFunds, de.Code)
}

func TestAddOverflow(t *testing.T) {
	usd := Currency("USD")
	a := New(math.MaxInt64, usd)
	b := New(1, usd)

	_, err := a.Add(b)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeBalanceOverflow, de.Code)
}

func TestAddCrossCurrencyPanics(t *testing.T) {
	a := New(100, Currency("USD"))
	b := New(100, Currency("EUR"))

	assert.Panics(t, func() {
		_, _ = a.Add(b)
	})
}

func TestRequireSameCurrency(t *testing.T) {
	a := New(100, Currency("USD"))
	b := New(100, Currency("EUR"))

	err := RequireSameCurrency(a, b)
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeCurrencyMismatch, de.Code)

	assert.NoError(t, RequireSameCurrency(a, New(50, Currency("USD"))))
}

func TestAmountPredicates(t *testing.T) {
	zero := New(0, Currency("USD"))
	positive := New(1, Currency("USD"))

	assert.True(t, zero.IsZero())
	assert.False(t, positive.IsZero())
	assert.True(t, positive.GreaterThanZero())
	assert.False(t, zero.GreaterThanZero())
	assert.True(t, positive.Equal(New(1, Currency("USD"))))
	assert.False(t, positive.Equal(New(1, Currency("EUR"))))
}
