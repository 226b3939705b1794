package statement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
)

// Get's validation runs before it ever touches a repository, so these
// cases exercise it against a zero-value Service whose repositories are
// nil — any repository use past validation would panic and fail the test.
func TestGetRejectsInvertedDateRange(t *testing.T) {
	s := &Service{}
	_, err := s.Get(context.Background(), Query{AccountID: "acc-1", From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), PerPage: 20})
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeInvalidDateRange, de.Code)
}

func TestGetRejectsEqualFromTo(t *testing.T) {
	s := &Service{}
	same := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.Get(context.Background(), Query{AccountID: "acc-1", From: same, To: same, PerPage: 20})
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeInvalidDateRange, de.Code)
}

func TestGetRejectsRangeOverMaxDays(t *testing.T) {
	s := &Service{}
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(2, 0, 0)
	_, err := s.Get(context.Background(), Query{AccountID: "acc-1", From: from, To: to, PerPage: 20})
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeInvalidDateRange, de.Code)
}

func TestGetRejectsPerPageOutOfBounds(t *testing.T) {
	s := &Service{}
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	_, err := s.Get(context.Background(), Query{AccountID: "acc-1", From: from, To: to, PerPage: 0})
	require.Error(t, err)
	var de *domainerr.Error
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeValidation, de.Code)

	_, err = s.Get(context.Background(), Query{AccountID: "acc-1", From: from, To: to, PerPage: 101})
	require.Error(t, err)
	require.True(t, domainerr.As(err, &de))
	assert.Equal(t, domainerr.CodeValidation, de.Code)
}
