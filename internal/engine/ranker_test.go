package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerstack/coupon-service/internal/models"
)

func candidate(code string, discount float64, end time.Time) Candidate {
	return Candidate{
		Coupon:   models.Coupon{Code: code, EndDate: end},
		Discount: discount,
	}
}

func TestBestEmpty(t *testing.T) {
	_, ok := Best(nil)
	assert.False(t, ok)
}

func TestBestHighestDiscountWins(t *testing.T) {
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	best, ok := Best([]Candidate{
		candidate("A", 5, end),
		candidate("B", 12, end),
		candidate("C", 7, end),
	})
	require.True(t, ok)
	assert.Equal(t, "B", best.Coupon.Code)
}

func TestBestTieBreakEarlierEndDate(t *testing.T) {
	early := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)
	best, ok := Best([]Candidate{
		candidate("LATER", 10, late),
		candidate("SOONER", 10, early),
	})
	require.True(t, ok)
	assert.Equal(t, "SOONER", best.Coupon.Code, "expiring coupon preferred on equal discount")
}

func TestBestTieBreakLexicographicCode(t *testing.T) {
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	best, ok := Best([]Candidate{
		candidate("BBB", 10, end),
		candidate("AAA", 10, end),
	})
	require.True(t, ok)
	assert.Equal(t, "AAA", best.Coupon.Code)
}

func TestBestDeterministic(t *testing.T) {
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	cands := []Candidate{
		candidate("X", 9.5, end),
		candidate("Y", 9.5, end.Add(-time.Hour)),
		candidate("Z", 11, end),
	}
	first, ok := Best(cands)
	require.True(t, ok)
	second, ok := Best(cands)
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, "Z", first.Coupon.Code)
}
