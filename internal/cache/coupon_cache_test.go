package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerstack/coupon-service/internal/models"
)

func TestCouponCacheRoundTrip(t *testing.T) {
	c := NewCouponCache(time.Minute)

	_, ok := c.Get("MISSING")
	assert.False(t, ok)

	c.Set(models.Coupon{Code: "SAVE10", DiscountValue: 10})
	got, ok := c.Get("SAVE10")
	require.True(t, ok)
	assert.Equal(t, 10.0, got.DiscountValue)
}

func TestCouponCacheExpiry(t *testing.T) {
	c := NewCouponCache(10 * time.Millisecond)
	c.Set(models.Coupon{Code: "SHORT"})

	_, ok := c.Get("SHORT")
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get("SHORT")
	assert.False(t, ok)
}
