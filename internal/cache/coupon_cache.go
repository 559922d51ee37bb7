// Package cache holds a small in-process read-through cache for coupon
// lookups by code. Coupons are immutable once created, so entries only need
// a TTL to bound how long a freshly created coupon can be missed.
package cache

import (
	"sync"
	"time"

	"github.com/offerstack/coupon-service/internal/models"
)

type entry struct {
	coupon    models.Coupon
	expiresAt time.Time
}

type CouponCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	store map[string]entry
}

func NewCouponCache(ttl time.Duration) *CouponCache {
	return &CouponCache{
		ttl:   ttl,
		store: make(map[string]entry),
	}
}

func (c *CouponCache) Get(code string) (models.Coupon, bool) {
	c.mu.RLock()
	e, ok := c.store[code]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return models.Coupon{}, false
	}
	return e.coupon, true
}

func (c *CouponCache) Set(coupon models.Coupon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[coupon.Code] = entry{coupon: coupon, expiresAt: time.Now().Add(c.ttl)}
}
