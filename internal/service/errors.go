package service

import "errors"

// Redemption and lookup outcomes surfaced to callers. Handlers map each to a
// distinct HTTP response; none are retried internally except that callers may
// retry ErrTransient.
var (
	// ErrCouponNotFound is returned when no coupon exists for the code.
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrInvalidRequest covers malformed input and coupons outside their validity window.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotEligible is returned when a rule predicate failed for the user/cart.
	ErrNotEligible = errors.New("user or cart not eligible for coupon")
	// ErrZeroDiscount is returned when the coupon computes to no discount, e.g. an empty cart.
	ErrZeroDiscount = errors.New("coupon gives zero discount for this cart")
	// ErrUsageLimitReached indicates the per-user usage cap is exhausted.
	ErrUsageLimitReached = errors.New("usage limit exceeded for this user")
	// ErrDuplicateCode is returned when creating a coupon whose code already exists.
	ErrDuplicateCode = errors.New("coupon code already exists")
	// ErrTransient marks storage contention (serialization failure, deadlock).
	// The failed call left no usage row; it is safe to retry.
	ErrTransient = errors.New("transient storage conflict")
)
