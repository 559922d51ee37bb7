// Package engine holds the pure coupon evaluation core: cart valuation,
// eligibility rules, discount computation and candidate ranking. Nothing in
// here touches storage or clocks; callers supply all state.
package engine

import (
	"math"
	"strings"

	"github.com/offerstack/coupon-service/internal/models"
)

// CartValue reduces a cart to its monetary total. A nil or empty item list
// values to 0; it never fails.
func CartValue(cart models.Cart) float64 {
	var total float64
	for _, it := range cart.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

// IsEligible evaluates the coupon's rule set against the user and cart.
// Every present predicate must hold; an absent predicate passes. Evaluation
// short-circuits on the first failing rule.
func IsEligible(rules models.EligibilityRules, user models.UserProfile, cart models.Cart) bool {
	if len(rules.AllowedUserTiers) > 0 && !contains(rules.AllowedUserTiers, user.UserTier) {
		return false
	}
	if rules.MinLifetimeSpend != nil && user.LifetimeSpend < *rules.MinLifetimeSpend {
		return false
	}
	if rules.MinOrdersPlaced != nil && user.OrdersPlaced < *rules.MinOrdersPlaced {
		return false
	}
	if rules.FirstOrderOnly && user.OrdersPlaced != 0 {
		return false
	}
	if len(rules.AllowedCountries) > 0 && !contains(rules.AllowedCountries, user.Country) {
		return false
	}
	if rules.MinCartValue != nil && CartValue(cart) < *rules.MinCartValue {
		return false
	}
	if rules.MinItemsCount != nil {
		var count int
		for _, it := range cart.Items {
			count += it.Quantity
		}
		if count < *rules.MinItemsCount {
			return false
		}
	}
	if len(rules.ApplicableCategories) > 0 {
		found := false
		for _, it := range cart.Items {
			if contains(rules.ApplicableCategories, it.Category) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(rules.ExcludedCategories) > 0 {
		for _, it := range cart.Items {
			if contains(rules.ExcludedCategories, it.Category) {
				return false
			}
		}
	}
	return true
}

// Discount computes the coupon's monetary discount for the cart, assuming
// eligibility has already been established. FLAT discounts are clamped to the
// cart value; PERCENT discounts honour the optional cap. Unknown discount
// types yield 0 rather than an error so callers can filter them out.
//
// The result is intentionally unrounded: rounding happens once, at the
// reporting edge, so ranking never compares lossy values.
func Discount(c models.Coupon, cart models.Cart) float64 {
	value := CartValue(cart)
	switch {
	case strings.EqualFold(c.DiscountType, models.DiscountFlat):
		return math.Min(c.DiscountValue, value)
	case strings.EqualFold(c.DiscountType, models.DiscountPercent):
		raw := value * (c.DiscountValue / 100)
		if c.MaxDiscountAmount != nil {
			return math.Min(raw, *c.MaxDiscountAmount)
		}
		return raw
	}
	return 0
}

// RoundMoney rounds to 2 decimal places for external reporting.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
