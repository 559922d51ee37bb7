package engine

import "github.com/offerstack/coupon-service/internal/models"

// Candidate is a coupon that passed eligibility together with its unrounded
// discount for the cart under evaluation.
type Candidate struct {
	Coupon   models.Coupon
	Discount float64
}

// Best selects the winning candidate under the documented total order:
// higher discount first, then earlier end date, then lexicographically
// smaller code. The order is a deliberate tie-break so identical inputs
// always produce the same winner. Returns false when there are no candidates.
func Best(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if beats(c, best) {
			best = c
		}
	}
	return best, true
}

func beats(a, b Candidate) bool {
	if a.Discount != b.Discount {
		return a.Discount > b.Discount
	}
	if !a.Coupon.EndDate.Equal(b.Coupon.EndDate) {
		return a.Coupon.EndDate.Before(b.Coupon.EndDate)
	}
	return a.Coupon.Code < b.Coupon.Code
}
