package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/offerstack/coupon-service/internal/concurrency"
	"github.com/offerstack/coupon-service/internal/engine"
	"github.com/offerstack/coupon-service/internal/models"
)

// CouponStore captures the coupon reads and writes the service needs.
// Implemented by repository.CouponRepo; tests substitute stubs.
type CouponStore interface {
	Create(ctx context.Context, c *models.Coupon) error
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	ListActive(ctx context.Context, at time.Time) ([]models.Coupon, error)
}

// UsageLedger records redemptions. Redeem must atomically check the per-user
// cap and append the usage row, returning ErrUsageLimitReached when the cap
// is already consumed and ErrTransient on storage contention.
type UsageLedger interface {
	Redeem(ctx context.Context, couponID int64, userID string, limit int) error
}

// CouponCache is an optional read-through cache for code lookups.
type CouponCache interface {
	Get(code string) (models.Coupon, bool)
	Set(coupon models.Coupon)
}

// RedemptionResult is the successful outcome of Redeem. Discount is rounded
// to 2 decimal places, this being the reporting boundary.
type RedemptionResult struct {
	Code     string  `json:"applied"`
	Discount float64 `json:"discount"`
}

const defaultRankWorkers = 4

type CouponService struct {
	coupons CouponStore
	usage   UsageLedger
	cache   CouponCache // may be nil
	now     func() time.Time
	workers int
}

func NewCouponService(coupons CouponStore, usage UsageLedger, cache CouponCache) *CouponService {
	return &CouponService{
		coupons: coupons,
		usage:   usage,
		cache:   cache,
		now:     time.Now,
		workers: defaultRankWorkers,
	}
}

// WithClock overrides the time source. Tests use it to pin the window checks.
func (s *CouponService) WithClock(now func() time.Time) *CouponService {
	s.now = now
	return s
}

// Create persists a new coupon after normalising its discount type.
func (s *CouponService) Create(ctx context.Context, c *models.Coupon) error {
	c.Code = strings.TrimSpace(c.Code)
	if c.Code == "" || len(c.Code) > models.CodeMaxLen {
		return fmt.Errorf("coupon code required (max %d chars): %w", models.CodeMaxLen, ErrInvalidRequest)
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("endDate precedes startDate: %w", ErrInvalidRequest)
	}
	c.DiscountType = strings.ToUpper(strings.TrimSpace(c.DiscountType))
	return s.coupons.Create(ctx, c)
}

// List returns all coupons, newest first.
func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.coupons.List(ctx)
}

// BestCoupon evaluates every currently active coupon against the user and
// cart and returns the single best candidate, or nil when none applies.
//
// Candidates are evaluated concurrently into an index-addressed slice, so the
// result is deterministic regardless of goroutine scheduling. Per-user usage
// caps are deliberately not consulted here: that would cost a ledger read per
// candidate, and redemption re-checks the cap authoritatively anyway. A
// surfaced coupon the user has exhausted is rejected at redeem time.
func (s *CouponService) BestCoupon(ctx context.Context, user models.UserProfile, cart models.Cart) (*engine.Candidate, error) {
	now := s.now()
	coupons, err := s.coupons.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list active coupons: %w", err)
	}

	results := make([]*engine.Candidate, len(coupons))
	concurrency.ForEach(ctx, s.workers, len(coupons), func(_ context.Context, i int) {
		c := coupons[i]
		// Storage already filters by window, but tolerate a superset.
		if !c.ActiveAt(now) {
			return
		}
		if !engine.IsEligible(c.Eligibility, user, cart) {
			return
		}
		discount := engine.Discount(c, cart)
		if discount <= 0 {
			return
		}
		results[i] = &engine.Candidate{Coupon: c, Discount: discount}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := make([]engine.Candidate, 0, len(results))
	for _, r := range results {
		if r != nil {
			candidates = append(candidates, *r)
		}
	}
	best, ok := engine.Best(candidates)
	if !ok {
		return nil, nil
	}
	return &best, nil
}

// Redeem validates the coupon for the user and cart, then consumes one unit
// of the user's allowance. Every failure leaves the usage ledger untouched.
func (s *CouponService) Redeem(ctx context.Context, user models.UserProfile, code string, cart models.Cart) (RedemptionResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return RedemptionResult{}, fmt.Errorf("code required: %w", ErrInvalidRequest)
	}
	if strings.TrimSpace(user.UserID) == "" {
		return RedemptionResult{}, fmt.Errorf("user must include userId: %w", ErrInvalidRequest)
	}

	coupon, err := s.lookup(ctx, code)
	if err != nil {
		return RedemptionResult{}, err
	}
	if !coupon.ActiveAt(s.now()) {
		return RedemptionResult{}, fmt.Errorf("coupon not valid at this time: %w", ErrInvalidRequest)
	}
	if !engine.IsEligible(coupon.Eligibility, user, cart) {
		return RedemptionResult{}, ErrNotEligible
	}
	discount := engine.Discount(*coupon, cart)
	if discount <= 0 {
		return RedemptionResult{}, ErrZeroDiscount
	}

	if err := s.usage.Redeem(ctx, coupon.ID, user.UserID, coupon.UsageLimitPerUser); err != nil {
		return RedemptionResult{}, err
	}
	return RedemptionResult{Code: coupon.Code, Discount: engine.RoundMoney(discount)}, nil
}

func (s *CouponService) lookup(ctx context.Context, code string) (*models.Coupon, error) {
	if s.cache != nil {
		if c, ok := s.cache.Get(code); ok {
			return &c, nil
		}
	}
	coupon, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if s.cache != nil {
		s.cache.Set(*coupon)
	}
	return coupon, nil
}
