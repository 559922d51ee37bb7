package models

import "time"

// Discount types understood by the engine. Matching is case-insensitive;
// anything else yields a zero discount.
const (
	DiscountFlat    = "FLAT"
	DiscountPercent = "PERCENT"
)

// CodeMaxLen caps coupon codes, mirroring the storage column.
const CodeMaxLen = 64

type Coupon struct {
	ID                int64            `json:"-"`
	Code              string           `json:"code"`
	Description       string           `json:"description,omitempty"`
	DiscountType      string           `json:"discountType"`
	DiscountValue     float64          `json:"discountValue"`
	MaxDiscountAmount *float64         `json:"maxDiscountAmount,omitempty"`
	StartDate         time.Time        `json:"startDate"`
	EndDate           time.Time        `json:"endDate"`
	UsageLimitPerUser int              `json:"usageLimitPerUser,omitempty"` // 0 = unlimited
	Eligibility       EligibilityRules `json:"eligibility"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// ActiveAt reports whether now falls inside the coupon's validity window.
func (c Coupon) ActiveAt(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// EligibilityRules is a sparse conjunction of optional predicates. A nil
// pointer or empty slice leaves that dimension unconstrained.
type EligibilityRules struct {
	AllowedUserTiers     []string `json:"allowedUserTiers,omitempty"`
	MinLifetimeSpend     *float64 `json:"minLifetimeSpend,omitempty"`
	MinOrdersPlaced      *int     `json:"minOrdersPlaced,omitempty"`
	FirstOrderOnly       bool     `json:"firstOrderOnly,omitempty"`
	AllowedCountries     []string `json:"allowedCountries,omitempty"`
	MinCartValue         *float64 `json:"minCartValue,omitempty"`
	MinItemsCount        *int     `json:"minItemsCount,omitempty"`
	ApplicableCategories []string `json:"applicableCategories,omitempty"`
	ExcludedCategories   []string `json:"excludedCategories,omitempty"`
}
