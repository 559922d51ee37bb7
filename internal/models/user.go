package models

// UserProfile is the request-scoped snapshot of the shopper. Absent numeric
// fields decode to zero; absent strings fail any set-membership rule.
type UserProfile struct {
	UserID        string  `json:"userId"`
	UserTier      string  `json:"userTier,omitempty"`
	LifetimeSpend float64 `json:"lifetimeSpend,omitempty"`
	OrdersPlaced  int     `json:"ordersPlaced,omitempty"`
	Country       string  `json:"country,omitempty"`
}
