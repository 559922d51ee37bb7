package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/offerstack/coupon-service/internal/api/handlers"
)

// NewRouter builds the HTTP routes for the coupon service.
func NewRouter(h *handlers.CouponHandler) http.Handler {
	r := chi.NewRouter()

	r.Route("/coupons", func(r chi.Router) {
		r.Post("/", h.CreateCoupon)
		r.Get("/", h.ListCoupons)
		r.Post("/best", h.BestCoupon)
		r.Post("/apply", h.ApplyCoupon)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
