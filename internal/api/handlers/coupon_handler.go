package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/offerstack/coupon-service/internal/engine"
	"github.com/offerstack/coupon-service/internal/models"
	"github.com/offerstack/coupon-service/internal/service"
)

// --- Request / Response DTOs ---

type CreateCouponRequest struct {
	Code              string                  `json:"code" validate:"required,max=64"`
	Description       string                  `json:"description" validate:"max=255"`
	DiscountType      string                  `json:"discountType" validate:"required,oneof=FLAT PERCENT"`
	DiscountValue     float64                 `json:"discountValue" validate:"gte=0"`
	MaxDiscountAmount *float64                `json:"maxDiscountAmount" validate:"omitempty,gte=0"`
	StartDate         time.Time               `json:"startDate" validate:"required"`
	EndDate           time.Time               `json:"endDate" validate:"required,gtefield=StartDate"`
	UsageLimitPerUser int                     `json:"usageLimitPerUser" validate:"gte=0"`
	Eligibility       models.EligibilityRules `json:"eligibility"`
}

type BestCouponRequest struct {
	User *models.UserProfile `json:"user" validate:"required"`
	Cart *models.Cart        `json:"cart" validate:"required"`
}

type ApplyCouponRequest struct {
	User *models.UserProfile `json:"user" validate:"required"`
	Code string              `json:"code" validate:"required"`
	Cart models.Cart         `json:"cart"`
}

type BestCouponView struct {
	Code        string    `json:"code"`
	Discount    float64   `json:"discount"`
	EndDate     time.Time `json:"endDate"`
	Description string    `json:"description"`
}

type BestCouponResponse struct {
	BestCoupon *BestCouponView `json:"bestCoupon"`
}

// --- Handler ---

// CouponService is the slice of the service layer the handlers invoke.
type CouponService interface {
	Create(ctx context.Context, c *models.Coupon) error
	List(ctx context.Context) ([]models.Coupon, error)
	BestCoupon(ctx context.Context, user models.UserProfile, cart models.Cart) (*engine.Candidate, error)
	Redeem(ctx context.Context, user models.UserProfile, code string, cart models.Cart) (service.RedemptionResult, error)
}

type CouponHandler struct {
	svc      CouponService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewCouponHandler(svc CouponService, log zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		svc:      svc,
		validate: validator.New(),
		log:      log,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// CreateCoupon handles POST /coupons.
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.DiscountType = strings.ToUpper(strings.TrimSpace(req.DiscountType))
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	coupon := models.Coupon{
		Code:              req.Code,
		Description:       req.Description,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MaxDiscountAmount: req.MaxDiscountAmount,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		UsageLimitPerUser: req.UsageLimitPerUser,
		Eligibility:       req.Eligibility,
	}
	if err := h.svc.Create(r.Context(), &coupon); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, coupon)
}

// ListCoupons handles GET /coupons.
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if coupons == nil {
		coupons = []models.Coupon{}
	}
	writeJSON(w, http.StatusOK, coupons)
}

// BestCoupon handles POST /coupons/best.
func (h *CouponHandler) BestCoupon(w http.ResponseWriter, r *http.Request) {
	var req BestCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "user and cart required")
		return
	}

	best, err := h.svc.BestCoupon(r.Context(), *req.User, *req.Cart)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if best == nil {
		writeJSON(w, http.StatusOK, BestCouponResponse{BestCoupon: nil})
		return
	}
	writeJSON(w, http.StatusOK, BestCouponResponse{BestCoupon: &BestCouponView{
		Code:        best.Coupon.Code,
		Discount:    engine.RoundMoney(best.Discount),
		EndDate:     best.Coupon.EndDate,
		Description: best.Coupon.Description,
	}})
}

// ApplyCoupon handles POST /coupons/apply.
func (h *CouponHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req ApplyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "user and code required")
		return
	}

	result, err := h.svc.Redeem(r.Context(), *req.User, req.Code, req.Cart)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeServiceError maps the service error taxonomy onto HTTP responses.
// Every rejection carries its specific reason; only unknown failures are
// collapsed into a 500.
func (h *CouponHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateCode):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrNotEligible),
		errors.Is(err, service.ErrZeroDiscount),
		errors.Is(err, service.ErrUsageLimitReached):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTransient):
		writeError(w, http.StatusServiceUnavailable, "temporary conflict, retry the request")
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("coupon handler failure")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
