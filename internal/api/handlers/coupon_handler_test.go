package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerstack/coupon-service/internal/engine"
	"github.com/offerstack/coupon-service/internal/models"
	"github.com/offerstack/coupon-service/internal/service"
)

type stubService struct {
	createErr error
	created   *models.Coupon
	list      []models.Coupon
	best      *engine.Candidate
	bestErr   error
	redeem    service.RedemptionResult
	redeemErr error
}

func (s *stubService) Create(ctx context.Context, c *models.Coupon) error {
	s.created = c
	return s.createErr
}

func (s *stubService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.list, nil
}

func (s *stubService) BestCoupon(ctx context.Context, user models.UserProfile, cart models.Cart) (*engine.Candidate, error) {
	return s.best, s.bestErr
}

func (s *stubService) Redeem(ctx context.Context, user models.UserProfile, code string, cart models.Cart) (service.RedemptionResult, error) {
	return s.redeem, s.redeemErr
}

func newTestHandler(svc *stubService) *CouponHandler {
	return NewCouponHandler(svc, zerolog.Nop())
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func validCreateBody() map[string]any {
	return map[string]any{
		"code":          "WELCOME10",
		"discountType":  "FLAT",
		"discountValue": 10,
		"startDate":     "2026-01-01T00:00:00Z",
		"endDate":       "2026-12-31T00:00:00Z",
	}
}

func TestCreateCoupon(t *testing.T) {
	svc := &stubService{}
	rec := doJSON(t, newTestHandler(svc).CreateCoupon, http.MethodPost, "/coupons", validCreateBody())

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "WELCOME10", svc.created.Code)
}

func TestCreateCouponRejectsBadWindow(t *testing.T) {
	body := validCreateBody()
	body["startDate"] = "2026-12-31T00:00:00Z"
	body["endDate"] = "2026-01-01T00:00:00Z"
	rec := doJSON(t, newTestHandler(&stubService{}).CreateCoupon, http.MethodPost, "/coupons", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCouponRejectsUnknownType(t *testing.T) {
	body := validCreateBody()
	body["discountType"] = "BOGO"
	rec := doJSON(t, newTestHandler(&stubService{}).CreateCoupon, http.MethodPost, "/coupons", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCouponDuplicate(t *testing.T) {
	svc := &stubService{createErr: service.ErrDuplicateCode}
	rec := doJSON(t, newTestHandler(svc).CreateCoupon, http.MethodPost, "/coupons", validCreateBody())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBestCouponRequiresUserAndCart(t *testing.T) {
	rec := doJSON(t, newTestHandler(&stubService{}).BestCoupon, http.MethodPost, "/coupons/best", map[string]any{
		"user": map[string]any{"userId": "u1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBestCouponNull(t *testing.T) {
	rec := doJSON(t, newTestHandler(&stubService{}).BestCoupon, http.MethodPost, "/coupons/best", map[string]any{
		"user": map[string]any{"userId": "u1"},
		"cart": map[string]any{"items": []any{}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bestCoupon": null}`, rec.Body.String())
}

func TestBestCouponRoundsDiscount(t *testing.T) {
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	svc := &stubService{best: &engine.Candidate{
		Coupon:   models.Coupon{Code: "PCT", EndDate: end, Description: "seasonal"},
		Discount: 4.9995,
	}}
	rec := doJSON(t, newTestHandler(svc).BestCoupon, http.MethodPost, "/coupons/best", map[string]any{
		"user": map[string]any{"userId": "u1"},
		"cart": map[string]any{"items": []any{}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BestCouponResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.BestCoupon)
	assert.Equal(t, "PCT", resp.BestCoupon.Code)
	assert.Equal(t, 5.0, resp.BestCoupon.Discount)
	assert.Equal(t, "seasonal", resp.BestCoupon.Description)
}

func applyBody() map[string]any {
	return map[string]any{
		"user": map[string]any{"userId": "u1"},
		"code": "SAVE10",
		"cart": map[string]any{"items": []any{map[string]any{"category": "books", "unitPrice": 50, "quantity": 1}}},
	}
}

func TestApplyCouponSuccess(t *testing.T) {
	svc := &stubService{redeem: service.RedemptionResult{Code: "SAVE10", Discount: 10}}
	rec := doJSON(t, newTestHandler(svc).ApplyCoupon, http.MethodPost, "/coupons/apply", applyBody())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"applied": "SAVE10", "discount": 10}`, rec.Body.String())
}

func TestApplyCouponErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", service.ErrCouponNotFound, http.StatusNotFound},
		{"outside window", service.ErrInvalidRequest, http.StatusBadRequest},
		{"ineligible", service.ErrNotEligible, http.StatusBadRequest},
		{"zero discount", service.ErrZeroDiscount, http.StatusBadRequest},
		{"limit exceeded", service.ErrUsageLimitReached, http.StatusBadRequest},
		{"transient", service.ErrTransient, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{redeemErr: tc.err}
			rec := doJSON(t, newTestHandler(svc).ApplyCoupon, http.MethodPost, "/coupons/apply", applyBody())
			assert.Equal(t, tc.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"], "every rejection carries a reason")
		})
	}
}

func TestApplyCouponRequiresUserAndCode(t *testing.T) {
	rec := doJSON(t, newTestHandler(&stubService{}).ApplyCoupon, http.MethodPost, "/coupons/apply", map[string]any{
		"cart": map[string]any{"items": []any{}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCouponsEmptyArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/coupons", nil)
	rec := httptest.NewRecorder()
	newTestHandler(&stubService{}).ListCoupons(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
