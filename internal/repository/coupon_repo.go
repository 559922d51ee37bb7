package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/offerstack/coupon-service/internal/models"
	"github.com/offerstack/coupon-service/internal/service"
)

const couponColumns = `id, code, description, discount_type, discount_value,
       max_discount_amount, start_date, end_date, usage_limit_per_user,
       eligibility, created_at`

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

// Create persists a new coupon and fills in its generated ID and creation
// time. A duplicate code surfaces as service.ErrDuplicateCode; uniqueness is
// enforced by the storage layer, not here.
func (r *CouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	rules, err := json.Marshal(c.Eligibility)
	if err != nil {
		return fmt.Errorf("marshal eligibility: %w", err)
	}

	const query = `
		INSERT INTO coupons
		(code, description, discount_type, discount_value, max_discount_amount,
		 start_date, end_date, usage_limit_per_user, eligibility)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		c.Code,
		c.Description,
		c.DiscountType,
		c.DiscountValue,
		c.MaxDiscountAmount,
		c.StartDate,
		c.EndDate,
		nullableLimit(c.UsageLimitPerUser),
		rules,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return service.ErrDuplicateCode
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByCode fetches a coupon by its unique code. Returns (nil, nil) when no
// coupon exists for the code.
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon %q: %w", code, err)
	}
	return c, nil
}

// List returns every coupon, newest first.
func (r *CouponRepo) List(ctx context.Context) ([]models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC`
	return r.queryCoupons(ctx, query)
}

// ListActive returns coupons whose validity window contains at.
func (r *CouponRepo) ListActive(ctx context.Context, at time.Time) ([]models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE start_date <= $1 AND end_date >= $1`
	return r.queryCoupons(ctx, query, at)
}

func (r *CouponRepo) queryCoupons(ctx context.Context, query string, args ...any) ([]models.Coupon, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row rowScanner) (*models.Coupon, error) {
	var (
		c     models.Coupon
		max   sql.NullFloat64
		limit sql.NullInt64
		rules []byte
	)
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&max,
		&c.StartDate,
		&c.EndDate,
		&limit,
		&rules,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if max.Valid {
		v := max.Float64
		c.MaxDiscountAmount = &v
	}
	if limit.Valid {
		c.UsageLimitPerUser = int(limit.Int64)
	}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &c.Eligibility); err != nil {
			return nil, fmt.Errorf("decode eligibility: %w", err)
		}
	}
	return &c, nil
}

func nullableLimit(limit int) sql.NullInt64 {
	if limit <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(limit), Valid: true}
}
