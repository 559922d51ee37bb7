package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/offerstack/coupon-service/internal/service"
)

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// Redeem appends one usage row for (couponID, userID), enforcing limit as the
// per-user cap (limit <= 0 means unlimited).
//
// The count-check and insert run inside a single serializable transaction
// with FOR UPDATE held on the matching ledger rows, so two concurrent redeems
// for the same pair cannot both observe count < limit and both commit: one
// blocks on the row locks, or the second aborts with a serialization failure,
// which is surfaced as service.ErrTransient for the caller to retry. Redeems
// for different pairs touch disjoint rows and do not block each other.
func (r *UsageRepo) Redeem(ctx context.Context, couponID int64, userID string, limit int) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin redeem tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if limit > 0 {
		const countQuery = `
			SELECT count(*) FROM (
				SELECT id FROM coupon_usages
				WHERE coupon_id = $1 AND user_id = $2
				FOR UPDATE
			) locked
		`
		var used int
		if err := tx.QueryRowContext(ctx, countQuery, couponID, userID).Scan(&used); err != nil {
			return classify(fmt.Errorf("count usage: %w", err))
		}
		if used >= limit {
			return service.ErrUsageLimitReached
		}
	}

	const insert = `INSERT INTO coupon_usages (coupon_id, user_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, insert, couponID, userID); err != nil {
		return classify(fmt.Errorf("insert usage: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit redeem: %w", err))
	}
	committed = true
	return nil
}

// CountForUser reports how many times the user has redeemed the coupon.
// Plain read, no locks; used for reporting only.
func (r *UsageRepo) CountForUser(ctx context.Context, couponID int64, userID string) (int, error) {
	const query = `SELECT count(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`
	var n int
	if err := r.db.QueryRowContext(ctx, query, couponID, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count usage: %w", err)
	}
	return n, nil
}

// classify maps Postgres contention aborts onto the retryable sentinel.
// 40001 = serialization_failure, 40P01 = deadlock_detected.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %v", service.ErrTransient, err)
		}
	}
	return err
}
