package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
)

var (
	ErrCouponUsageExhausted = errors.New("coupon usage limit exhausted")
	ErrRedemptionExists     = errors.New("redemption already recorded")
)

type CouponRepository struct {
	db DBTX
}

func NewCouponRepository(db DBTX) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) ListActive(ctx context.Context) ([]*entity.Coupon, error) {
	query := couponSelect + `
		WHERE is_active = 1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Coupon, 0)
	for rows.Next() {
		item, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	query := couponSelect + `
		WHERE code = ?
	`

	item, err := scanCoupon(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

// IncrementUsage bumps usage_count while re-checking the limit, so concurrent
// redemptions cannot push a coupon past it.
func (r *CouponRepository) IncrementUsage(ctx context.Context, id uint64) error {
	query := `
		UPDATE coupons
		SET usage_count = usage_count + 1, updated_at = ?
		WHERE id = ?
		  AND (usage_limit = 0 OR usage_count < usage_limit)
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCouponUsageExhausted
	}

	return nil
}

func (r *CouponRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE coupons
		SET is_active = 0, updated_at = ?
		WHERE is_active = 1
		  AND expires_at <= ?
	`

	result, err := r.db.ExecContext(ctx, query, now, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const couponSelect = `
		SELECT id, code, discount_type, value, max_discount, usage_limit, usage_count,
		       applicable_plans, is_active, expires_at, created_at, updated_at
		FROM coupons
`

func scanCoupon(scanner rowScanner) (*entity.Coupon, error) {
	item := &entity.Coupon{}
	var applicablePlans string

	err := scanner.Scan(
		&item.ID,
		&item.Code,
		&item.DiscountType,
		&item.Value,
		&item.MaxDiscount,
		&item.UsageLimit,
		&item.UsageCount,
		&applicablePlans,
		&item.IsActive,
		&item.ExpiresAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.ApplicablePlans, err = parseStringSlice(applicablePlans)
	if err != nil {
		return nil, err
	}
	return item, nil
}

type CouponRedemptionRepository struct {
	db DBTX
}

func NewCouponRedemptionRepository(db DBTX) *CouponRedemptionRepository {
	return &CouponRedemptionRepository{db: db}
}

func (r *CouponRedemptionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*entity.CouponRedemption, error) {
	query := `
		SELECT id, coupon_id, user_id, idempotency_key, created_at
		FROM coupon_redemptions
		WHERE idempotency_key = ?
	`

	item := &entity.CouponRedemption{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&item.ID,
		&item.CouponID,
		&item.UserID,
		&item.IdempotencyKey,
		&item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *CouponRedemptionRepository) Create(ctx context.Context, redemption *entity.CouponRedemption) error {
	query := `
		INSERT INTO coupon_redemptions (coupon_id, user_id, idempotency_key, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		redemption.CouponID,
		redemption.UserID,
		redemption.IdempotencyKey,
		redemption.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrRedemptionExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	redemption.ID = uint64(id)
	return nil
}
