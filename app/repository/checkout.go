package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
)

var ErrCheckoutSessionNotFound = errors.New("checkout session not found")

type CheckoutSessionRepository struct {
	db DBTX
}

func NewCheckoutSessionRepository(db DBTX) *CheckoutSessionRepository {
	return &CheckoutSessionRepository{db: db}
}

func (r *CheckoutSessionRepository) Create(ctx context.Context, session *entity.CheckoutSession) error {
	query := `
		INSERT INTO checkout_sessions (
			user_id, plan_id, coupon_code, amount, discount_amount, final_amount,
			currency, gateway_order_id, payment_id, state, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		session.UserID,
		session.PlanID,
		nullableStringValue(session.CouponCode),
		session.Amount,
		session.DiscountAmount,
		session.FinalAmount,
		session.Currency,
		nullableStringValue(session.GatewayOrderID),
		nullableStringValue(session.PaymentID),
		string(session.State),
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = uint64(id)
	return nil
}

func (r *CheckoutSessionRepository) Update(ctx context.Context, session *entity.CheckoutSession) error {
	query := `
		UPDATE checkout_sessions
		SET coupon_code = ?, amount = ?, discount_amount = ?, final_amount = ?,
		    currency = ?, gateway_order_id = ?, payment_id = ?, state = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableStringValue(session.CouponCode),
		session.Amount,
		session.DiscountAmount,
		session.FinalAmount,
		session.Currency,
		nullableStringValue(session.GatewayOrderID),
		nullableStringValue(session.PaymentID),
		string(session.State),
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCheckoutSessionNotFound
	}

	return nil
}

const checkoutSessionSelect = `
		SELECT id, user_id, plan_id, coupon_code, amount, discount_amount, final_amount,
		       currency, gateway_order_id, payment_id, state, created_at, updated_at
		FROM checkout_sessions
`

func (r *CheckoutSessionRepository) FindByGatewayOrderID(ctx context.Context, orderID string) (*entity.CheckoutSession, error) {
	query := checkoutSessionSelect + `
		WHERE gateway_order_id = ?
	`

	item, err := scanCheckoutSession(r.db.QueryRowContext(ctx, query, orderID))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

// FailOpenForUser supersedes any non-terminal session before a new order is
// created, keeping at most one open session per user.
func (r *CheckoutSessionRepository) FailOpenForUser(ctx context.Context, userID string, now time.Time) error {
	query := `
		UPDATE checkout_sessions
		SET state = ?, updated_at = ?
		WHERE user_id = ?
		  AND state IN (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		string(entity.CheckoutStateFailed),
		now,
		userID,
		string(entity.CheckoutStateCreated),
		string(entity.CheckoutStateAwaitingPayment),
		string(entity.CheckoutStateVerifying),
	)
	return err
}

func (r *CheckoutSessionRepository) ListStaleOpen(ctx context.Context, cutoff time.Time) ([]*entity.CheckoutSession, error) {
	query := checkoutSessionSelect + `
		WHERE state IN (?, ?)
		  AND updated_at < ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query,
		string(entity.CheckoutStateCreated),
		string(entity.CheckoutStateAwaitingPayment),
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.CheckoutSession, 0)
	for rows.Next() {
		item, err := scanCheckoutSession(rows)
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

func scanCheckoutSession(scanner rowScanner) (*entity.CheckoutSession, error) {
	item := &entity.CheckoutSession{}
	var couponCode sql.NullString
	var gatewayOrderID sql.NullString
	var paymentID sql.NullString
	var state string

	err := scanner.Scan(
		&item.ID,
		&item.UserID,
		&item.PlanID,
		&couponCode,
		&item.Amount,
		&item.DiscountAmount,
		&item.FinalAmount,
		&item.Currency,
		&gatewayOrderID,
		&paymentID,
		&state,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if couponCode.Valid {
		item.CouponCode = &couponCode.String
	}
	if gatewayOrderID.Valid {
		item.GatewayOrderID = &gatewayOrderID.String
	}
	if paymentID.Valid {
		item.PaymentID = &paymentID.String
	}
	item.State = entity.CheckoutState(state)

	return item, nil
}
