package types

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type ListCouponsRequest struct {
	PlanID uint64
}

func NewListCouponsRequestFromContext(ctx echo.Context) (*ListCouponsRequest, error) {
	planID, err := strconv.ParseUint(strings.TrimSpace(ctx.QueryParam("plan_id")), 10, 64)
	if err != nil {
		return nil, err
	}
	return &ListCouponsRequest{PlanID: planID}, nil
}

func (r *ListCouponsRequest) Validate() error {
	if r.PlanID == 0 {
		return errors.New("plan_id is required")
	}
	return nil
}

type ApplyCouponRequest struct {
	CouponCode string `json:"coupon_code"`
	PlanID     uint64 `json:"plan_id"`
}

func NewApplyCouponRequestFromContext(ctx echo.Context) (*ApplyCouponRequest, error) {
	var body ApplyCouponRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.CouponCode = strings.TrimSpace(body.CouponCode)
	return &body, nil
}

func (r *ApplyCouponRequest) Validate() error {
	if r.CouponCode == "" {
		return errors.New("coupon_code is required")
	}
	if r.PlanID == 0 {
		return errors.New("plan_id is required")
	}
	return nil
}

type RedeemCouponRequest struct {
	CouponCode     string `json:"coupon_code"`
	IdempotencyKey string `json:"idempotency_key"`
}

func NewRedeemCouponRequestFromContext(ctx echo.Context) (*RedeemCouponRequest, error) {
	var body RedeemCouponRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.CouponCode = strings.TrimSpace(body.CouponCode)
	body.IdempotencyKey = strings.TrimSpace(body.IdempotencyKey)
	return &body, nil
}

func (r *RedeemCouponRequest) Validate() error {
	if r.CouponCode == "" {
		return errors.New("coupon_code is required")
	}
	if r.IdempotencyKey == "" {
		return errors.New("idempotency_key is required")
	}
	return nil
}
