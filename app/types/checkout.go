package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type CreatePaymentOrderRequest struct {
	PlanID     uint64 `json:"plan_id"`
	CouponCode string `json:"coupon_code"`
}

func NewCreatePaymentOrderRequestFromContext(ctx echo.Context) (*CreatePaymentOrderRequest, error) {
	var body CreatePaymentOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.CouponCode = strings.TrimSpace(body.CouponCode)
	return &body, nil
}

func (r *CreatePaymentOrderRequest) Validate() error {
	if r.PlanID == 0 {
		return errors.New("plan_id is required")
	}
	return nil
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

func NewVerifyPaymentRequestFromContext(ctx echo.Context) (*VerifyPaymentRequest, error) {
	var body VerifyPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.OrderID = strings.TrimSpace(body.OrderID)
	body.PaymentID = strings.TrimSpace(body.PaymentID)
	body.Signature = strings.TrimSpace(body.Signature)
	return &body, nil
}

func (r *VerifyPaymentRequest) Validate() error {
	if r.OrderID == "" || r.PaymentID == "" || r.Signature == "" {
		return errors.New("order_id, payment_id and signature are required")
	}
	return nil
}

type DismissCheckoutRequest struct {
	OrderID string `json:"order_id"`
}

func NewDismissCheckoutRequestFromContext(ctx echo.Context) (*DismissCheckoutRequest, error) {
	var body DismissCheckoutRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.OrderID = strings.TrimSpace(body.OrderID)
	return &body, nil
}

func (r *DismissCheckoutRequest) Validate() error {
	if r.OrderID == "" {
		return errors.New("order_id is required")
	}
	return nil
}

type FreeUpgradeRequest struct {
	PlanID     uint64 `json:"plan_id"`
	CouponCode string `json:"coupon_code"`
}

func NewFreeUpgradeRequestFromContext(ctx echo.Context) (*FreeUpgradeRequest, error) {
	var body FreeUpgradeRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.CouponCode = strings.TrimSpace(body.CouponCode)
	return &body, nil
}

func (r *FreeUpgradeRequest) Validate() error {
	if r.PlanID == 0 {
		return errors.New("plan_id is required")
	}
	if r.CouponCode == "" {
		return errors.New("coupon_code is required")
	}
	return nil
}
