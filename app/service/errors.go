package service

import "errors"

var (
	ErrUserNotFound              = errors.New("user not found")
	ErrPlanNotFound              = errors.New("plan not found")
	ErrCouponNotFound            = errors.New("coupon not found")
	ErrCouponInvalid             = errors.New("invalid coupon")
	ErrInvalidRequest            = errors.New("invalid request")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrPasswordMismatch          = errors.New("password confirmation does not match")
	ErrFullDiscountCoupon        = errors.New("coupon fully discounts the plan; use free upgrade")
	ErrNotFullDiscount           = errors.New("coupon does not fully discount the plan")
	ErrPlanNotBillable           = errors.New("plan has no billable amount")
	ErrCheckoutSessionNotFound   = errors.New("checkout session not found")
	ErrCheckoutSessionClosed     = errors.New("checkout session already closed")
	ErrPaymentInitFailed         = errors.New("payment initiation failed")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrPartialSettlement         = errors.New("payment settled but coupon redemption failed; contact support")
	ErrPartialUpgrade            = errors.New("coupon redeemed but upgrade failed; contact support")
	ErrInvalidSubscriberID       = errors.New("subscriber id must be a 24-character hex token")
	ErrUnsupportedDocumentType   = errors.New("unsupported document file type")
	ErrDocumentTooLarge          = errors.New("document exceeds the maximum upload size")
	ErrUnknownDocumentType       = errors.New("unknown document type")
)
