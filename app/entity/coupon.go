package entity

import "time"

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// ApplicabilityAll is the sentinel that makes a coupon valid for every plan.
const ApplicabilityAll = "all"

type Coupon struct {
	ID           uint64
	Code         string
	DiscountType string
	Value        float64
	// MaxDiscount caps percentage discounts; 0 means uncapped.
	MaxDiscount float64
	// UsageLimit of 0 means unlimited.
	UsageLimit int32
	UsageCount int32
	// ApplicablePlans holds plan ids, plan codes, or plan names; empty means
	// the coupon applies to all plans.
	ApplicablePlans []string
	IsActive        bool
	ExpiresAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CouponRedemption struct {
	ID             uint64
	CouponID       uint64
	UserID         string
	IdempotencyKey string
	CreatedAt      time.Time
}
