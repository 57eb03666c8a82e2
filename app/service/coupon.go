package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
	"github.com/vibast-solutions/ms-go-account-settings/app/factory"
	"github.com/vibast-solutions/ms-go-account-settings/app/repository"
)

// AppliedDiscount is the transient result of applying one coupon to one plan.
// It lives for a single checkout session and is never persisted on the coupon.
type AppliedDiscount struct {
	CouponCode     string
	DiscountAmount float64
	FinalAmount    float64
	FullDiscount   bool
}

type couponRepository interface {
	ListActive(ctx context.Context) ([]*entity.Coupon, error)
	FindByCode(ctx context.Context, code string) (*entity.Coupon, error)
	IncrementUsage(ctx context.Context, id uint64) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type redemptionRepository interface {
	FindByIdempotencyKey(ctx context.Context, key string) (*entity.CouponRedemption, error)
	Create(ctx context.Context, redemption *entity.CouponRedemption) error
}

type planRepository interface {
	List(ctx context.Context) ([]*entity.Plan, error)
	FindByID(ctx context.Context, id uint64) (*entity.Plan, error)
}

type CouponService struct {
	couponRepo     couponRepository
	redemptionRepo redemptionRepository
	planRepo       planRepository
	logger         logrus.FieldLogger
}

func NewCouponService(
	couponRepo couponRepository,
	redemptionRepo redemptionRepository,
	planRepo planRepository,
) *CouponService {
	return &CouponService{
		couponRepo:     couponRepo,
		redemptionRepo: redemptionRepo,
		planRepo:       planRepo,
		logger:         factory.NewModuleLogger("coupon-service"),
	}
}

// ListForPlan returns the coupons a user may apply to the given plan:
// applicable, active, and unexpired. Result order follows storage order.
func (s *CouponService) ListForPlan(ctx context.Context, planID uint64) ([]*entity.Coupon, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	coupons, err := s.couponRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	return ResolveApplicable(plan, coupons, time.Now().UTC()), nil
}

// Apply validates the coupon against the plan and computes the discount.
// The returned AppliedDiscount replaces any prior one for the caller's
// checkout session; no partial or pending state exists.
func (s *CouponService) Apply(ctx context.Context, code string, planID uint64) (*AppliedDiscount, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	coupon, err := s.couponRepo.FindByCode(ctx, normalizeCouponCode(code))
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	if err := validateCouponForPlan(coupon, plan, time.Now().UTC()); err != nil {
		return nil, err
	}

	discount, final := computeDiscount(coupon, plan.Price)
	return &AppliedDiscount{
		CouponCode:     coupon.Code,
		DiscountAmount: discount,
		FinalAmount:    final,
		FullDiscount:   final == 0,
	}, nil
}

// Redeem marks a coupon as used. Redemptions are idempotent on the key: the
// paid path passes the gateway payment id, the free-upgrade path a synthesized
// marker, so either path can be retried without double-counting usage.
func (s *CouponService) Redeem(ctx context.Context, userID, code, idempotencyKey string) error {
	if strings.TrimSpace(idempotencyKey) == "" {
		return fmt.Errorf("%w: idempotency key is required", ErrInvalidRequest)
	}

	coupon, err := s.couponRepo.FindByCode(ctx, normalizeCouponCode(code))
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}

	existing, err := s.redemptionRepo.FindByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	if err := s.couponRepo.IncrementUsage(ctx, coupon.ID); err != nil {
		if errors.Is(err, repository.ErrCouponUsageExhausted) {
			return fmt.Errorf("%w: usage limit reached", ErrCouponInvalid)
		}
		return err
	}

	redemption := &entity.CouponRedemption{
		CouponID:       coupon.ID,
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.redemptionRepo.Create(ctx, redemption); err != nil {
		if errors.Is(err, repository.ErrRedemptionExists) {
			return nil
		}
		return err
	}

	return nil
}

// RunCouponExpiryBatch deactivates coupons whose expiry has passed.
func (s *CouponService) RunCouponExpiryBatch(ctx context.Context) error {
	deactivated, err := s.couponRepo.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if deactivated > 0 {
		s.logger.WithField("count", deactivated).Info("Deactivated expired coupons")
	}
	return nil
}

// ResolveApplicable filters coupons down to those applicable to the plan,
// active, and unexpired. Pure; input order is preserved.
func ResolveApplicable(plan *entity.Plan, coupons []*entity.Coupon, now time.Time) []*entity.Coupon {
	aliases := planAliases(plan)

	result := make([]*entity.Coupon, 0, len(coupons))
	for _, coupon := range coupons {
		if !coupon.IsActive {
			continue
		}
		if !coupon.ExpiresAt.After(now) {
			continue
		}
		if !couponAppliesTo(coupon, aliases) {
			continue
		}
		result = append(result, coupon)
	}
	return result
}

// planAliases builds the canonical identifier set for a plan: numeric id,
// code, lowercased name, and the name's slug. Applicability entries are
// normalized against this set instead of the ad hoc membership checks the
// original surface used.
func planAliases(plan *entity.Plan) map[string]struct{} {
	aliases := map[string]struct{}{
		strconv.FormatUint(plan.ID, 10): {},
		strings.ToLower(plan.Code):      {},
		strings.ToLower(plan.Name):      {},
		slugify(plan.Name):              {},
	}
	return aliases
}

func couponAppliesTo(coupon *entity.Coupon, aliases map[string]struct{}) bool {
	if len(coupon.ApplicablePlans) == 0 {
		return true
	}
	for _, raw := range coupon.ApplicablePlans {
		entry := strings.ToLower(strings.TrimSpace(raw))
		if entry == entity.ApplicabilityAll {
			return true
		}
		if _, ok := aliases[entry]; ok {
			return true
		}
		if _, ok := aliases[slugify(entry)]; ok {
			return true
		}
	}
	return false
}

func validateCouponForPlan(coupon *entity.Coupon, plan *entity.Plan, now time.Time) error {
	if !coupon.IsActive {
		return fmt.Errorf("%w: coupon is not active", ErrCouponInvalid)
	}
	if !coupon.ExpiresAt.After(now) {
		return fmt.Errorf("%w: coupon has expired", ErrCouponInvalid)
	}
	if !couponAppliesTo(coupon, planAliases(plan)) {
		return fmt.Errorf("%w: coupon does not apply to this plan", ErrCouponInvalid)
	}
	if coupon.UsageLimit > 0 && coupon.UsageCount >= coupon.UsageLimit {
		return fmt.Errorf("%w: usage limit reached", ErrCouponInvalid)
	}
	return nil
}

func computeDiscount(coupon *entity.Coupon, price float64) (discount, final float64) {
	switch coupon.DiscountType {
	case entity.DiscountTypePercentage:
		discount = price * coupon.Value / 100
		if coupon.MaxDiscount > 0 && discount > coupon.MaxDiscount {
			discount = coupon.MaxDiscount
		}
	case entity.DiscountTypeFixed:
		discount = coupon.Value
	}
	if discount > price {
		discount = price
	}
	if discount < 0 {
		discount = 0
	}

	discount = roundAmount(discount)
	final = roundAmount(price - discount)
	return discount, final
}

func roundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func slugify(value string) string {
	var b strings.Builder
	previousDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			previousDash = false
		default:
			if !previousDash && b.Len() > 0 {
				b.WriteByte('-')
				previousDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
