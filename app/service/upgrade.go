package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
	"github.com/vibast-solutions/ms-go-account-settings/app/factory"
)

type UpgradeService struct {
	userRepo userRepository
	planRepo planRepository
	coupons  couponApplier
	logger   logrus.FieldLogger
}

func NewUpgradeService(userRepo userRepository, planRepo planRepository, coupons couponApplier) *UpgradeService {
	return &UpgradeService{
		userRepo: userRepo,
		planRepo: planRepo,
		coupons:  coupons,
		logger:   factory.NewModuleLogger("upgrade-service"),
	}
}

// FreeUpgrade grants the plan without touching the payment gateway. Only a
// coupon that fully discounts the plan qualifies. The sequence is redeem,
// then entitlement update: it is not transactional, and a failure between the
// two steps surfaces as ErrPartialUpgrade for support to reconcile.
func (s *UpgradeService) FreeUpgrade(ctx context.Context, userID string, planID uint64, couponCode string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != entity.UserStatusActive {
		return nil, ErrUserNotFound
	}

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	applied, err := s.coupons.Apply(ctx, couponCode, planID)
	if err != nil {
		return nil, err
	}
	if !applied.FullDiscount {
		return nil, ErrNotFullDiscount
	}

	// The key marks this redemption as a free upgrade, distinct from paid
	// redemptions keyed by gateway payment ids.
	idempotencyKey := fmt.Sprintf("free-upgrade:%s:%s", userID, strings.ToUpper(strings.TrimSpace(couponCode)))
	if err := s.coupons.Redeem(ctx, userID, couponCode, idempotencyKey); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateSubscription(ctx, userID, entitlementFor(plan, time.Now().UTC())); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"plan_id": planID,
			"coupon":  applied.CouponCode,
		}).Error("Entitlement update failed after coupon redemption")
		return nil, fmt.Errorf("%w: user %s plan %d", ErrPartialUpgrade, userID, planID)
	}

	refreshed, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if refreshed == nil {
		return nil, ErrUserNotFound
	}
	return refreshed, nil
}
