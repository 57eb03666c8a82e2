package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
	"github.com/vibast-solutions/ms-go-account-settings/app/factory"
	"github.com/vibast-solutions/ms-go-account-settings/app/gateway"
	"github.com/vibast-solutions/ms-go-account-settings/config"
)

type checkoutSessionRepository interface {
	Create(ctx context.Context, session *entity.CheckoutSession) error
	Update(ctx context.Context, session *entity.CheckoutSession) error
	FindByGatewayOrderID(ctx context.Context, orderID string) (*entity.CheckoutSession, error)
	FailOpenForUser(ctx context.Context, userID string, now time.Time) error
	ListStaleOpen(ctx context.Context, cutoff time.Time) ([]*entity.CheckoutSession, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	UpdateProfile(ctx context.Context, id, name string, phone *string) error
	UpdatePrivacySettings(ctx context.Context, id string, settings entity.PrivacySettings) error
	UpdateNotificationSettings(ctx context.Context, id string, settings entity.NotificationSettings) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	UpdateSubscription(ctx context.Context, id string, snapshot entity.SubscriptionSnapshot) error
	SoftDelete(ctx context.Context, id string) error
}

type couponApplier interface {
	Apply(ctx context.Context, code string, planID uint64) (*AppliedDiscount, error)
	Redeem(ctx context.Context, userID, code, idempotencyKey string) error
}

// OrderResult carries everything the client needs to open the payment widget.
type OrderResult struct {
	Session    *entity.CheckoutSession
	OrderID    string
	Amount     float64
	Currency   string
	PayerName  string
	PayerEmail string
}

type VerifyPaymentInput struct {
	OrderID   string
	PaymentID string
	Signature string
}

type CheckoutService struct {
	sessionRepo    checkoutSessionRepository
	userRepo       userRepository
	planRepo       planRepository
	coupons        couponApplier
	paymentGateway gateway.Service
	cfg            config.CheckoutConfig
	currency       string
	logger         logrus.FieldLogger
}

func NewCheckoutService(
	sessionRepo checkoutSessionRepository,
	userRepo userRepository,
	planRepo planRepository,
	coupons couponApplier,
	paymentGateway gateway.Service,
	cfg config.CheckoutConfig,
	defaultCurrency string,
) *CheckoutService {
	return &CheckoutService{
		sessionRepo:    sessionRepo,
		userRepo:       userRepo,
		planRepo:       planRepo,
		coupons:        coupons,
		paymentGateway: paymentGateway,
		cfg:            cfg,
		currency:       defaultCurrency,
		logger:         factory.NewModuleLogger("checkout-service"),
	}
}

// CreateOrder opens a checkout session and registers an order with the
// gateway. Full-discount coupons never reach here: the free-upgrade path is
// the only way to consume them, keeping the paid and free paths mutually
// exclusive for a single coupon application.
func (s *CheckoutService) CreateOrder(ctx context.Context, userID string, planID uint64, couponCode string) (*OrderResult, error) {
	user, err := s.findActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if plan.Price <= 0 {
		return nil, ErrPlanNotBillable
	}

	var applied *AppliedDiscount
	if strings.TrimSpace(couponCode) != "" {
		applied, err = s.coupons.Apply(ctx, couponCode, planID)
		if err != nil {
			return nil, err
		}
		if applied.FullDiscount {
			return nil, ErrFullDiscountCoupon
		}
	}

	now := time.Now().UTC()
	if err := s.sessionRepo.FailOpenForUser(ctx, userID, now); err != nil {
		return nil, err
	}

	session := &entity.CheckoutSession{
		UserID:      userID,
		PlanID:      planID,
		Amount:      plan.Price,
		FinalAmount: plan.Price,
		Currency:    s.currency,
		State:       entity.CheckoutStateCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if applied != nil {
		code := applied.CouponCode
		session.CouponCode = &code
		session.DiscountAmount = applied.DiscountAmount
		session.FinalAmount = applied.FinalAmount
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	order, err := s.paymentGateway.CreateOrder(ctx, fmt.Sprintf("cs-%d", session.ID), session.FinalAmount, s.currency)
	if err != nil {
		s.failSession(ctx, session)
		return nil, fmt.Errorf("%w: %v", ErrPaymentInitFailed, err)
	}
	if order.OrderID == "" || order.Amount <= 0 {
		s.failSession(ctx, session)
		return nil, fmt.Errorf("%w: gateway response missing order id or amount", ErrPaymentInitFailed)
	}

	currency := order.Currency
	if currency == "" {
		currency = s.currency
	}

	orderID := order.OrderID
	session.GatewayOrderID = &orderID
	session.Currency = currency
	if err := s.transition(ctx, session, entity.CheckoutStateAwaitingPayment); err != nil {
		return nil, err
	}

	return &OrderResult{
		Session:    session,
		OrderID:    orderID,
		Amount:     order.Amount,
		Currency:   currency,
		PayerName:  user.Name,
		PayerEmail: user.Email,
	}, nil
}

// VerifyPayment settles a session: signature check, coupon redemption keyed by
// the payment id, then entitlement update. Redemption failure after a
// successful verification is a known partial-settlement gap; it is reported,
// not rolled back.
func (s *CheckoutService) VerifyPayment(ctx context.Context, req *VerifyPaymentInput) (*entity.User, error) {
	session, err := s.sessionRepo.FindByGatewayOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrCheckoutSessionNotFound
	}
	if !session.State.CanTransitionTo(entity.CheckoutStateVerifying) {
		return nil, ErrCheckoutSessionClosed
	}
	if err := s.transition(ctx, session, entity.CheckoutStateVerifying); err != nil {
		return nil, err
	}

	if !s.paymentGateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.failSession(ctx, session)
		return nil, ErrPaymentVerificationFailed
	}

	if session.CouponCode != nil {
		if err := s.coupons.Redeem(ctx, session.UserID, *session.CouponCode, req.PaymentID); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"session_id": session.ID,
				"payment_id": req.PaymentID,
				"coupon":     *session.CouponCode,
			}).Error("Coupon redemption failed after verified payment")
			return nil, fmt.Errorf("%w: session %d", ErrPartialSettlement, session.ID)
		}
	}

	plan, err := s.planRepo.FindByID(ctx, session.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if err := s.userRepo.UpdateSubscription(ctx, session.UserID, entitlementFor(plan, time.Now().UTC())); err != nil {
		return nil, err
	}

	paymentID := req.PaymentID
	session.PaymentID = &paymentID
	if err := s.transition(ctx, session, entity.CheckoutStateSettled); err != nil {
		return nil, err
	}

	return s.findActiveUser(ctx, session.UserID)
}

// Dismiss is the only cancellation path: the client dismissed the payment
// widget, so the open session fails and the processing indicator can reset.
// Dismissing an already-failed session is a no-op.
func (s *CheckoutService) Dismiss(ctx context.Context, userID, orderID string) error {
	session, err := s.sessionRepo.FindByGatewayOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if session == nil || session.UserID != userID {
		return ErrCheckoutSessionNotFound
	}
	if session.State == entity.CheckoutStateFailed {
		return nil
	}
	if !session.State.CanTransitionTo(entity.CheckoutStateFailed) {
		return ErrCheckoutSessionClosed
	}

	return s.transition(ctx, session, entity.CheckoutStateFailed)
}

// RunCheckoutCleanupBatch fails sessions stuck before payment longer than the
// pending timeout, so abandoned widgets do not hold sessions open forever.
func (s *CheckoutService) RunCheckoutCleanupBatch(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.cfg.PendingSessionTimeout)
	items, err := s.sessionRepo.ListStaleOpen(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, item := range items {
		item.State = entity.CheckoutStateFailed
		item.UpdatedAt = time.Now().UTC()
		if err := s.sessionRepo.Update(ctx, item); err != nil {
			s.logger.WithError(err).WithField("session_id", item.ID).Warn("Failed to expire stale session")
		}
	}

	return nil
}

func (s *CheckoutService) transition(ctx context.Context, session *entity.CheckoutSession, next entity.CheckoutState) error {
	if !session.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move %s to %s", ErrCheckoutSessionClosed, session.State, next)
	}
	session.State = next
	session.UpdatedAt = time.Now().UTC()
	return s.sessionRepo.Update(ctx, session)
}

func (s *CheckoutService) failSession(ctx context.Context, session *entity.CheckoutSession) {
	if err := s.transition(ctx, session, entity.CheckoutStateFailed); err != nil {
		s.logger.WithError(err).WithField("session_id", session.ID).Warn("Failed to mark session failed")
	}
}

func (s *CheckoutService) findActiveUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != entity.UserStatusActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func entitlementFor(plan *entity.Plan, now time.Time) entity.SubscriptionSnapshot {
	expiresAt := now.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)
	return entity.SubscriptionSnapshot{
		PlanID:    plan.ID,
		PlanName:  plan.Name,
		Price:     plan.Price,
		ExpiresAt: &expiresAt,
	}
}
