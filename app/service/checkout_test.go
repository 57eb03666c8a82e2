package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-account-settings/app/entity"
	"github.com/vibast-solutions/ms-go-account-settings/app/gateway"
	"github.com/vibast-solutions/ms-go-account-settings/config"
)

type mockSessionRepo struct {
	createFn               func(ctx context.Context, session *entity.CheckoutSession) error
	updateFn               func(ctx context.Context, session *entity.CheckoutSession) error
	findByGatewayOrderIDFn func(ctx context.Context, orderID string) (*entity.CheckoutSession, error)
	failOpenForUserFn      func(ctx context.Context, userID string, now time.Time) error
	listStaleOpenFn        func(ctx context.Context, cutoff time.Time) ([]*entity.CheckoutSession, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *entity.CheckoutSession) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	session.ID = 11
	return nil
}

func (m *mockSessionRepo) Update(ctx context.Context, session *entity.CheckoutSession) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByGatewayOrderID(ctx context.Context, orderID string) (*entity.CheckoutSession, error) {
	if m.findByGatewayOrderIDFn != nil {
		return m.findByGatewayOrderIDFn(ctx, orderID)
	}
	return nil, nil
}

func (m *mockSessionRepo) FailOpenForUser(ctx context.Context, userID string, now time.Time) error {
	if m.failOpenForUserFn != nil {
		return m.failOpenForUserFn(ctx, userID, now)
	}
	return nil
}

func (m *mockSessionRepo) ListStaleOpen(ctx context.Context, cutoff time.Time) ([]*entity.CheckoutSession, error) {
	if m.listStaleOpenFn != nil {
		return m.listStaleOpenFn(ctx, cutoff)
	}
	return nil, nil
}

type mockUserRepo struct {
	findByIDFn                   func(ctx context.Context, id string) (*entity.User, error)
	updateProfileFn              func(ctx context.Context, id, name string, phone *string) error
	updatePrivacySettingsFn      func(ctx context.Context, id string, settings entity.PrivacySettings) error
	updateNotificationSettingsFn func(ctx context.Context, id string, settings entity.NotificationSettings) error
	updatePasswordHashFn         func(ctx context.Context, id, passwordHash string) error
	updateSubscriptionFn         func(ctx context.Context, id string, snapshot entity.SubscriptionSnapshot) error
	softDeleteFn                 func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id, name string, phone *string) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, name, phone)
	}
	return nil
}

func (m *mockUserRepo) UpdatePrivacySettings(ctx context.Context, id string, settings entity.PrivacySettings) error {
	if m.updatePrivacySettingsFn != nil {
		return m.updatePrivacySettingsFn(ctx, id, settings)
	}
	return nil
}

func (m *mockUserRepo) UpdateNotificationSettings(ctx context.Context, id string, settings entity.NotificationSettings) error {
	if m.updateNotificationSettingsFn != nil {
		return m.updateNotificationSettingsFn(ctx, id, settings)
	}
	return nil
}

func (m *mockUserRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if m.updatePasswordHashFn != nil {
		return m.updatePasswordHashFn(ctx, id, passwordHash)
	}
	return nil
}

func (m *mockUserRepo) UpdateSubscription(ctx context.Context, id string, snapshot entity.SubscriptionSnapshot) error {
	if m.updateSubscriptionFn != nil {
		return m.updateSubscriptionFn(ctx, id, snapshot)
	}
	return nil
}

func (m *mockUserRepo) SoftDelete(ctx context.Context, id string) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, id)
	}
	return nil
}

type mockCouponApplier struct {
	applyFn  func(ctx context.Context, code string, planID uint64) (*AppliedDiscount, error)
	redeemFn func(ctx context.Context, userID, code, idempotencyKey string) error
}

func (m *mockCouponApplier) Apply(ctx context.Context, code string, planID uint64) (*AppliedDiscount, error) {
	if m.applyFn != nil {
		return m.applyFn(ctx, code, planID)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponApplier) Redeem(ctx context.Context, userID, code, idempotencyKey string) error {
	if m.redeemFn != nil {
		return m.redeemFn(ctx, userID, code, idempotencyKey)
	}
	return nil
}

type fakeGateway struct {
	createOrderFn func(ctx context.Context, receipt string, amount float64, currency string) (*gateway.Order, error)
	verifyResult  bool
	orderCalls    int
}

func (f *fakeGateway) CreateOrder(ctx context.Context, receipt string, amount float64, currency string) (*gateway.Order, error) {
	f.orderCalls++
	if f.createOrderFn != nil {
		return f.createOrderFn(ctx, receipt, amount, currency)
	}
	return &gateway.Order{OrderID: "order_test_1", Amount: amount, Currency: currency}, nil
}

func (f *fakeGateway) VerifySignature(_, _, _ string) bool {
	return f.verifyResult
}

const testUserID = "64f0c1e2a3b4c5d6e7f80912"

func activeUser() *entity.User {
	return &entity.User{
		ID:     testUserID,
		Name:   "Asha Rao",
		Email:  "asha@example.com",
		Status: entity.UserStatusActive,
	}
}

func newCheckoutService(sessions *mockSessionRepo, users *mockUserRepo, plans *mockPlanRepo, coupons *mockCouponApplier, gw gateway.Service) *CheckoutService {
	return NewCheckoutService(sessions, users, plans, coupons, gw, config.CheckoutConfig{PendingSessionTimeout: 30 * time.Minute}, "INR")
}

func TestCreateOrderHappyPath(t *testing.T) {
	var created *entity.CheckoutSession
	var updated []entity.CheckoutState
	sessions := &mockSessionRepo{
		createFn: func(_ context.Context, session *entity.CheckoutSession) error {
			session.ID = 11
			created = session
			return nil
		},
		updateFn: func(_ context.Context, session *entity.CheckoutSession) error {
			updated = append(updated, session.State)
			return nil
		},
	}
	users := &mockUserRepo{findByIDFn: func(_ context.Context, _ string) (*entity.User, error) { return activeUser(), nil }}
	plans := &mockPlanRepo{findByIDFn: func(_ context.Context, _ uint64) (*entity.Plan, error) { return premiumPlan(), nil }}
	coupons := &mockCouponApplier{applyFn: func(_ context.Context, _ string, _ uint64) (*AppliedDiscount, error) {
		return &AppliedDiscount{CouponCode: "SAVE20", DiscountAmount: 99.8, FinalAmount: 399.2}, nil
	}}
	gw := &fakeGateway{}

	svc := newCheckoutService(sessions, users, plans, coupons, gw)
	result, err := svc.CreateOrder(context.Background(), testUserID, 7, "SAVE20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OrderID != "order_test_1" {
		t.Fatalf("unexpected order id %s", result.OrderID)
	}
	if result.Amount != 399.2 {
		t.Fatalf("expected discounted amount 399.2, got %v", result.Amount)
	}
	if result.PayerName != "Asha Rao" || result.PayerEmail != "asha@example.com" {
		t.Fatalf("unexpected payer prefill %s/%s", result.PayerName, result.PayerEmail)
	}
	if created == nil || created.FinalAmount != 399.2 || created.DiscountAmount != 99.8 {
		t.Fatalf("session amounts not recorded: %+v", created)
	}
	if len(updated) != 1 || updated[0] != entity.CheckoutStateAwaitingPayment {
		t.Fatalf("expected single transition to awaiting_payment, got %v", updated)
	}
}

func TestCreateOrderRejectsFullDiscountCoupon(t *testing.T) {
	sessionCreated := false
	sessions := &mockSessionRepo{createFn: func(_ context.Context, _ *entity.CheckoutSession) error {
		sessionCreated = true
		return nil
	}}
	users := &mockUserRepo{findByIDFn: func(_ context.Context, _ string) (*entity.User, error) { return activeUser(), nil }}
	plans := &mockPlanRepo{findByIDFn: func(_ context.Context, _ uint64) (*entity.Plan, error) { return premiumPlan(), nil }}
	coupons := &mockCouponApplier{applyFn: func(_ context.Context, _ string, _ uint64) (*AppliedDiscount, error) {
		return &AppliedDiscount{CouponCode: "FREEPASS", DiscountAmount: 499, FinalAmount: 0, FullDiscount: true}, nil
	}}
	gw := &fakeGateway{}

	svc := newCheckoutService(sessions, users, plans, coupons, gw)
	_, err := svc.CreateOrder(context.Background(), testUserID, 7, "FREEPASS")
	if !errors.Is(err, ErrFullDiscountCoupon) {
		t.Fatalf("expected ErrFullDiscountCoupon, got %v", err)
	}
	if gw.orderCalls != 0 {
		t.Fatal("gateway must not be called for a full discount")
	}
	if sessionCreated {
		t.Fatal("no session should be created for a full discount")
	}
}

func TestCreateOrderZeroPricePlan(t *testing.T) {
	plan := premiumPlan()
	plan.Price = 0
	users := &mockUserRepo{findByIDFn: func(_ context.Context, _ string) (*entity.User, error) { return activeUser(), nil }}
	plans := &mockPlanRepo{findByIDFn: func(_ context.Context, _ uint64) (*entity.Plan, error) { return plan, nil }}

	svc := newCheckoutService(&mockSessionRepo{}, users, plans, &mockCouponApplier{}, &fakeGateway{})
	_, err := svc.CreateOrder(context.Background(), testUserID, 7, "")
	if !errors.Is(err, ErrPlanNotBillable) {
		t.Fatalf("expected ErrPlanNotBillable, got %v", err)
	}
}

func TestCreateOrderGatewayFailureFailsSession(t *testing.T) {
	var states []entity.CheckoutState
	sessions := &mockSessionRepo{
		createFn: func(_ context.Context, session *entity.CheckoutSession) error {
			session.ID = 12
			return nil
		},
		updateFn: func(_ context.Context, session *entity.CheckoutSession) error {
			states = append(states, session.State)
			return nil
		},
	}
	users := &mockUserRepo{findByIDFn: func(_ context.Context, _ string) (*entity.User, error) { return activeUser(), nil }}
	plans := &mockPlanRepo{findByIDFn: func(_ context.Context, _ uint64) (*entity.Plan, error) { return premiumPlan(), nil }}
	gw := &fakeGateway{createOrderFn: func(_ context.Context, _ string, _ float64, _ string) (*gateway.Order, error) {
		return nil, errors.New("gateway unavailable")
	}}

	svc := newCheckoutService(sessions, users, plans, &mockCouponApplier{}, gw)
	_, err := svc.CreateOrder(context.Background(), testUserID, 7, "")
	if !errors.Is(err, ErrPaymentInitFailed) {
		t.Fatalf("expected ErrPaymentInitFailed, got %v", err)
	}
	if len(states) != 1 || states[0] != entity.CheckoutStateFailed {
		t.Fatalf("expected session failed, got %v", states)
	}
}

func awaitingSession() *entity.CheckoutSession {
	orderID := "order_test_1"
	code := "SAVE20"
	return &entity.CheckoutSession{
		ID:             11,
		UserID:         testUserID,
		PlanID:         7,
		CouponCode:     &code,
		Amount:         499,
		DiscountAmount: 99.8,
		FinalAmount:    399.2,
		Currency:       "INR",
		GatewayOrderID: &orderID,
		State:          entity.CheckoutStateAwaitingPayment,
	}
}

func TestVerifyPaymentSettlesSession(t *testing.T) {
	session := awaitingSession()
	var redeemKey string
	var snapshot *entity.SubscriptionSnapshot
	sessions := &mockSessionRepo{findByGatewayOrderIDFn: func(_ context.Context, _ string) (*entity.CheckoutSession, error) {
		return session, nil
	}}
	users := &mockUserRepo{
		findByIDFn: func(_ context.Context, _ string) (*entity.User, error) { return activeUser(), nil },
		updateSubscriptionFn: func(_ context.Context, _ string, s entity.SubscriptionSnapshot) error {
			snapshot = &s
			return nil
		},
	}
	plans := &mockPlanRepo{findByIDFn: func(_ context.Context, _ uint64) (*entity.Plan, error) { return premiumPlan(), nil }}
	coupons := &mockCouponApplier{redeemFn: func(_ context.Context, _, _, key string) error {
		redeemKey = key
		return nil
	}}

	svc := newCheckoutService(sessions, users, plans, coupons, &fakeGateway{verifyResult: true})
	user, err := svc.VerifyPayment(context.Background(), &VerifyPaymentInput{
		OrderID:   "order_test_1",
		PaymentID: "pay_777",
		Signature: "sig",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected refreshed user")
	}
	if session.State != entity.CheckoutStateSettled {
		t.Fatalf("expected settled state, got %s", session.State)
	}
	if redeemKey != "pay_777" {
		t.Fatalf("expected redemption keyed by payment id, got %q", redeemKey)
	}
	if snapshot == nil || snapshot.PlanID != 7 || snapshot.ExpiresAt == nil {
		t.Fatalf("entitlement not granted: %+v", snapshot)
	}
}

func TestVerifyPaymentBadSignatureFailsSession(t *testing.T) {
	session := awaitingSession()
	sessions := &mockSessionRepo{findByGatewayOrderIDFn: func(_ context.Context, _ string) (*entity.CheckoutSession, error) {
		return session, nil
	}}
	subscriptionUpdated := false
	users := &mockUserRepo{updateSubscriptionFn: func(_ context.Context, _ string, _ entity.SubscriptionSnapshot) error {
		subscriptionUpdated = true
		return nil
	}}

	svc := newCheckoutService(sessions, users, &mockPlanRepo{}, &mockCouponApplier{}, &fakeGateway{verifyResult: false})
	_, err := svc.VerifyPayment(context.Background(), &VerifyPaymentInput{
		OrderID:   "order_test_1",
		PaymentID: "pay_777",
		Signature: "bad",
	})
	if !errors.Is(err, ErrPaymentVerificationFailed) {
		t.Fatalf("expected ErrPaymentVerificationFailed, got %v", err)
	}
	if session.State != entity.CheckoutStateFailed {
		t.Fatalf("expected failed state, got %s", session.State)
	}
	if subscriptionUpdated {
		t.Fatal("entitlement must not change on a bad signature")
	}
}

func TestVerifyPaymentRedeemFailureIsPartialSettlement(t *testing.T) {
	session := awaitingSession()
	sessions := &mockSessionRepo{findByGatewayOrderIDFn: func(_ context.Context, _ string) (*entity.CheckoutSession, error) {
		return session, nil
	}}
	subscriptionUpdated := false
	users := &mockUserRepo{updateSubscriptionFn: func(_ context.Context, _ string, _ entity.SubscriptionSnapshot) error {
		subscriptionUpdated = true
		return nil
	}}
	coupons := &mockCouponApplier{redeemFn: func(_ context.Context, _, _, _ string) error {
		return errors.New("redemption store down")
	}}

	svc := newCheckoutService(sessions, users, &mockPlanRepo{}, coupons, &fakeGateway{verifyResult: true})
	_, err := svc.VerifyPayment(context.Background(), &VerifyPaymentInput{
		OrderID:   "order_test_1",
		PaymentID: "pay_777",
		Signature: "sig",
	})
	if !errors.Is(err, ErrPartialSettlement) {
		t.Fatalf("expected ErrPartialSettlement, got %v", err)
	}
	if subscriptionUpdated {
		t.Fatal("entitlement must not change when redemption fails")
	}
}

func TestVerifyPaymentClosedSession(t *testing.T) {
	session := awaitingSession()
	session.State = entity.CheckoutStateSettled
	sessions := &mockSessionRepo{findByGatewayOrderIDFn: func(_ context.Context, _ string) (*entity.CheckoutSession, error) {
		return session, nil
	}}

	svc := newCheckoutService(sessions, &mockUserRepo{}, &mockPlanRepo{}, &mockCouponApplier{}, &fakeGateway{verifyResult: true})
	_, err := svc.VerifyPayment(context.Background(), &VerifyPaymentInput{
		OrderID:   "order_test_1",
		PaymentID: "pay_777",
		Signature: "sig",
	})
	if !errors.Is(err, ErrCheckoutSessionClosed) {
		t.Fatalf("expected ErrCheckoutSessionClosed, got %v", err)
	}
}

func TestDismissFailsOpenSession(t *testing.T) {
	session := awaitingSession()
	updated := false
	sessions := &mockSessionRepo{
		findByGatewayOrderIDFn: func(_ context.Context, _ string) (*entity.CheckoutSession, error) { return session, nil },
		updateFn: func(_ context.Context, s *entity.CheckoutSession) error {
			updated = true
			if s.State != entity.CheckoutStateFailed {
				t.Fatalf("expected failed state, got %s", s.State)
			}
			return nil
		},
	}

	svc := newCheckoutService(sessions, &mockUserRepo{}, &mockPlanRepo{}, &mockCouponApplier{}, &fakeGateway{})
	if err := svc.Dismiss(context.Background(), testUserID, "order_test_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated {
		t.Fatal("expected session update")
	}
}

func TestDismissAlreadyFailedIsNoOp(t *testing.T) {
	session := awaitingSession()
	session.State = entity.CheckoutStateFailed
	sessions := &mockSessionRepo{
		findByGatewayOrderIDFn: func(_ context.Context, _ string) (*entity.CheckoutSession, error) { return session, nil },
		updateFn: func(_ context.Context, _ *entity.CheckoutSession) error {
			t.Fatal("no update expected for an already failed session")
			return nil
		},
	}

	svc := newCheckoutService(sessions, &mockUserRepo{}, &mockPlanRepo{}, &mockCouponApplier{}, &fakeGateway{})
	if err := svc.Dismiss(context.Background(), testUserID, "order_test_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDismissOtherUsersSession(t *testing.T) {
	session := awaitingSession()
	sessions := &mockSessionRepo{findByGatewayOrderIDFn: func(_ context.Context, _ string) (*entity.CheckoutSession, error) {
		return session, nil
	}}

	svc := newCheckoutService(sessions, &mockUserRepo{}, &mockPlanRepo{}, &mockCouponApplier{}, &fakeGateway{})
	err := svc.Dismiss(context.Background(), "64f0c1e2a3b4c5d6e7f80999", "order_test_1")
	if !errors.Is(err, ErrCheckoutSessionNotFound) {
		t.Fatalf("expected ErrCheckoutSessionNotFound, got %v", err)
	}
}

func TestRunCheckoutCleanupBatch(t *testing.T) {
	stale := awaitingSession()
	stale.State = entity.CheckoutStateCreated
	var updatedStates []entity.CheckoutState
	sessions := &mockSessionRepo{
		listStaleOpenFn: func(_ context.Context, _ time.Time) ([]*entity.CheckoutSession, error) {
			return []*entity.CheckoutSession{stale}, nil
		},
		updateFn: func(_ context.Context, s *entity.CheckoutSession) error {
			updatedStates = append(updatedStates, s.State)
			return nil
		},
	}

	svc := newCheckoutService(sessions, &mockUserRepo{}, &mockPlanRepo{}, &mockCouponApplier{}, &fakeGateway{})
	if err := svc.RunCheckoutCleanupBatch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updatedStates) != 1 || updatedStates[0] != entity.CheckoutStateFailed {
		t.Fatalf("expected one session failed, got %v", updatedStates)
	}
}
