package entity

import "time"

type CheckoutState string

const (
	CheckoutStateCreated         CheckoutState = "created"
	CheckoutStateAwaitingPayment CheckoutState = "awaiting_payment"
	CheckoutStateVerifying       CheckoutState = "verifying"
	CheckoutStateSettled         CheckoutState = "settled"
	CheckoutStateFailed          CheckoutState = "failed"
)

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutStateCreated:         {CheckoutStateAwaitingPayment, CheckoutStateFailed},
	CheckoutStateAwaitingPayment: {CheckoutStateVerifying, CheckoutStateFailed},
	CheckoutStateVerifying:       {CheckoutStateSettled, CheckoutStateFailed},
}

func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s CheckoutState) Terminal() bool {
	return s == CheckoutStateSettled || s == CheckoutStateFailed
}

// CheckoutSession tracks one payment attempt for one plan. The coupon and
// discount columns snapshot the applied discount for the session lifetime;
// a new session for the same user supersedes any open one.
type CheckoutSession struct {
	ID             uint64
	UserID         string
	PlanID         uint64
	CouponCode     *string
	Amount         float64
	DiscountAmount float64
	FinalAmount    float64
	Currency       string
	GatewayOrderID *string
	PaymentID      *string
	State          CheckoutState
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
