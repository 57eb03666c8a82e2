package gateway

import "context"

// Order is the gateway-side order a client completes payment against.
type Order struct {
	OrderID  string
	Amount   float64
	Currency string
}

// Service abstracts the external payment gateway: order creation before the
// client collects payment, and signature verification afterwards.
type Service interface {
	CreateOrder(ctx context.Context, receipt string, amount float64, currency string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}
