package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// StubService stands in for the gateway in local runs: every order succeeds
// and every signature verifies. Never wire it in production.
type StubService struct{}

func NewStubService() *StubService {
	return &StubService{}
}

func (s *StubService) CreateOrder(_ context.Context, _ string, amount float64, currency string) (*Order, error) {
	return &Order{
		OrderID:  fmt.Sprintf("order_stub_%s", uuid.NewString()),
		Amount:   amount,
		Currency: currency,
	}, nil
}

func (s *StubService) VerifySignature(_, _, _ string) bool {
	return true
}
