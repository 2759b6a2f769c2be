package payment

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tutorhub/internal/domain"
)

// AuthorizationRequest is what an Authorizer sees of a pending payment.
type AuthorizationRequest struct {
	PaymentID uuid.UUID
	UserID    int64
	Amount    decimal.Decimal
	Currency  string
	Type      domain.PaymentType
	Method    *domain.PaymentMethod
}

// Authorizer decides whether a payment goes through. An error means the
// decision could not be made; the payment is then treated as failed.
type Authorizer interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (bool, error)
}

// SimulatedAuthorizer approves payments with a fixed probability.
type SimulatedAuthorizer struct {
	mu          sync.Mutex
	rng         *rand.Rand
	successRate float64
}

func NewSimulatedAuthorizer(successRate float64, seed uint64) *SimulatedAuthorizer {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	return &SimulatedAuthorizer{
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		successRate: successRate,
	}
}

func (a *SimulatedAuthorizer) Authorize(ctx context.Context, _ AuthorizationRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64() < a.successRate, nil
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, req AuthorizationRequest) (bool, error)

func (f AuthorizerFunc) Authorize(ctx context.Context, req AuthorizationRequest) (bool, error) {
	return f(ctx, req)
}
