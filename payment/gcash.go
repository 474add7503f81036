package payment

import (
	"context"
	"fmt"

	"restaurant-checkout-system/models"
)

// GCashProvider simulates the GCash widget. GCash payments are verified
// manually after the fact, so a successful initiation yields no
// transaction reference and the order stays pending.
type GCashProvider struct{}

// NewGCashProvider creates a new GCashProvider instance.
func NewGCashProvider() *GCashProvider {
	return &GCashProvider{}
}

func (g *GCashProvider) Method() models.PaymentMethod {
	return models.PaymentMethodGCash
}

// Initiate accepts the payment for later verification.
func (g *GCashProvider) Initiate(ctx context.Context, amount float64) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("invalid payment amount: %.2f", amount)
	}
	return &Receipt{}, nil
}
