package payment

import (
	"context"
	"fmt"
	"strings"

	"restaurant-checkout-system/models"

	"github.com/google/uuid"
)

// PayPal confirms the funds transfer synchronously, so the authorization
// limit mirrors what the widget enforces.
const payPalAuthorizationLimit = 50000.0

// PayPalProvider simulates the PayPal checkout widget: it confirms the
// transfer synchronously and yields a transaction reference.
type PayPalProvider struct{}

// NewPayPalProvider creates a new PayPalProvider instance.
func NewPayPalProvider() *PayPalProvider {
	return &PayPalProvider{}
}

func (p *PayPalProvider) Method() models.PaymentMethod {
	return models.PaymentMethodPayPal
}

// Initiate runs the PayPal payment and returns the provider transaction
// reference.
func (p *PayPalProvider) Initiate(ctx context.Context, amount float64) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("invalid payment amount: %.2f", amount)
	}
	if amount > payPalAuthorizationLimit {
		return nil, fmt.Errorf("payment amount exceeds authorization limit")
	}

	reference := fmt.Sprintf("TXN-%s", strings.ToUpper(uuid.NewString()[:8]))
	return &Receipt{Reference: reference}, nil
}
