// Package payment wraps the third-party payment widgets behind one
// capability interface. A provider either yields an opaque transaction
// reference or an error; the orchestrator treats every provider through
// that same contract.
package payment

import (
	"context"
	"fmt"

	"restaurant-checkout-system/models"
)

// Receipt is a successful provider outcome. Reference is the provider's
// opaque transaction id; deferred-settlement providers leave it empty
// until the payment is verified externally.
type Receipt struct {
	Reference string
}

// Provider initiates a payment for an amount in pesos.
type Provider interface {
	Method() models.PaymentMethod
	Initiate(ctx context.Context, amount float64) (*Receipt, error)
}

// For returns the provider handling the given payment method.
func For(method models.PaymentMethod) (Provider, error) {
	switch method {
	case models.PaymentMethodPayPal:
		return NewPayPalProvider(), nil
	case models.PaymentMethodGCash:
		return NewGCashProvider(), nil
	default:
		return nil, fmt.Errorf("unknown payment method: %s", method)
	}
}
