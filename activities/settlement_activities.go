package activities

import (
	"context"
	"fmt"

	"restaurant-checkout-system/backend"
	"restaurant-checkout-system/models"

	"go.temporal.io/sdk/activity"
)

// SettlementActivities contains the settlement steps that run only for
// immediately-settled payment methods.
type SettlementActivities struct {
	backend *backend.Client
}

// NewSettlementActivities creates a new SettlementActivities instance.
func NewSettlementActivities(client *backend.Client) *SettlementActivities {
	return &SettlementActivities{backend: client}
}

// UpdatePaymentStatus marks the order's payment status as paid.
func (s *SettlementActivities) UpdatePaymentStatus(ctx context.Context, req models.UpdatePaymentStatusRequest) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Updating payment status", "order_id", req.OrderID, "status", req.PaymentStatus)

	if req.OrderID == "" {
		return fmt.Errorf("payment status update has no order id")
	}

	activity.RecordHeartbeat(ctx, "updating payment status")

	body := struct {
		PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	}{req.PaymentStatus}

	if err := s.backend.Post(ctx, "/update_payment_status/"+req.OrderID, body, nil); err != nil {
		return err
	}

	logger.Info("Payment status updated", "order_id", req.OrderID, "status", req.PaymentStatus)
	return nil
}

// RecordTransaction persists the provider transaction receipt.
func (s *SettlementActivities) RecordTransaction(ctx context.Context, record models.TransactionRecord) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Recording transaction", "transaction_id", record.TransactionID, "amount", record.Amount)

	activity.RecordHeartbeat(ctx, "recording transaction")

	if err := s.backend.Post(ctx, "/paypal_transaction", record, nil); err != nil {
		return err
	}

	logger.Info("Transaction recorded", "transaction_id", record.TransactionID)
	return nil
}

// RecordPayment persists the payment record for the settled order.
func (s *SettlementActivities) RecordPayment(ctx context.Context, record models.PaymentRecord) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Recording payment", "user_id", record.UserID, "amount_paid", record.AmountPaid)

	activity.RecordHeartbeat(ctx, "recording payment")

	if err := s.backend.Post(ctx, "/paypal_payment", record, nil); err != nil {
		return err
	}

	logger.Info("Payment recorded", "user_id", record.UserID, "transaction_id", record.TransactionID)
	return nil
}
