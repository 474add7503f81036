package workflows

import (
	"fmt"
	"time"

	"restaurant-checkout-system/activities"
	"restaurant-checkout-system/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	SettlementWorkflowName = "SettlementWorkflow"

	transactionDescription = "Payment for Order"
	transactionRemarks     = "Payment for order"
	checkoutURLFormat      = "https://www.paypal.com/checkoutnow?token=%s"
)

// SettlementWorkflow is a child workflow that records settlement for an
// immediately-settled order: mark the order paid, persist the transaction
// receipt, persist the payment record. Steps run in that order and are
// not compensated on failure.
func SettlementWorkflow(ctx workflow.Context, req models.SettlementRequest) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("SettlementWorkflow started", "order_id", req.OrderID, "amount_minor", req.AmountMinor)

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 20 * time.Second,
		HeartbeatTimeout:    5 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var act *activities.SettlementActivities

	// Step 1: mark the order paid.
	logger.Info("Marking order paid", "order_id", req.OrderID)
	err := workflow.ExecuteActivity(ctx, act.UpdatePaymentStatus, models.UpdatePaymentStatusRequest{
		OrderID:       req.OrderID,
		PaymentStatus: models.PaymentStatusPaid,
	}).Get(ctx, nil)
	if err != nil {
		logger.Error("Payment status update failed", "order_id", req.OrderID, "error", err)
		return fmt.Errorf("payment status update failed: %w", err)
	}

	// Step 2: persist the transaction receipt.
	logger.Info("Recording transaction receipt", "order_id", req.OrderID, "transaction_id", req.ProviderReference)
	err = workflow.ExecuteActivity(ctx, act.RecordTransaction, models.TransactionRecord{
		Amount:        req.AmountMinor,
		Description:   transactionDescription,
		Remarks:       transactionRemarks,
		TransactionID: req.ProviderReference,
		CheckoutURL:   fmt.Sprintf(checkoutURLFormat, req.ProviderReference),
		PaymentMethod: req.PaymentMethod,
		UserID:        req.UserID,
		OrderQuantity: req.OrderQuantity,
		MenuImage:     req.MenuImage,
	}).Get(ctx, nil)
	if err != nil {
		logger.Error("Transaction record failed", "order_id", req.OrderID, "error", err)
		return fmt.Errorf("transaction record failed: %w", err)
	}

	// Step 3: persist the payment record.
	logger.Info("Recording payment", "order_id", req.OrderID)
	err = workflow.ExecuteActivity(ctx, act.RecordPayment, models.PaymentRecord{
		UserID:        req.UserID,
		AmountPaid:    req.AmountMinor,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: "completed",
		TransactionID: req.ProviderReference,
	}).Get(ctx, nil)
	if err != nil {
		logger.Error("Payment record failed", "order_id", req.OrderID, "error", err)
		return fmt.Errorf("payment record failed: %w", err)
	}

	logger.Info("SettlementWorkflow completed", "order_id", req.OrderID, "transaction_id", req.ProviderReference)
	return nil
}
