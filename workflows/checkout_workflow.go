package workflows

import (
	"errors"
	"fmt"
	"time"

	"restaurant-checkout-system/activities"
	"restaurant-checkout-system/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryState = "state"
)

// CheckoutWorkflow drives one checkout attempt as a strictly ordered
// sequence of remote calls: create order, attach line items, record
// activity, clear the persisted cart, then settle (immediate methods
// only). The sequence is not atomic: once the order is created, a later
// failure is surfaced in the result but nothing is rolled back. Each
// remote call gets a single attempt; there is no automatic retry.
func CheckoutWorkflow(ctx workflow.Context, req models.CheckoutRequest) (models.CheckoutResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("CheckoutWorkflow started", "user_id", req.UserID, "payment_method", req.PaymentMethod, "items", len(req.Items))

	state := models.CheckoutState{
		UserID:      req.UserID,
		Status:      models.CheckoutStatusIdle,
		LastUpdated: workflow.Now(ctx),
	}

	err := workflow.SetQueryHandler(ctx, QueryState, func() (models.CheckoutState, error) {
		return state, nil
	})
	if err != nil {
		return models.CheckoutResult{}, fmt.Errorf("failed to set query handler: %w", err)
	}

	advance := func(status models.CheckoutStatus) {
		state.Status = status
		state.LastUpdated = workflow.Now(ctx)
	}

	fail := func(reason models.FailureReason, step, message string) models.CheckoutResult {
		state.Status = models.CheckoutStatusFailed
		state.FailedStep = step
		state.LastUpdated = workflow.Now(ctx)
		logger.Error("Checkout failed", "user_id", req.UserID, "order_id", state.OrderID, "step", step, "reason", reason, "message", message)
		return models.CheckoutResult{
			OrderID:       state.OrderID,
			PaymentStatus: orderPaymentStatus(state.OrderID),
			Reason:        reason,
			FailedStep:    step,
			Message:       message,
		}
	}

	if req.UserID == "" {
		return fail(models.FailureIdentityMissing, "", "no authenticated user; sign in and try again"), nil
	}
	if len(req.Items) == 0 {
		return fail(models.FailureOrderCreation, "", "an order must contain at least one item"), nil
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return fail(models.FailureOrderCreation, "", fmt.Sprintf("item %q has a non-positive quantity", item.ItemName)), nil
		}
		if item.Price < 0 {
			return fail(models.FailureOrderCreation, "", fmt.Sprintf("item %q has a negative price", item.ItemName)), nil
		}
	}

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    5 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			// One attempt per remote call: failures surface to the user
			// instead of being retried against a non-idempotent backend.
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var act *activities.CheckoutActivities

	items := req.NormalizedItems()
	orderData := models.BuildOrderData(items)

	// Step 1: Create order. The backend decides the initial payment
	// status (pending vs. paid) from the payment method.
	advance(models.CheckoutStatusCreatingOrder)
	var orderID string
	err = workflow.ExecuteActivity(ctx, act.CreateOrder, models.CreateOrderRequest{
		UserID:        req.UserID,
		OrderData:     orderData,
		PaymentMethod: req.PaymentMethod,
	}).Get(ctx, &orderID)
	if err != nil {
		return fail(models.FailureOrderCreation, "create_order", failureMessage(err)), nil
	}
	if orderID == "" {
		return fail(models.FailureOrderCreation, "create_order", "backend returned no order id"), nil
	}
	state.OrderID = orderID
	logger.Info("Order created", "user_id", req.UserID, "order_id", orderID)

	// Past this point the order exists server-side and is never rolled
	// back; failures are reported, not compensated.

	// Step 2: Attach line items.
	advance(models.CheckoutStatusAttachingItems)
	err = workflow.ExecuteActivity(ctx, act.CreateOrderItems, models.CreateOrderItemsRequest{
		UserID:     req.UserID,
		OrderItems: models.BuildOrderLineItems(orderID, orderData),
	}).Get(ctx, nil)
	if err != nil {
		return fail(models.FailureDownstreamStep, "create_order_items", failureMessage(err)), nil
	}

	// Step 3: Record activity.
	advance(models.CheckoutStatusRecordingActivity)
	err = workflow.ExecuteActivity(ctx, act.RecordActivity, models.ActivityRecord{
		UserID:       req.UserID,
		ActivityDate: workflow.Now(ctx),
		OrderID:      orderID,
	}).Get(ctx, nil)
	if err != nil {
		return fail(models.FailureDownstreamStep, "activity_user", failureMessage(err)), nil
	}

	// Step 4: Clear the persisted cart.
	advance(models.CheckoutStatusClearingCart)
	err = workflow.ExecuteActivity(ctx, act.RemoveFromCart, models.RemoveFromCartRequest{
		UserID: req.UserID,
		Items:  orderData,
	}).Get(ctx, nil)
	if err != nil {
		return fail(models.FailureDownstreamStep, "remove_from_cart", failureMessage(err)), nil
	}

	paymentStatus := models.PaymentStatusPending

	// Step 5: Settlement, immediate methods only.
	if req.PaymentMethod.SettlementMode() == models.SettlementImmediate {
		advance(models.CheckoutStatusSettling)

		childWorkflowOptions := workflow.ChildWorkflowOptions{
			WorkflowID:               fmt.Sprintf("settlement-%s", orderID),
			WorkflowExecutionTimeout: 2 * time.Minute,
		}
		childCtx := workflow.WithChildOptions(ctx, childWorkflowOptions)

		err = workflow.ExecuteChildWorkflow(childCtx, SettlementWorkflow, models.SettlementRequest{
			UserID:            req.UserID,
			OrderID:           orderID,
			ProviderReference: req.ProviderReference,
			AmountMinor:       models.MinorUnits(req.GrandTotal()),
			PaymentMethod:     req.PaymentMethod,
			OrderQuantity:     req.TotalQuantity(),
			MenuImage:         req.FirstImage(),
		}).Get(ctx, nil)
		if err != nil {
			return fail(models.FailureDownstreamStep, "settlement", failureMessage(err)), nil
		}
		paymentStatus = models.PaymentStatusPaid
	} else {
		logger.Info("Order left pending, awaiting manual verification", "user_id", req.UserID, "order_id", orderID, "payment_method", req.PaymentMethod)
	}

	advance(models.CheckoutStatusCompleted)
	logger.Info("CheckoutWorkflow completed successfully", "user_id", req.UserID, "order_id", orderID, "payment_status", paymentStatus)

	return models.CheckoutResult{
		Succeeded:     true,
		OrderID:       orderID,
		PaymentStatus: paymentStatus,
		Message:       "Order placed successfully and cart cleared!",
	}, nil
}

func orderPaymentStatus(orderID string) models.PaymentStatus {
	if orderID == "" {
		return ""
	}
	return models.PaymentStatusPending
}

// failureMessage unwraps the activity failure down to the message the
// backend (or transport) produced, which is the richest diagnostic
// available for the single user-facing notification.
func failureMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	return err.Error()
}
