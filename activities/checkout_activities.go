package activities

import (
	"context"
	"fmt"

	"restaurant-checkout-system/backend"
	"restaurant-checkout-system/models"

	"go.temporal.io/sdk/activity"
)

// CheckoutActivities contains the core checkout steps. Each activity is a
// single remote call against the storefront backend.
type CheckoutActivities struct {
	backend *backend.Client
}

// NewCheckoutActivities creates a new CheckoutActivities instance.
func NewCheckoutActivities(client *backend.Client) *CheckoutActivities {
	return &CheckoutActivities{backend: client}
}

// CreateOrder submits the full line-item set and payment method. The
// backend decides the order's initial payment status from the method and
// returns the new order identifier.
func (a *CheckoutActivities) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (string, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Creating order", "user_id", req.UserID, "items", len(req.OrderData), "payment_method", req.PaymentMethod)

	activity.RecordHeartbeat(ctx, "creating order")

	body := struct {
		OrderData     []models.OrderData   `json:"orderData"`
		PaymentMethod models.PaymentMethod `json:"payment_method"`
	}{req.OrderData, req.PaymentMethod}

	var resp models.CreateOrderResponse
	if err := a.backend.Post(ctx, "/create_order/"+req.UserID, body, &resp); err != nil {
		return "", err
	}

	orderID := string(resp.OrderID)
	logger.Info("Order created", "user_id", req.UserID, "order_id", orderID)
	return orderID, nil
}

// CreateOrderItems attaches the order's line items as a batch.
func (a *CheckoutActivities) CreateOrderItems(ctx context.Context, req models.CreateOrderItemsRequest) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Attaching order items", "user_id", req.UserID, "items", len(req.OrderItems))

	activity.RecordHeartbeat(ctx, "attaching order items")

	body := struct {
		OrderItems []models.OrderLineItem `json:"orderItems"`
	}{req.OrderItems}

	if err := a.backend.Post(ctx, "/create_order_items/"+req.UserID, body, nil); err != nil {
		return err
	}

	logger.Info("Order items attached", "user_id", req.UserID)
	return nil
}

// RecordActivity appends one activity log entry for the created order.
func (a *CheckoutActivities) RecordActivity(ctx context.Context, record models.ActivityRecord) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Recording activity", "user_id", record.UserID, "order_id", record.OrderID)

	if record.UserID == "" {
		return fmt.Errorf("activity record has no user id")
	}

	if err := a.backend.Post(ctx, "/activity_user/"+record.UserID, record, nil); err != nil {
		return err
	}

	logger.Info("Activity recorded", "user_id", record.UserID, "order_id", record.OrderID)
	return nil
}

// RemoveFromCart removes exactly the checked-out items from the user's
// persisted cart.
func (a *CheckoutActivities) RemoveFromCart(ctx context.Context, req models.RemoveFromCartRequest) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Clearing persisted cart", "user_id", req.UserID, "items", len(req.Items))

	activity.RecordHeartbeat(ctx, "clearing persisted cart")

	body := struct {
		Items []models.OrderData `json:"items"`
	}{req.Items}

	if err := a.backend.Post(ctx, "/remove_from_cart/"+req.UserID, body, nil); err != nil {
		return err
	}

	logger.Info("Persisted cart cleared", "user_id", req.UserID)
	return nil
}
