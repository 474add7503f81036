package models

import (
	"encoding/json"
	"math"
	"time"
)

// MinorUnits converts a peso amount to centavos, the unit payment records
// are stored in.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// OrderData is the denormalized line item submitted when creating an order.
type OrderData struct {
	UserID       string  `json:"user_id"`
	ItemName     string  `json:"item_name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	MenuImage    string  `json:"menu_img"`
	FinalTotal   float64 `json:"final_total"`
	CategoryName string  `json:"categories_name"`
	Size         string  `json:"size"`
}

// OrderLineItem is an order line tagged with the order it belongs to.
type OrderLineItem struct {
	OrderID      string  `json:"order_id"`
	UserID       string  `json:"user_id"`
	ItemName     string  `json:"item_name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	MenuImage    string  `json:"menu_img"`
	FinalTotal   float64 `json:"final_total"`
	Size         string  `json:"size"`
	CategoryName string  `json:"categories_name"`
}

// BuildOrderData maps normalized cart items to the create-order payload.
func BuildOrderData(items []CartItem) []OrderData {
	data := make([]OrderData, len(items))
	for i, item := range items {
		data[i] = OrderData{
			UserID:       item.UserID,
			ItemName:     item.ItemName,
			Quantity:     item.Quantity,
			Price:        item.Price,
			MenuImage:    item.MenuImage,
			FinalTotal:   item.LineTotal(),
			CategoryName: item.CategoryName,
			Size:         item.Size,
		}
	}
	return data
}

// BuildOrderLineItems tags order data with the order id for the
// attach-items call.
func BuildOrderLineItems(orderID string, data []OrderData) []OrderLineItem {
	items := make([]OrderLineItem, len(data))
	for i, d := range data {
		items[i] = OrderLineItem{
			OrderID:      orderID,
			UserID:       d.UserID,
			ItemName:     d.ItemName,
			Quantity:     d.Quantity,
			Price:        d.Price,
			MenuImage:    d.MenuImage,
			FinalTotal:   d.FinalTotal,
			Size:         d.Size,
			CategoryName: d.CategoryName,
		}
	}
	return items
}

// CreateOrderRequest is the input to the create-order step. The user id
// goes into the request path, the rest into the body.
type CreateOrderRequest struct {
	UserID        string        `json:"user_id"`
	OrderData     []OrderData   `json:"orderData"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// OrderID tolerates both numeric and string order identifiers on the
// wire; the backend's auto-increment ids arrive as JSON numbers.
type OrderID string

func (id *OrderID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = OrderID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = OrderID(s)
	return nil
}

// CreateOrderResponse carries the server-assigned order identifier.
type CreateOrderResponse struct {
	OrderID OrderID `json:"orderId"`
}

// CreateOrderItemsRequest is the input to the attach-items step.
type CreateOrderItemsRequest struct {
	UserID     string          `json:"user_id"`
	OrderItems []OrderLineItem `json:"orderItems"`
}

// ActivityRecord is the body of POST /activity_user/{userId}, an
// append-only log entry written once per successful order creation.
type ActivityRecord struct {
	UserID       string    `json:"user_id"`
	ActivityDate time.Time `json:"activity_date"`
	OrderID      string    `json:"order_id"`
}

// RemoveFromCartRequest is the input to the clear-cart step; the backend
// removes exactly the submitted items from the persisted cart.
type RemoveFromCartRequest struct {
	UserID string      `json:"user_id"`
	Items  []OrderData `json:"items"`
}

// UpdatePaymentStatusRequest is the input to the mark-paid step.
type UpdatePaymentStatusRequest struct {
	OrderID       string        `json:"order_id"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// TransactionRecord is the body of POST /paypal_transaction. Amount is in
// minor units.
type TransactionRecord struct {
	Amount        int64         `json:"amount"`
	Description   string        `json:"description"`
	Remarks       string        `json:"remarks"`
	TransactionID string        `json:"transaction_id"`
	CheckoutURL   string        `json:"checkout_url"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	UserID        string        `json:"user_id"`
	OrderQuantity int           `json:"order_quantity"`
	MenuImage     string        `json:"menu_img"`
}

// SettlementRequest is the input to the settlement child workflow.
// AmountMinor is the grand total expressed in minor currency units.
type SettlementRequest struct {
	UserID            string        `json:"user_id"`
	OrderID           string        `json:"order_id"`
	ProviderReference string        `json:"provider_reference"`
	AmountMinor       int64         `json:"amount_minor"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	OrderQuantity     int           `json:"order_quantity"`
	MenuImage         string        `json:"menu_img"`
}

// PaymentRecord is the body of POST /paypal_payment. AmountPaid is in
// minor units.
type PaymentRecord struct {
	UserID        string        `json:"user_id"`
	AmountPaid    int64         `json:"amount_paid"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus string        `json:"payment_status"`
	TransactionID string        `json:"transaction_id"`
}
