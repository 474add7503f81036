package models

import "time"

// Default values applied to cart items that were added without an explicit
// category or size.
const (
	DefaultCategoryName = "Uncategorized"
	DefaultSize         = "Normal size"
)

// CartItem is a single line item in a user's cart. Prices are in pesos.
type CartItem struct {
	UserID       string  `json:"user_id"`
	ItemName     string  `json:"item_name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	MenuImage    string  `json:"menu_img"`
	CategoryName string  `json:"categories_name"`
	Size         string  `json:"size"`
}

// Key identifies a cart line for merge and set-difference purposes. Two
// entries for the same item in the same size, owned by the same user, are
// the same line.
func (i CartItem) Key() string {
	size := i.Size
	if size == "" {
		size = DefaultSize
	}
	return i.UserID + "|" + i.ItemName + "|" + size
}

// LineTotal is quantity times unit price for this line.
func (i CartItem) LineTotal() float64 {
	return float64(i.Quantity) * i.Price
}

// PaymentMethod selects the payment provider for a checkout.
type PaymentMethod string

const (
	PaymentMethodPayPal PaymentMethod = "PayPal"
	PaymentMethodGCash  PaymentMethod = "GCash"
)

// SettlementMode describes whether the provider confirms funds
// synchronously or requires external verification afterwards.
type SettlementMode string

const (
	SettlementImmediate SettlementMode = "IMMEDIATE"
	SettlementDeferred  SettlementMode = "DEFERRED"
)

// SettlementMode returns how orders paid with this method are settled.
// PayPal confirms the transfer synchronously; GCash payments are verified
// manually, so the order stays pending.
func (m PaymentMethod) SettlementMode() SettlementMode {
	if m == PaymentMethodPayPal {
		return SettlementImmediate
	}
	return SettlementDeferred
}

// CheckoutRequest is one checkout attempt: the items being bought, the
// chosen payment method and, for immediately-settled methods, the provider
// transaction reference. It is immutable for the duration of the attempt.
type CheckoutRequest struct {
	UserID            string        `json:"user_id"`
	Items             []CartItem    `json:"items"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	ProviderReference string        `json:"provider_reference,omitempty"`
}

// GrandTotal is the sum of quantity times unit price across all items.
func (r CheckoutRequest) GrandTotal() float64 {
	var total float64
	for _, item := range r.Items {
		total += item.LineTotal()
	}
	return total
}

// TotalQuantity is the number of units across all items.
func (r CheckoutRequest) TotalQuantity() int {
	var n int
	for _, item := range r.Items {
		n += item.Quantity
	}
	return n
}

// FirstImage returns the image reference of the first item, used on
// transaction receipts.
func (r CheckoutRequest) FirstImage() string {
	if len(r.Items) == 0 {
		return ""
	}
	return r.Items[0].MenuImage
}

// NormalizedItems returns a copy of the request items stamped with the
// user id and with category and size defaults applied.
func (r CheckoutRequest) NormalizedItems() []CartItem {
	items := make([]CartItem, len(r.Items))
	for i, item := range r.Items {
		item.UserID = r.UserID
		if item.CategoryName == "" {
			item.CategoryName = DefaultCategoryName
		}
		if item.Size == "" {
			item.Size = DefaultSize
		}
		items[i] = item
	}
	return items
}

// PaymentStatus is the backend-owned payment state of an order. Every
// order starts pending; only an explicit settlement call moves it to paid.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// CheckoutStatus is the current step of a running checkout.
type CheckoutStatus string

const (
	CheckoutStatusIdle              CheckoutStatus = "IDLE"
	CheckoutStatusCreatingOrder     CheckoutStatus = "CREATING_ORDER"
	CheckoutStatusAttachingItems    CheckoutStatus = "ATTACHING_ITEMS"
	CheckoutStatusRecordingActivity CheckoutStatus = "RECORDING_ACTIVITY"
	CheckoutStatusClearingCart      CheckoutStatus = "CLEARING_CART"
	CheckoutStatusSettling          CheckoutStatus = "SETTLING"
	CheckoutStatusCompleted         CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed            CheckoutStatus = "FAILED"
)

// FailureReason classifies why a checkout attempt failed.
type FailureReason string

const (
	// FailureIdentityMissing means no user identity was available; no
	// remote call was made.
	FailureIdentityMissing FailureReason = "IDENTITY_MISSING"
	// FailureOrderCreation means the backend returned no usable order id;
	// no partial state exists, the attempt is safe to retry from scratch.
	FailureOrderCreation FailureReason = "ORDER_CREATION_FAILED"
	// FailureDownstreamStep means a step after order creation failed. The
	// order already exists server-side and is not rolled back.
	FailureDownstreamStep FailureReason = "DOWNSTREAM_STEP_FAILED"
	// FailurePaymentProvider means the payment widget itself reported an
	// error before any remote call was issued.
	FailurePaymentProvider FailureReason = "PAYMENT_PROVIDER_ERROR"
)

// CheckoutResult is the outcome of one checkout attempt.
type CheckoutResult struct {
	Succeeded     bool          `json:"succeeded"`
	OrderID       string        `json:"order_id,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	Reason        FailureReason `json:"reason,omitempty"`
	FailedStep    string        `json:"failed_step,omitempty"`
	Message       string        `json:"message,omitempty"`
}

// CheckoutState is the queryable state of a running checkout workflow.
type CheckoutState struct {
	UserID      string         `json:"user_id"`
	OrderID     string         `json:"order_id,omitempty"`
	Status      CheckoutStatus `json:"status"`
	FailedStep  string         `json:"failed_step,omitempty"`
	LastUpdated time.Time      `json:"last_updated"`
}
