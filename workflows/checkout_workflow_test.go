package workflows_test

import (
	"testing"

	"restaurant-checkout-system/activities"
	"restaurant-checkout-system/models"
	"restaurant-checkout-system/workflows"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

func sampleCart() []models.CartItem {
	return []models.CartItem{
		{
			ItemName:     "Burger",
			Quantity:     2,
			Price:        150.0,
			MenuImage:    "burger.png",
			CategoryName: "Mains",
		},
		{
			ItemName:  "Fries",
			Quantity:  1,
			Price:     80.0,
			MenuImage: "fries.png",
		},
	}
}

func newCheckoutEnv(t *testing.T) (*testsuite.TestWorkflowEnvironment, *activities.CheckoutActivities, *activities.SettlementActivities) {
	t.Helper()
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(workflows.CheckoutWorkflow)
	env.RegisterWorkflow(workflows.SettlementWorkflow)
	return env, activities.NewCheckoutActivities(nil), activities.NewSettlementActivities(nil)
}

func TestCheckoutWorkflow_ImmediateSettlement(t *testing.T) {
	env, act, sact := newCheckoutEnv(t)

	var callOrder []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { callOrder = append(callOrder, name) }
	}

	var createReq models.CreateOrderRequest
	env.OnActivity(act.CreateOrder, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			callOrder = append(callOrder, "create_order")
			createReq = args.Get(1).(models.CreateOrderRequest)
		}).
		Return("1001", nil).Once()

	var itemsReq models.CreateOrderItemsRequest
	env.OnActivity(act.CreateOrderItems, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			callOrder = append(callOrder, "create_order_items")
			itemsReq = args.Get(1).(models.CreateOrderItemsRequest)
		}).
		Return(nil).Once()

	var activityRecord models.ActivityRecord
	env.OnActivity(act.RecordActivity, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			callOrder = append(callOrder, "activity_user")
			activityRecord = args.Get(1).(models.ActivityRecord)
		}).
		Return(nil).Once()

	env.OnActivity(act.RemoveFromCart, mock.Anything, mock.Anything).
		Run(record("remove_from_cart")).
		Return(nil).Once()

	var statusReq models.UpdatePaymentStatusRequest
	env.OnActivity(sact.UpdatePaymentStatus, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			callOrder = append(callOrder, "update_payment_status")
			statusReq = args.Get(1).(models.UpdatePaymentStatusRequest)
		}).
		Return(nil).Once()

	var txnRecord models.TransactionRecord
	env.OnActivity(sact.RecordTransaction, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			callOrder = append(callOrder, "paypal_transaction")
			txnRecord = args.Get(1).(models.TransactionRecord)
		}).
		Return(nil).Once()

	var paymentRecord models.PaymentRecord
	env.OnActivity(sact.RecordPayment, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			callOrder = append(callOrder, "paypal_payment")
			paymentRecord = args.Get(1).(models.PaymentRecord)
		}).
		Return(nil).Once()

	env.ExecuteWorkflow(workflows.CheckoutWorkflow, models.CheckoutRequest{
		UserID:            "user-7",
		Items:             sampleCart(),
		PaymentMethod:     models.PaymentMethodPayPal,
		ProviderReference: "TXN123",
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result models.CheckoutResult
	require.NoError(t, env.GetWorkflowResult(&result))

	assert.True(t, result.Succeeded)
	assert.Equal(t, "1001", result.OrderID)
	assert.Equal(t, models.PaymentStatusPaid, result.PaymentStatus)
	assert.Equal(t, "Order placed successfully and cart cleared!", result.Message)

	// The step sequence is a hard ordering requirement.
	assert.Equal(t, []string{
		"create_order",
		"create_order_items",
		"activity_user",
		"remove_from_cart",
		"update_payment_status",
		"paypal_transaction",
		"paypal_payment",
	}, callOrder)

	// Create-order payload carries normalized items with defaults applied.
	require.Len(t, createReq.OrderData, 2)
	assert.Equal(t, models.PaymentMethodPayPal, createReq.PaymentMethod)
	assert.Equal(t, "Mains", createReq.OrderData[0].CategoryName)
	assert.Equal(t, models.DefaultSize, createReq.OrderData[0].Size)
	assert.Equal(t, models.DefaultCategoryName, createReq.OrderData[1].CategoryName)
	assert.Equal(t, 300.0, createReq.OrderData[0].FinalTotal)
	assert.Equal(t, "user-7", createReq.OrderData[0].UserID)

	// Line items are tagged with the created order id.
	require.Len(t, itemsReq.OrderItems, 2)
	for _, item := range itemsReq.OrderItems {
		assert.Equal(t, "1001", item.OrderID)
	}

	assert.Equal(t, "user-7", activityRecord.UserID)
	assert.Equal(t, "1001", activityRecord.OrderID)
	assert.False(t, activityRecord.ActivityDate.IsZero())

	// Settlement: grand total 380 pesos, 38000 in minor units.
	assert.Equal(t, "1001", statusReq.OrderID)
	assert.Equal(t, models.PaymentStatusPaid, statusReq.PaymentStatus)

	assert.Equal(t, int64(38000), txnRecord.Amount)
	assert.Equal(t, "TXN123", txnRecord.TransactionID)
	assert.Equal(t, "https://www.paypal.com/checkoutnow?token=TXN123", txnRecord.CheckoutURL)
	assert.Equal(t, 3, txnRecord.OrderQuantity)
	assert.Equal(t, "burger.png", txnRecord.MenuImage)

	assert.Equal(t, int64(38000), paymentRecord.AmountPaid)
	assert.Equal(t, "completed", paymentRecord.PaymentStatus)
	assert.Equal(t, "TXN123", paymentRecord.TransactionID)
}

func TestCheckoutWorkflow_DeferredSettlement(t *testing.T) {
	env, act, _ := newCheckoutEnv(t)

	env.OnActivity(act.CreateOrder, mock.Anything, mock.Anything).Return("2002", nil).Once()
	env.OnActivity(act.CreateOrderItems, mock.Anything, mock.Anything).Return(nil).Once()
	env.OnActivity(act.RecordActivity, mock.Anything, mock.Anything).Return(nil).Once()
	env.OnActivity(act.RemoveFromCart, mock.Anything, mock.Anything).Return(nil).Once()

	env.ExecuteWorkflow(workflows.CheckoutWorkflow, models.CheckoutRequest{
		UserID:        "user-7",
		Items:         sampleCart(),
		PaymentMethod: models.PaymentMethodGCash,
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result models.CheckoutResult
	require.NoError(t, env.GetWorkflowResult(&result))

	// Order stays pending, cart is still cleared, activity still written.
	assert.True(t, result.Succeeded)
	assert.Equal(t, "2002", result.OrderID)
	assert.Equal(t, models.PaymentStatusPending, result.PaymentStatus)

	env.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything)
	env.AssertNotCalled(t, "RecordTransaction", mock.Anything, mock.Anything)
	env.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything)
}

func TestCheckoutWorkflow_OrderCreationFailed(t *testing.T) {
	tests := []struct {
		name    string
		orderID string
		err     error
	}{
		{name: "No Order ID Returned", orderID: ""},
		{name: "Create Order Errors", orderID: "", err: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, act, _ := newCheckoutEnv(t)

			env.OnActivity(act.CreateOrder, mock.Anything, mock.Anything).Return(tt.orderID, tt.err).Once()

			env.ExecuteWorkflow(workflows.CheckoutWorkflow, models.CheckoutRequest{
				UserID:        "user-7",
				Items:         sampleCart(),
				PaymentMethod: models.PaymentMethodPayPal,
			})

			require.True(t, env.IsWorkflowCompleted())
			require.NoError(t, env.GetWorkflowError())

			var result models.CheckoutResult
			require.NoError(t, env.GetWorkflowResult(&result))

			assert.False(t, result.Succeeded)
			assert.Equal(t, models.FailureOrderCreation, result.Reason)
			assert.Empty(t, result.OrderID)

			// No other remote call is made.
			env.AssertNotCalled(t, "CreateOrderItems", mock.Anything, mock.Anything)
			env.AssertNotCalled(t, "RecordActivity", mock.Anything, mock.Anything)
			env.AssertNotCalled(t, "RemoveFromCart", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutWorkflow_DownstreamFailureIsNotRolledBack(t *testing.T) {
	env, act, _ := newCheckoutEnv(t)

	env.OnActivity(act.CreateOrder, mock.Anything, mock.Anything).Return("3003", nil).Once()
	env.OnActivity(act.CreateOrderItems, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	env.ExecuteWorkflow(workflows.CheckoutWorkflow, models.CheckoutRequest{
		UserID:            "user-7",
		Items:             sampleCart(),
		PaymentMethod:     models.PaymentMethodPayPal,
		ProviderReference: "TXN123",
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result models.CheckoutResult
	require.NoError(t, env.GetWorkflowResult(&result))

	assert.False(t, result.Succeeded)
	assert.Equal(t, models.FailureDownstreamStep, result.Reason)
	assert.Equal(t, "create_order_items", result.FailedStep)
	// The order exists server-side and is reported, not rolled back.
	assert.Equal(t, "3003", result.OrderID)
	assert.Equal(t, models.PaymentStatusPending, result.PaymentStatus)
	assert.NotEmpty(t, result.Message)

	// CreateOrder ran exactly once; the id is never re-submitted.
	env.AssertNumberOfCalls(t, "CreateOrder", 1)
	env.AssertNotCalled(t, "RecordActivity", mock.Anything, mock.Anything)
	env.AssertNotCalled(t, "RemoveFromCart", mock.Anything, mock.Anything)
	env.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything)
}

func TestCheckoutWorkflow_SettlementFailure(t *testing.T) {
	env, act, sact := newCheckoutEnv(t)

	env.OnActivity(act.CreateOrder, mock.Anything, mock.Anything).Return("4004", nil).Once()
	env.OnActivity(act.CreateOrderItems, mock.Anything, mock.Anything).Return(nil).Once()
	env.OnActivity(act.RecordActivity, mock.Anything, mock.Anything).Return(nil).Once()
	env.OnActivity(act.RemoveFromCart, mock.Anything, mock.Anything).Return(nil).Once()
	env.OnActivity(sact.UpdatePaymentStatus, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	env.ExecuteWorkflow(workflows.CheckoutWorkflow, models.CheckoutRequest{
		UserID:            "user-7",
		Items:             sampleCart(),
		PaymentMethod:     models.PaymentMethodPayPal,
		ProviderReference: "TXN123",
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result models.CheckoutResult
	require.NoError(t, env.GetWorkflowResult(&result))

	assert.False(t, result.Succeeded)
	assert.Equal(t, models.FailureDownstreamStep, result.Reason)
	assert.Equal(t, "settlement", result.FailedStep)
	assert.Equal(t, "4004", result.OrderID)

	env.AssertNotCalled(t, "RecordTransaction", mock.Anything, mock.Anything)
	env.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything)
}

func TestCheckoutWorkflow_Preconditions(t *testing.T) {
	tests := []struct {
		name       string
		req        models.CheckoutRequest
		wantReason models.FailureReason
	}{
		{
			name: "Identity Missing",
			req: models.CheckoutRequest{
				Items:         sampleCart(),
				PaymentMethod: models.PaymentMethodPayPal,
			},
			wantReason: models.FailureIdentityMissing,
		},
		{
			name: "Empty Cart",
			req: models.CheckoutRequest{
				UserID:        "user-7",
				PaymentMethod: models.PaymentMethodPayPal,
			},
			wantReason: models.FailureOrderCreation,
		},
		{
			name: "Zero Quantity",
			req: models.CheckoutRequest{
				UserID:        "user-7",
				Items:         []models.CartItem{{ItemName: "Burger", Quantity: 0, Price: 150}},
				PaymentMethod: models.PaymentMethodPayPal,
			},
			wantReason: models.FailureOrderCreation,
		},
		{
			name: "Negative Price",
			req: models.CheckoutRequest{
				UserID:        "user-7",
				Items:         []models.CartItem{{ItemName: "Burger", Quantity: 1, Price: -5}},
				PaymentMethod: models.PaymentMethodPayPal,
			},
			wantReason: models.FailureOrderCreation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, _ := newCheckoutEnv(t)

			// No activities are mocked: any remote call would fail the test.
			env.ExecuteWorkflow(workflows.CheckoutWorkflow, tt.req)

			require.True(t, env.IsWorkflowCompleted())
			require.NoError(t, env.GetWorkflowError())

			var result models.CheckoutResult
			require.NoError(t, env.GetWorkflowResult(&result))

			assert.False(t, result.Succeeded)
			assert.Equal(t, tt.wantReason, result.Reason)
			assert.Empty(t, result.OrderID)
		})
	}
}
