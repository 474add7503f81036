package models_test

import (
	"testing"

	"restaurant-checkout-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrandTotalAndMinorUnits(t *testing.T) {
	req := models.CheckoutRequest{
		UserID: "user-7",
		Items: []models.CartItem{
			{ItemName: "Burger", Quantity: 2, Price: 150},
			{ItemName: "Fries", Quantity: 1, Price: 80},
		},
	}

	assert.Equal(t, 380.0, req.GrandTotal())
	assert.Equal(t, int64(38000), models.MinorUnits(req.GrandTotal()))
	assert.Equal(t, 3, req.TotalQuantity())
}

func TestMinorUnitsRounding(t *testing.T) {
	assert.Equal(t, int64(1999), models.MinorUnits(19.99))
	assert.Equal(t, int64(10), models.MinorUnits(0.1))
	assert.Equal(t, int64(0), models.MinorUnits(0))
}

func TestNormalizedItemsAppliesDefaults(t *testing.T) {
	req := models.CheckoutRequest{
		UserID: "user-7",
		Items: []models.CartItem{
			{ItemName: "Burger", Quantity: 2, Price: 150, CategoryName: "Mains", Size: "Large"},
			{ItemName: "Fries", Quantity: 1, Price: 80},
		},
	}

	items := req.NormalizedItems()
	require.Len(t, items, 2)

	assert.Equal(t, "user-7", items[0].UserID)
	assert.Equal(t, "Mains", items[0].CategoryName)
	assert.Equal(t, "Large", items[0].Size)

	assert.Equal(t, models.DefaultCategoryName, items[1].CategoryName)
	assert.Equal(t, models.DefaultSize, items[1].Size)

	// The request itself is untouched.
	assert.Empty(t, req.Items[1].CategoryName)
}

func TestSettlementMode(t *testing.T) {
	assert.Equal(t, models.SettlementImmediate, models.PaymentMethodPayPal.SettlementMode())
	assert.Equal(t, models.SettlementDeferred, models.PaymentMethodGCash.SettlementMode())
}

func TestCartItemKeyIncludesSize(t *testing.T) {
	large := models.CartItem{ItemName: "Soda", Size: "Large"}
	small := models.CartItem{ItemName: "Soda", Size: "Small"}
	defaulted := models.CartItem{ItemName: "Soda"}
	normal := models.CartItem{ItemName: "Soda", Size: models.DefaultSize}

	assert.NotEqual(t, large.Key(), small.Key())
	// An unset size and the explicit default are the same line.
	assert.Equal(t, normal.Key(), defaulted.Key())
}

func TestBuildOrderLineItemsTagsOrderID(t *testing.T) {
	data := models.BuildOrderData([]models.CartItem{
		{UserID: "user-7", ItemName: "Burger", Quantity: 2, Price: 150, CategoryName: "Mains", Size: models.DefaultSize},
	})
	require.Len(t, data, 1)
	assert.Equal(t, 300.0, data[0].FinalTotal)

	items := models.BuildOrderLineItems("1001", data)
	require.Len(t, items, 1)
	assert.Equal(t, "1001", items[0].OrderID)
	assert.Equal(t, "Burger", items[0].ItemName)
}
