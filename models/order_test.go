package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderDelivered, true},
		{OrderProcessing, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderProcessing, false},
		{OrderPending, OrderPending, false},
		{OrderPending, OrderCancelled, true},
		{OrderShipped, OrderCancelled, true},
		{OrderDelivered, OrderPending, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus(" Delivered ")
	assert.True(t, ok)
	assert.Equal(t, OrderDelivered, st)

	_, ok = ParseOrderStatus("returned")
	assert.False(t, ok)
}

func TestParsePaymentMethodDefaultsToCOD(t *testing.T) {
	m, ok := ParsePaymentMethod("")
	assert.True(t, ok)
	assert.Equal(t, PaymentCOD, m)

	_, ok = ParsePaymentMethod("crypto")
	assert.False(t, ok)
}

func TestOrderJSONUsesNumericMoney(t *testing.T) {
	o := Order{
		Items: []OrderItem{{Product: "P1", Name: "SolVital", Quantity: 3, Price: decimal.RequireFromString("2.9")}},
		Total: decimal.RequireFromString("15.7"),
	}
	raw, err := json.Marshal(o)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, 15.7, doc["total"])
	assert.True(t, decimal.RequireFromString("8.7").Equal(o.ItemsTotal()))
}
