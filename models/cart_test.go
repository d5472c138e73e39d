package models

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func product(price string) *Product {
	return &Product{ID: primitive.NewObjectID(), Name: "p", Price: decimal.RequireFromString(price)}
}

func assertTotalConsistent(t *testing.T, c *Cart) {
	t.Helper()
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, sum.Equal(c.Total), "total %s does not match items %s", c.Total, sum)
}

func TestCartAddItemMergesQuantity(t *testing.T) {
	now := time.Now()
	p1 := product("2.900")
	cart := NewCart(primitive.NewObjectID(), now)

	require.NoError(t, cart.AddItem(p1, 2, now))
	assert.True(t, decimal.RequireFromString("5.8").Equal(cart.Total))

	require.NoError(t, cart.AddItem(p1, 1, now))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("8.7").Equal(cart.Total))
	assertTotalConsistent(t, cart)
}

func TestCartAddItemRejectsNonPositiveQuantity(t *testing.T) {
	cart := NewCart(primitive.NewObjectID(), time.Now())
	for _, q := range []int{0, -1} {
		err := cart.AddItem(product("1"), q, time.Now())
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Empty(t, cart.Items)
}

func TestCartAddItemRejectsQuantityOverflow(t *testing.T) {
	now := time.Now()
	p1 := product("2.900")
	cart := NewCart(primitive.NewObjectID(), now)

	require.NoError(t, cart.AddItem(p1, math.MaxInt, now))
	before := cart.Total

	err := cart.AddItem(p1, 1, now)
	assert.ErrorIs(t, err, ErrQuantityOverflow)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, math.MaxInt, cart.Items[0].Quantity)
	assert.True(t, before.Equal(cart.Total))
	assert.True(t, cart.Total.IsPositive())
	assertTotalConsistent(t, cart)
}

func TestCartPriceSnapshot(t *testing.T) {
	now := time.Now()
	p := product("19.9")
	cart := NewCart(primitive.NewObjectID(), now)
	require.NoError(t, cart.AddItem(p, 1, now))

	p.Price = decimal.RequireFromString("25")
	require.NoError(t, cart.AddItem(p, 1, now))

	item, ok := cart.Item(p.ID)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("19.9").Equal(item.Price))
	assert.True(t, decimal.RequireFromString("39.8").Equal(cart.Total))
}

func TestCartSetQuantity(t *testing.T) {
	now := time.Now()
	p1, p2 := product("2.9"), product("19.9")

	tests := []struct {
		name      string
		target    primitive.ObjectID
		quantity  int
		wantErr   error
		wantItems int
		wantTotal string
	}{
		{name: "overwrite", target: p1.ID, quantity: 5, wantItems: 2, wantTotal: "34.4"},
		{name: "zero removes", target: p1.ID, quantity: 0, wantItems: 1, wantTotal: "19.9"},
		{name: "negative removes", target: p2.ID, quantity: -3, wantItems: 1, wantTotal: "5.8"},
		{name: "missing item", target: primitive.NewObjectID(), quantity: 1, wantErr: ErrItemNotInCart, wantItems: 2, wantTotal: "25.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := NewCart(primitive.NewObjectID(), now)
			require.NoError(t, cart.AddItem(p1, 2, now))
			require.NoError(t, cart.AddItem(p2, 1, now))

			err := cart.SetQuantity(tt.target, tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, cart.Items, tt.wantItems)
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(cart.Total), "got %s", cart.Total)
			assertTotalConsistent(t, cart)
		})
	}
}

func TestCartSetQuantityZeroTwice(t *testing.T) {
	now := time.Now()
	p := product("3")
	cart := NewCart(primitive.NewObjectID(), now)
	require.NoError(t, cart.AddItem(p, 1, now))

	require.NoError(t, cart.SetQuantity(p.ID, 0))
	assert.ErrorIs(t, cart.SetQuantity(p.ID, 0), ErrItemNotInCart)
	assert.True(t, cart.Total.IsZero())
}

func TestCartRemoveAndClear(t *testing.T) {
	now := time.Now()
	p1, p2 := product("1.5"), product("2")
	cart := NewCart(primitive.NewObjectID(), now)
	require.NoError(t, cart.AddItem(p1, 2, now))
	require.NoError(t, cart.AddItem(p2, 2, now))

	assert.True(t, cart.RemoveItem(p1.ID))
	assert.False(t, cart.RemoveItem(p1.ID))
	assert.True(t, decimal.NewFromInt(4).Equal(cart.Total))
	assertTotalConsistent(t, cart)

	cart.Clear()
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
}

func TestCartCloneIsIndependent(t *testing.T) {
	now := time.Now()
	p := product("1")
	cart := NewCart(primitive.NewObjectID(), now)
	require.NoError(t, cart.AddItem(p, 1, now))

	cp := cart.Clone()
	require.NoError(t, cp.SetQuantity(p.ID, 9))
	assert.Equal(t, 1, cart.Items[0].Quantity)
}
