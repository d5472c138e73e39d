package memory

import (
	"context"
	"testing"
	"time"

	"go-storefront/models"
	"go-storefront/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartVersioning(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := primitive.NewObjectID()

	cart := models.NewCart(userID, time.Now())
	require.NoError(t, s.InsertCart(ctx, cart))
	assert.Equal(t, int64(1), cart.Version)
	assert.ErrorIs(t, s.InsertCart(ctx, models.NewCart(userID, time.Now())), store.ErrDuplicate)

	a, err := s.FindCartByUser(ctx, userID)
	require.NoError(t, err)
	b, err := s.FindCartByUser(ctx, userID)
	require.NoError(t, err)

	p := &models.Product{ID: primitive.NewObjectID(), Price: decimal.NewFromInt(2)}
	require.NoError(t, a.AddItem(p, 1, time.Now()))
	require.NoError(t, s.SaveCart(ctx, a))
	assert.Equal(t, int64(2), a.Version)

	require.NoError(t, b.AddItem(p, 5, time.Now()))
	assert.ErrorIs(t, s.SaveCart(ctx, b), store.ErrConflict)

	stored, err := s.FindCartByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 1, stored.Items[0].Quantity)
}

func TestReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	order := &models.Order{UserID: primitive.NewObjectID(), Items: []models.OrderItem{{Product: "P1", Quantity: 1}}}
	require.NoError(t, s.CreateOrder(ctx, order))

	got, err := s.FindOrder(ctx, store.OrderFilter{ID: &order.ID})
	require.NoError(t, err)
	got.Items[0].Quantity = 99

	again, err := s.FindOrder(ctx, store.OrderFilter{ID: &order.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestOrderFiltersAndOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Now()

	for i, owner := range []primitive.ObjectID{alice, bob, alice} {
		require.NoError(t, s.CreateOrder(ctx, &models.Order{
			UserID:    owner,
			Status:    models.OrderPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	mine, err := s.ListOrders(ctx, store.OrderFilter{UserID: &alice})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].CreatedAt.After(mine[1].CreatedAt))

	all, err := s.ListOrders(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = s.FindOrder(ctx, store.OrderFilter{ID: &mine[0].ID, UserID: &bob})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateOrderStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	s := New()
	order := &models.Order{UserID: primitive.NewObjectID(), Status: models.OrderPending}
	require.NoError(t, s.CreateOrder(ctx, order))

	updated, err := s.UpdateOrderStatus(ctx, order.ID, models.OrderPending, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	_, err = s.UpdateOrderStatus(ctx, order.ID, models.OrderPending, models.OrderCancelled)
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.UpdateOrderStatus(ctx, primitive.NewObjectID(), models.OrderPending, models.OrderCancelled)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersHidePasswordExceptByEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := &models.User{Email: "a@b.co", Password: "hash"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Email: "A@B.CO"}), store.ErrDuplicate)

	byID, err := s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, byID.Password)

	byEmail, err := s.FindUserByEmail(ctx, "A@b.co")
	require.NoError(t, err)
	assert.Equal(t, "hash", byEmail.Password)

	require.NoError(t, s.SetAdmin(ctx, "a@b.co", true))
	byID, err = s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, byID.IsAdmin)
}
