package services

import (
	"context"
	"sync"
	"testing"

	"go-storefront/config"
	"go-storefront/models"
	"go-storefront/notify"
	"go-storefront/store"
	"go-storefront/store/memory"
	"go-storefront/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.StatusChange
}

func (r *recordingNotifier) Notify(evt notify.StatusChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingNotifier) Events() []notify.StatusChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.StatusChange{}, r.events...)
}

func verifyPolicy() TotalPolicy {
	return TotalPolicy{
		Verify:    true,
		Shipping:  decimal.RequireFromString("7.000"),
		Tolerance: decimal.RequireFromString("0.01"),
	}
}

func checkoutInput(total string) CreateOrderInput {
	return CreateOrderInput{
		Items: []OrderItemInput{{
			Product:  "P1",
			Name:     "SolVital",
			Image:    "/products/123.jpeg",
			Quantity: 3,
			Price:    decimal.RequireFromString("2.9"),
		}},
		Total: decimal.RequireFromString(total),
	}
}

func TestOrderCreateScenario(t *testing.T) {
	st := memory.New()
	svc := NewOrderService(st, st, nil, verifyPolicy())
	userID := primitive.NewObjectID()

	order, err := svc.Create(context.Background(), userID, checkoutInput("15.700"))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, "15.7", order.Total.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, "SolVital", order.Items[0].Name)
	assert.False(t, order.ID.IsZero())

	stored, err := st.FindOrder(context.Background(), filterFor(models.Identity{ID: userID}, order.ID))
	require.NoError(t, err)
	assert.Equal(t, order.Items, stored.Items)
}

func TestOrderCreateValidation(t *testing.T) {
	st := memory.New()
	svc := NewOrderService(st, st, nil, verifyPolicy())

	tests := []struct {
		name   string
		mutate func(*CreateOrderInput)
	}{
		{"no items", func(in *CreateOrderInput) { in.Items = nil }},
		{"zero total", func(in *CreateOrderInput) { in.Total = decimal.Zero }},
		{"negative total", func(in *CreateOrderInput) { in.Total = decimal.NewFromInt(-1) }},
		{"unknown payment method", func(in *CreateOrderInput) { in.PaymentMethod = "crypto" }},
		{"zero quantity", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }},
		{"missing product", func(in *CreateOrderInput) { in.Items[0].Product = " " }},
		{"total disagrees with items", func(in *CreateOrderInput) { in.Total = decimal.RequireFromString("8.7") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := checkoutInput("15.7")
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), primitive.NewObjectID(), in)
			require.Error(t, err)
			assert.Equal(t, utils.KindValidation, utils.KindOf(err))
		})
	}

	orders, err := st.ListOrders(context.Background(), store.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders, "rejected checkouts leave nothing behind")
}

func TestOrderTotalPolicy(t *testing.T) {
	tests := []struct {
		name    string
		verify  bool
		total   string
		wantErr bool
	}{
		{"exact", true, "15.7", false},
		{"within tolerance", true, "15.71", false},
		{"beyond tolerance", true, "15.72", true},
		{"trusted mismatch", false, "1.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := memory.New()
			policy := verifyPolicy()
			policy.Verify = tt.verify
			svc := NewOrderService(st, st, nil, policy)

			order, err := svc.Create(context.Background(), primitive.NewObjectID(), checkoutInput(tt.total))
			if tt.wantErr {
				assert.Equal(t, utils.KindValidation, utils.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.total).Equal(order.Total), "stored total is the caller's figure")
		})
	}
}

func TestOrderCreateDefaultPolicyTrustsTotal(t *testing.T) {
	st := memory.New()
	policy := TotalPolicyFrom(config.Default())
	require.False(t, policy.Verify)
	svc := NewOrderService(st, st, nil, policy)

	order, err := svc.Create(context.Background(), primitive.NewObjectID(), checkoutInput("8.7"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("8.7").Equal(order.Total))

	cfg := config.Default()
	cfg.OrderTotalPolicy = config.TotalVerify
	_, err = NewOrderService(st, st, nil, TotalPolicyFrom(cfg)).
		Create(context.Background(), primitive.NewObjectID(), checkoutInput("8.7"))
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestOrderOwnershipIsolation(t *testing.T) {
	st := memory.New()
	svc := NewOrderService(st, st, nil, verifyPolicy())
	ctx := context.Background()
	alice := models.Identity{ID: primitive.NewObjectID()}
	bob := models.Identity{ID: primitive.NewObjectID()}
	admin := models.Identity{ID: primitive.NewObjectID(), IsAdmin: true}

	order, err := svc.Create(ctx, bob.ID, checkoutInput("15.7"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, alice, order.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	_, err = svc.Get(ctx, alice, primitive.NewObjectID())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err), "miss and foreign order look the same")

	got, err := svc.Get(ctx, bob, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	got, err = svc.Get(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.UpdateStatus(ctx, alice, order.ID, "cancelled")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	mine, err := svc.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = svc.ListAll(ctx, bob)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
	all, err := svc.ListAll(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOrderAdminStatusUpdateNotifiesOwner(t *testing.T) {
	st := memory.New()
	notifier := &recordingNotifier{}
	svc := NewOrderService(st, st, notifier, verifyPolicy())
	ctx := context.Background()
	owner := primitive.NewObjectID()
	admin := models.Identity{ID: primitive.NewObjectID(), IsAdmin: true}

	order, err := svc.Create(ctx, owner, checkoutInput("15.7"))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, admin, order.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, updated.Status)

	events := notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, owner.Hex(), events[0].UserID)
	assert.Equal(t, order.ID.Hex(), events[0].OrderID)
	assert.Equal(t, models.OrderPending, events[0].OldStatus)
	assert.Equal(t, models.OrderDelivered, events[0].NewStatus)

	_, err = svc.UpdateStatus(ctx, admin, order.ID, "delivered")
	require.NoError(t, err)
	assert.Len(t, notifier.Events(), 1, "same status is not a change")

	reopened, err := svc.UpdateStatus(ctx, admin, order.ID, "processing")
	require.NoError(t, err, "admins may override the lifecycle")
	assert.Equal(t, models.OrderProcessing, reopened.Status)
	assert.Len(t, notifier.Events(), 2)
}

func TestOrderStatusWithoutListenersStillCommits(t *testing.T) {
	st := memory.New()
	hub := notify.NewHub(1)
	d := notify.NewDispatcher(hub, 0)
	svc := NewOrderService(st, st, d, verifyPolicy())
	ctx := context.Background()
	owner := primitive.NewObjectID()

	order, err := svc.Create(ctx, owner, checkoutInput("15.7"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, models.Identity{ID: owner, IsAdmin: true}, order.ID, "delivered")
	require.NoError(t, err)

	stored, err := svc.Get(ctx, models.Identity{ID: owner}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, stored.Status)
}

func TestOrderOwnerStatusUpdates(t *testing.T) {
	tests := []struct {
		name     string
		steps    []string
		wantErr  bool
		wantLast models.OrderStatus
	}{
		{"cancel pending", []string{"cancelled"}, false, models.OrderCancelled},
		{"skip forward", []string{"shipped"}, false, models.OrderShipped},
		{"case insensitive", []string{" Processing "}, false, models.OrderProcessing},
		{"backwards", []string{"shipped", "pending"}, true, models.OrderShipped},
		{"leave terminal", []string{"cancelled", "processing"}, true, models.OrderCancelled},
		{"unknown status", []string{"lost"}, true, models.OrderPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := memory.New()
			notifier := &recordingNotifier{}
			svc := NewOrderService(st, st, notifier, verifyPolicy())
			ctx := context.Background()
			owner := models.Identity{ID: primitive.NewObjectID()}

			order, err := svc.Create(ctx, owner.ID, checkoutInput("15.7"))
			require.NoError(t, err)

			var lastErr error
			for _, step := range tt.steps {
				_, lastErr = svc.UpdateStatus(ctx, owner, order.ID, step)
			}
			if tt.wantErr {
				assert.Equal(t, utils.KindValidation, utils.KindOf(lastErr))
			} else {
				assert.NoError(t, lastErr)
			}

			stored, err := svc.Get(ctx, owner, order.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLast, stored.Status)
		})
	}
}

// racingOrders moves the order underneath the first status write
type racingOrders struct {
	*memory.Store
	raced bool
}

func (r *racingOrders) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	if !r.raced {
		r.raced = true
		if _, err := r.Store.UpdateOrderStatus(ctx, id, from, models.OrderProcessing); err != nil {
			return nil, err
		}
	}
	return r.Store.UpdateOrderStatus(ctx, id, from, to)
}

func TestOrderStatusWriteIsConditional(t *testing.T) {
	st := memory.New()
	orders := &racingOrders{Store: st}
	notifier := &recordingNotifier{}
	svc := NewOrderService(orders, st, notifier, verifyPolicy())
	ctx := context.Background()
	owner := models.Identity{ID: primitive.NewObjectID()}

	order, err := svc.Create(ctx, owner.ID, checkoutInput("15.7"))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, owner, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	events := notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.OrderProcessing, events[0].OldStatus, "old status is the one actually replaced")
}

type fakeOrderMailer struct {
	payments chan models.PaymentStatus
}

func (f *fakeOrderMailer) SendOrderConfirmationEmail(toEmail, name string, order *models.Order) error {
	return nil
}

func (f *fakeOrderMailer) SendPaymentStatusEmail(toEmail, name, orderID string, status models.PaymentStatus) error {
	f.payments <- status
	return nil
}

func TestOrderPaymentStatus(t *testing.T) {
	st := memory.New()
	mailer := &fakeOrderMailer{payments: make(chan models.PaymentStatus, 1)}
	svc := NewOrderService(st, st, nil, verifyPolicy()).WithMailer(mailer)
	ctx := context.Background()

	owner := &models.User{Name: "Owner", Email: "owner@example.com"}
	require.NoError(t, st.CreateUser(ctx, owner))
	admin := models.Identity{ID: primitive.NewObjectID(), IsAdmin: true}

	order, err := svc.Create(ctx, owner.ID, checkoutInput("15.7"))
	require.NoError(t, err)

	_, err = svc.UpdatePaymentStatus(ctx, models.Identity{ID: owner.ID}, order.ID, "paid")
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	_, err = svc.UpdatePaymentStatus(ctx, admin, order.ID, "settled")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.UpdatePaymentStatus(ctx, admin, primitive.NewObjectID(), "paid")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	updated, err := svc.UpdatePaymentStatus(ctx, admin, order.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, order.Items, updated.Items)
	assert.Equal(t, models.PaymentPaid, <-mailer.payments)
}
