package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go-storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func statusChange(userID primitive.ObjectID) StatusChange {
	order := &models.Order{ID: primitive.NewObjectID(), UserID: userID, Status: models.OrderDelivered}
	return NewStatusChange(order, models.OrderPending)
}

func receive(t *testing.T, sub *Subscription) StatusChange {
	t.Helper()
	select {
	case evt := <-sub.Events():
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return StatusChange{}
}

func TestNewStatusChange(t *testing.T) {
	userID := primitive.NewObjectID()
	evt := statusChange(userID)

	assert.Equal(t, EventOrderStatusChanged, evt.Type)
	assert.Equal(t, userID.Hex(), evt.UserID)
	assert.Equal(t, models.OrderPending, evt.OldStatus)
	assert.Equal(t, models.OrderDelivered, evt.NewStatus)
	assert.NotEmpty(t, evt.ID)
}

func TestHubFanOutPerUser(t *testing.T) {
	hub := NewHub(4)
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	tab1 := hub.Subscribe(alice.Hex())
	tab2 := hub.Subscribe(alice.Hex())
	other := hub.Subscribe(bob.Hex())
	defer tab1.Close()
	defer tab2.Close()
	defer other.Close()

	evt := statusChange(alice)
	assert.Equal(t, 2, hub.Publish(evt))
	assert.Equal(t, evt.ID, receive(t, tab1).ID)
	assert.Equal(t, evt.ID, receive(t, tab2).ID)

	select {
	case <-other.Events():
		t.Fatal("event leaked to another user's topic")
	default:
	}
}

func TestHubDropsWithoutSubscribers(t *testing.T) {
	hub := NewHub(1)
	assert.Equal(t, 0, hub.Publish(statusChange(primitive.NewObjectID())))
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(1)
	userID := primitive.NewObjectID()
	sub := hub.Subscribe(userID.Hex())
	defer sub.Close()

	assert.Equal(t, 1, hub.Publish(statusChange(userID)))
	assert.Equal(t, 0, hub.Publish(statusChange(userID)))
}

func TestSubscriptionClose(t *testing.T) {
	hub := NewHub(1)
	userID := primitive.NewObjectID().Hex()
	sub := hub.Subscribe(userID)
	assert.Equal(t, 1, hub.SubscriberCount(userID))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount(userID))
	_, ok := <-sub.Events()
	assert.False(t, ok)
}

type fakeSink struct {
	name  string
	err   error
	block chan struct{}
	calls atomic.Int32
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Publish(ctx context.Context, evt StatusChange) error {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func TestDispatcherNeverBlocksOnSinks(t *testing.T) {
	hub := NewHub(1)
	userID := primitive.NewObjectID()
	sub := hub.Subscribe(userID.Hex())
	defer sub.Close()

	slow := &fakeSink{name: "slow", block: make(chan struct{})}
	failing := &fakeSink{name: "failing", err: errors.New("broker down")}
	d := NewDispatcher(hub, time.Second, slow, failing)

	d.Notify(statusChange(userID))
	receive(t, sub)
	close(slow.block)
	d.Wait()
	assert.Equal(t, int32(1), slow.calls.Load())
	assert.Equal(t, int32(1), failing.calls.Load())
}

func TestDispatcherWithoutHub(t *testing.T) {
	sink := &fakeSink{name: "relay"}
	d := NewDispatcher(nil, time.Second, sink)
	d.Notify(statusChange(primitive.NewObjectID()))
	d.Wait()
	assert.Equal(t, int32(1), sink.calls.Load())
}

type fakeMailer struct {
	to     string
	status models.OrderStatus
}

func (f *fakeMailer) SendOrderStatusEmail(toEmail, name, orderID string, status models.OrderStatus) error {
	f.to, f.status = toEmail, status
	return nil
}

type fakeUsers map[primitive.ObjectID]*models.User

func (f fakeUsers) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func TestEmailSink(t *testing.T) {
	userID := primitive.NewObjectID()
	mailer := &fakeMailer{}
	sink := NewEmailSink(mailer, fakeUsers{userID: {ID: userID, Email: "a@b.co", Name: "A"}})

	require.NoError(t, sink.Publish(context.Background(), statusChange(userID)))
	assert.Equal(t, "a@b.co", mailer.to)
	assert.Equal(t, models.OrderDelivered, mailer.status)

	assert.Error(t, sink.Publish(context.Background(), statusChange(primitive.NewObjectID())))
}
