package mongodb

import (
	"context"
	"time"

	"go-storefront/models"
	"go-storefront/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func orderQuery(f store.OrderFilter) bson.M {
	q := bson.M{}
	if f.ID != nil {
		q["_id"] = *f.ID
	}
	if f.UserID != nil {
		q["user_id"] = *f.UserID
	}
	return q
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	res, err := s.orders.InsertOne(ctx, order)
	if err != nil {
		return translate(err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) FindOrder(ctx context.Context, filter store.OrderFilter) (*models.Order, error) {
	var order models.Order
	if err := s.orders.FindOne(ctx, orderQuery(filter)).Decode(&order); err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.orders.Find(ctx, orderQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Order](ctx, cursor)
}

// UpdateOrderStatus only matches while the stored status is still from
func (s *Store) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	var order models.Order
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
		opts,
	).Decode(&order)
	if err == nil {
		return &order, nil
	}

	err = translate(err)
	if err == store.ErrNotFound {
		n, cerr := s.orders.CountDocuments(ctx, bson.M{"_id": id})
		if cerr != nil {
			return nil, cerr
		}
		if n > 0 {
			return nil, store.ErrConflict
		}
	}
	return nil, err
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) (*models.Order, error) {
	var order models.Order
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"payment_status": status, "updated_at": time.Now()}},
		opts,
	).Decode(&order)
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}
