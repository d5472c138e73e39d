package mongodb

import (
	"context"
	"time"

	"go-storefront/models"
	"go-storefront/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) FindCartByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := s.carts.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart); err != nil {
		return nil, translate(err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (s *Store) InsertCart(ctx context.Context, cart *models.Cart) error {
	cart.Version = 1
	res, err := s.carts.InsertOne(ctx, cart)
	if err != nil {
		cart.Version = 0
		return translate(err)
	}
	cart.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// SaveCart writes items and total in one update, conditional on version
func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	res, err := s.carts.UpdateOne(ctx,
		bson.M{"_id": cart.ID, "version": cart.Version},
		bson.M{
			"$set": bson.M{"items": cart.Items, "total": cart.Total, "updated_at": now},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := s.carts.CountDocuments(ctx, bson.M{"_id": cart.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}

	cart.Version++
	cart.UpdatedAt = now
	return nil
}
