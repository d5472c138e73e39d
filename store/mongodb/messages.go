package mongodb

import (
	"context"
	"time"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateMessage(ctx context.Context, msg *models.Message) error {
	res, err := s.messages.InsertOne(ctx, msg)
	if err != nil {
		return translate(err)
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) ListMessages(ctx context.Context) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.messages.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Message](ctx, cursor)
}

func (s *Store) UpdateMessageStatus(ctx context.Context, id primitive.ObjectID, status models.MessageStatus) (*models.Message, error) {
	var msg models.Message
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.messages.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
		opts,
	).Decode(&msg)
	if err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}
