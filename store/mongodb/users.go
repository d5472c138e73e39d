package mongodb

import (
	"context"
	"strings"
	"time"

	"go-storefront/models"
	"go-storefront/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var withoutPassword = bson.M{"password": 0}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		return translate(err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.users.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(withoutPassword).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.User](ctx, cursor)
}

func (s *Store) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": strings.ToLower(email)},
		bson.M{"$set": bson.M{"is_admin": isAdmin, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
