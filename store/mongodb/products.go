package mongodb

import (
	"context"

	"go-storefront/models"
	"go-storefront/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.products.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Product](ctx, cursor)
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	res, err := s.products.InsertOne(ctx, product)
	if err != nil {
		return translate(err)
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := s.products.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ReplaceProducts swaps the whole catalog. It is not atomic; it is only
// used for seeding.
func (s *Store) ReplaceProducts(ctx context.Context, products []models.Product) error {
	if _, err := s.products.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}

	docs := make([]interface{}, len(products))
	for i := range products {
		if products[i].ID.IsZero() {
			products[i].ID = primitive.NewObjectID()
		}
		docs[i] = products[i]
	}
	_, err := s.products.InsertMany(ctx, docs)
	return err
}
