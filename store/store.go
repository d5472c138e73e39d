// Package store defines the persistence contracts of the storefront.
//
// Implementations live in store/mongodb (production) and store/memory
// (local development and tests). Both honour the same conditional-write
// semantics: a cart save succeeds only when the stored version still equals
// the version the caller read, and an order status write succeeds only when
// the stored status still equals the status the caller read.
package store

import (
	"context"
	"errors"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional write lost a race
	ErrConflict = errors.New("concurrent modification")
	// ErrDuplicate is returned when a unique key is already taken
	ErrDuplicate = errors.New("duplicate key")
)

// UserStore persists accounts
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindUserByEmail returns the user including the password hash
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
}

// ProductStore persists the catalog
type ProductStore interface {
	FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	ReplaceProducts(ctx context.Context, products []models.Product) error
}

// CartStore persists carts, one per user
type CartStore interface {
	FindCartByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// InsertCart stores a new cart with version 1. ErrDuplicate means the
	// user already has one.
	InsertCart(ctx context.Context, cart *models.Cart) error
	// SaveCart writes items and total if the stored version equals
	// cart.Version, then increments cart.Version. ErrConflict otherwise.
	SaveCart(ctx context.Context, cart *models.Cart) error
}

// OrderFilter narrows order lookups. A nil UserID matches every owner.
type OrderFilter struct {
	ID     *primitive.ObjectID
	UserID *primitive.ObjectID
}

// OrderStore persists orders
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	// FindOrder returns the order matching every set field of the filter
	FindOrder(ctx context.Context, filter OrderFilter) (*models.Order, error)
	// ListOrders returns matching orders newest first
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// UpdateOrderStatus sets status when the stored status equals from.
	// ErrConflict when it changed in between, ErrNotFound when the order is gone.
	UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) (*models.Order, error)
}

// MessageStore persists contact messages
type MessageStore interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context) ([]models.Message, error)
	UpdateMessageStatus(ctx context.Context, id primitive.ObjectID, status models.MessageStatus) (*models.Message, error)
}

// Store bundles every repository behind one backend
type Store interface {
	UserStore
	ProductStore
	CartStore
	OrderStore
	MessageStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
