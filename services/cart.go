package services

import (
	"context"
	"errors"
	"time"

	"go-storefront/logger"
	"go-storefront/metrics"
	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxCartAttempts bounds the read-modify-write loop of one cart mutation
const maxCartAttempts = 5

// CartService mutates carts with a version-checked read-modify-write.
// A mutation that loses a race re-reads the cart and re-applies itself.
type CartService struct {
	carts    store.CartStore
	products store.ProductStore
	now      Clock
	logger   zerolog.Logger
}

// NewCartService creates a cart service
func NewCartService(carts store.CartStore, products store.ProductStore) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		now:      time.Now,
		logger:   logger.WithComponent("cart"),
	}
}

// GetOrCreate returns the user's cart, creating an empty one on first access
func (s *CartService) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.FindCartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, storeErr(err, "Cart not found")
	}

	cart = models.NewCart(userID, s.now())
	err = s.carts.InsertCart(ctx, cart)
	if errors.Is(err, store.ErrDuplicate) {
		// another request created it first
		cart, err = s.carts.FindCartByUser(ctx, userID)
	}
	if err != nil {
		return nil, storeErr(err, "Cart not found")
	}
	return cart, nil
}

// AddItem adds quantity of a product, merging into an existing line. A new
// line snapshots the product's current catalog price.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, utils.Validation("Quantity must be a positive integer")
	}

	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}

	return s.mutate(ctx, "add", userID, true, func(cart *models.Cart) (bool, error) {
		if err := cart.AddItem(product, quantity, s.now()); err != nil {
			return false, utils.Validation(err.Error())
		}
		return true, nil
	})
}

// UpdateItemQuantity overwrites the quantity of a line; zero or less removes it
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	return s.mutate(ctx, "update", userID, false, func(cart *models.Cart) (bool, error) {
		if err := cart.SetQuantity(productID, quantity); err != nil {
			if errors.Is(err, models.ErrItemNotInCart) {
				return false, utils.NotFound("Item not found in cart")
			}
			return false, utils.Validation(err.Error())
		}
		return true, nil
	})
}

// RemoveItem deletes the line for productID. Removing an absent line leaves
// the cart unchanged.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	return s.mutate(ctx, "remove", userID, false, func(cart *models.Cart) (bool, error) {
		return cart.RemoveItem(productID), nil
	})
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return s.mutate(ctx, "clear", userID, false, func(cart *models.Cart) (bool, error) {
		cart.Clear()
		return true, nil
	})
}

// mutate applies fn to the freshest cart and saves it if the stored version
// is still the one read. fn reports whether it changed anything.
func (s *CartService) mutate(ctx context.Context, op string, userID primitive.ObjectID, create bool, fn func(*models.Cart) (bool, error)) (*models.Cart, error) {
	log := s.logger.With().Str("user_id", userID.Hex()).Str("operation", op).Logger()

	for attempt := 1; attempt <= maxCartAttempts; attempt++ {
		var (
			cart *models.Cart
			err  error
		)
		if create {
			cart, err = s.GetOrCreate(ctx, userID)
		} else {
			cart, err = s.carts.FindCartByUser(ctx, userID)
			if err != nil {
				err = storeErr(err, "Cart not found")
			}
		}
		if err != nil {
			return nil, err
		}

		changed, err := fn(cart)
		if err != nil {
			return nil, err
		}
		if !changed {
			return cart, nil
		}

		cart.UpdatedAt = s.now()
		err = s.carts.SaveCart(ctx, cart)
		switch {
		case err == nil:
			metrics.CartMutationsTotal.WithLabelValues(op).Inc()
			return cart, nil
		case errors.Is(err, store.ErrConflict):
			metrics.CartConflictsTotal.Inc()
			log.Debug().Int("attempt", attempt).Msg("cart version conflict, retrying")
		default:
			return nil, storeErr(err, "Cart not found")
		}
	}

	log.Warn().Msg("cart mutation gave up after repeated version conflicts")
	return nil, utils.Conflict("Cart was modified concurrently, please retry", store.ErrConflict)
}
