package models

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidQuantity is returned when a quantity is not a positive integer
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrItemNotInCart is returned when a cart has no line for the product
	ErrItemNotInCart = errors.New("item not found in cart")
	// ErrQuantityOverflow is returned when merging would exceed the largest quantity a line can hold
	ErrQuantityOverflow = errors.New("quantity is too large")
)

// CartItem represents a line in the cart. Price is the catalog price at the
// moment the product was first added and is never re-read from the catalog.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     decimal.Decimal    `bson:"price" json:"price"`
	AddedAt   time.Time          `bson:"added_at" json:"addedAt"`
}

// Subtotal returns price * quantity for the line
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart represents a user's shopping cart.
// Version increases on every persisted save and guards concurrent writers.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	Total     decimal.Decimal    `bson:"total" json:"total"`
	Version   int64              `bson:"version" json:"version"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// NewCart returns an empty cart for the user
func NewCart(userID primitive.ObjectID, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) indexOf(productID primitive.ObjectID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Item returns the line for productID, if any
func (c *Cart) Item(productID primitive.ObjectID) (CartItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return CartItem{}, false
}

// AddItem merges quantity into the existing line for the product or appends a
// new line priced at the product's current catalog price.
func (c *Cart) AddItem(product *Product, quantity int, now time.Time) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	if i := c.indexOf(product.ID); i >= 0 {
		if quantity > math.MaxInt-c.Items[i].Quantity {
			return ErrQuantityOverflow
		}
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, CartItem{
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.Price,
			AddedAt:   now,
		})
	}
	c.Recalculate()
	return nil
}

// SetQuantity overwrites the quantity of an existing line.
// A quantity of zero or less removes the line.
func (c *Cart) SetQuantity(productID primitive.ObjectID, quantity int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrItemNotInCart
	}

	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = quantity
	}
	c.Recalculate()
	return nil
}

// RemoveItem drops the line for productID. It reports whether a line was removed.
func (c *Cart) RemoveItem(productID primitive.ObjectID) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Recalculate()
	return true
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Recalculate()
}

// Recalculate sets Total to the sum of all line subtotals and returns it
func (c *Cart) Recalculate() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	c.Total = total
	return total
}

// Clone returns a deep copy of the cart
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = append([]CartItem{}, c.Items...)
	return &cp
}
