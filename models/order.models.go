package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// position along the fulfilment path; cancelled sits outside it
var statusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

// ParseOrderStatus maps a raw value onto a known order status
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if st == OrderCancelled {
		return st, true
	}
	if _, ok := statusRank[st]; ok {
		return st, true
	}
	return "", false
}

// Terminal reports whether no further transition is legal
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition reports whether moving from s to next follows the lifecycle:
// forward along pending, processing, shipped, delivered (steps may be skipped),
// or to cancelled from any non-terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	from, ok1 := statusRank[s]
	to, ok2 := statusRank[next]
	return ok1 && ok2 && to > from
}

// OrderItem is a line frozen at checkout. Product is an opaque reference;
// name, image and price are copies so catalog edits never alter history.
type OrderItem struct {
	Product  string          `bson:"product" json:"product"`
	Name     string          `bson:"name" json:"name"`
	Image    string          `bson:"image,omitempty" json:"image,omitempty"`
	Quantity int             `bson:"quantity" json:"quantity"`
	Price    decimal.Decimal `bson:"price" json:"price"`
}

// Subtotal returns price * quantity for the line
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a user's order
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Total           decimal.Decimal    `bson:"total" json:"total"`
	Status          OrderStatus        `bson:"status" json:"status"`
	ShippingAddress *Address           `bson:"shipping_address,omitempty" json:"shippingAddress,omitempty"`
	PaymentStatus   PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	PaymentMethod   PaymentMethod      `bson:"payment_method" json:"paymentMethod"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ItemsTotal sums the line subtotals, without shipping
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
