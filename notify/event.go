package notify

import (
	"time"

	"go-storefront/models"

	"github.com/google/uuid"
)

// EventOrderStatusChanged is the type of every StatusChange
const EventOrderStatusChanged = "orderStatusChanged"

// StatusChange is pushed to the owner of an order when its status changes
type StatusChange struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	OrderID   string             `json:"orderId"`
	UserID    string             `json:"userId"`
	OldStatus models.OrderStatus `json:"oldStatus"`
	NewStatus models.OrderStatus `json:"newStatus"`
	Order     *models.Order      `json:"order"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewStatusChange builds the event for order, which already carries the new status
func NewStatusChange(order *models.Order, oldStatus models.OrderStatus) StatusChange {
	return StatusChange{
		ID:        uuid.NewString(),
		Type:      EventOrderStatusChanged,
		OrderID:   order.ID.Hex(),
		UserID:    order.UserID.Hex(),
		OldStatus: oldStatus,
		NewStatus: order.Status,
		Order:     order,
		Timestamp: time.Now(),
	}
}
