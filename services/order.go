package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-storefront/config"
	"go-storefront/logger"
	"go-storefront/metrics"
	"go-storefront/models"
	"go-storefront/notify"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxStatusAttempts bounds the conditional status write loop
const maxStatusAttempts = 3

// TotalPolicy decides how a caller-supplied order total is checked
type TotalPolicy struct {
	// Verify rejects totals that disagree with items plus shipping.
	// When false a mismatch is only logged.
	Verify    bool
	Shipping  decimal.Decimal
	Tolerance decimal.Decimal
}

// TotalPolicyFrom builds the policy selected by ORDER_TOTAL_POLICY
func TotalPolicyFrom(cfg config.Config) TotalPolicy {
	return TotalPolicy{
		Verify:    cfg.OrderTotalPolicy == config.TotalVerify,
		Shipping:  cfg.ShippingFlatRate,
		Tolerance: cfg.OrderTotalTolerance,
	}
}

// OrderMailer sends order mails. Delivery is best effort.
type OrderMailer interface {
	SendOrderConfirmationEmail(toEmail, name string, order *models.Order) error
	SendPaymentStatusEmail(toEmail, name, orderID string, status models.PaymentStatus) error
}

// OrderItemInput is one checkout line as sent by the client
type OrderItemInput struct {
	Product  string          `json:"product"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// CreateOrderInput is the checkout request
type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items"`
	Total           decimal.Decimal  `json:"total"`
	ShippingAddress *models.Address  `json:"shippingAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
}

// OrderService creates orders and drives their status lifecycle
type OrderService struct {
	orders   store.OrderStore
	users    store.UserStore
	notifier Notifier
	mailer   OrderMailer
	policy   TotalPolicy
	now      Clock
	logger   zerolog.Logger
}

// NewOrderService creates an order service. notifier may be nil.
func NewOrderService(orders store.OrderStore, users store.UserStore, notifier Notifier, policy TotalPolicy) *OrderService {
	return &OrderService{
		orders:   orders,
		users:    users,
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
		logger:   logger.WithComponent("order"),
	}
}

// WithMailer enables order mails
func (s *OrderService) WithMailer(m OrderMailer) *OrderService {
	s.mailer = m
	return s
}

// Create stores a new pending order for userID. Item names, images and
// prices are copied from the input and never re-read from the catalog.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, utils.Validation("Order must have at least one item")
	}
	if !in.Total.IsPositive() {
		return nil, utils.Validation("Invalid total amount")
	}
	method, ok := models.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return nil, utils.Validation(fmt.Sprintf("Invalid payment method %q", in.PaymentMethod))
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for i, it := range in.Items {
		if strings.TrimSpace(it.Product) == "" {
			return nil, utils.Validation(fmt.Sprintf("Item %d has no product reference", i+1))
		}
		if it.Quantity < 1 {
			return nil, utils.Validation(fmt.Sprintf("Item %d quantity must be a positive integer", i+1))
		}
		if it.Price.IsNegative() {
			return nil, utils.Validation(fmt.Sprintf("Item %d price must not be negative", i+1))
		}
		items = append(items, models.OrderItem{
			Product:  it.Product,
			Name:     it.Name,
			Image:    it.Image,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	now := s.now()
	order := &models.Order{
		UserID:          userID,
		Items:           items,
		Total:           in.Total,
		Status:          models.OrderPending,
		ShippingAddress: in.ShippingAddress,
		PaymentStatus:   models.PaymentPending,
		PaymentMethod:   method,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.checkTotal(order); err != nil {
		return nil, err
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, storeErr(err, "Order not found")
	}
	metrics.OrdersCreatedTotal.WithLabelValues(string(method)).Inc()
	s.logger.Info().
		Str("order_id", order.ID.Hex()).
		Str("user_id", userID.Hex()).
		Str("total", order.Total.String()).
		Msg("order created")

	if s.mailer != nil {
		go s.mailOwner(order.UserID, order.ID.Hex(), func(u *models.User) error {
			return s.mailer.SendOrderConfirmationEmail(u.Email, u.Name, order)
		})
	}
	return order, nil
}

// ExpectedTotal returns items plus shipping for order
func (s *OrderService) ExpectedTotal(order *models.Order) decimal.Decimal {
	return order.ItemsTotal().Add(s.policy.Shipping)
}

func (s *OrderService) checkTotal(order *models.Order) error {
	expected := s.ExpectedTotal(order)
	if expected.Sub(order.Total).Abs().LessThanOrEqual(s.policy.Tolerance) {
		return nil
	}
	if s.policy.Verify {
		return utils.Validation(fmt.Sprintf("Order total %s does not match items plus shipping (%s)",
			order.Total.StringFixed(3), expected.StringFixed(3)))
	}
	s.logger.Warn().
		Str("user_id", order.UserID.Hex()).
		Str("supplied", order.Total.String()).
		Str("expected", expected.String()).
		Msg("accepting order total that does not match items plus shipping")
	return nil
}

func filterFor(actor models.Identity, orderID primitive.ObjectID) store.OrderFilter {
	f := store.OrderFilter{ID: &orderID}
	if !actor.IsAdmin {
		f.UserID = &actor.ID
	}
	return f
}

// Get returns an order visible to actor. Another user's order is reported
// exactly like a missing one.
func (s *OrderService) Get(ctx context.Context, actor models.Identity, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindOrder(ctx, filterFor(actor, orderID))
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return order, nil
}

// ListForUser returns the user's orders, newest first
func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.orders.ListOrders(ctx, store.OrderFilter{UserID: &userID})
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return orders, nil
}

// ListAll returns every order, newest first. Admin only.
func (s *OrderService) ListAll(ctx context.Context, actor models.Identity) ([]models.Order, error) {
	if !actor.IsAdmin {
		return nil, utils.Unauthorized("Admin access required")
	}
	orders, err := s.orders.ListOrders(ctx, store.OrderFilter{})
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return orders, nil
}

// UpdateStatus moves an order to a new status. Owners may only make legal
// lifecycle moves; admins may set any status. The owner is notified after
// the write commits; setting the current status again changes nothing.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.Identity, orderID primitive.ObjectID, rawStatus string) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(rawStatus)
	if !ok {
		return nil, utils.Validation(fmt.Sprintf("Invalid status %q", rawStatus))
	}

	log := logger.WithOrderID(orderID.Hex())
	filter := filterFor(actor, orderID)

	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		order, err := s.orders.FindOrder(ctx, filter)
		if err != nil {
			return nil, storeErr(err, "Order not found")
		}

		prev := order.Status
		if prev == next {
			return order, nil
		}
		if !prev.CanTransition(next) {
			if !actor.IsAdmin {
				return nil, utils.Validation(fmt.Sprintf("Cannot change order status from %s to %s", prev, next))
			}
			log.Warn().
				Str("admin_id", actor.ID.Hex()).
				Str("from", string(prev)).
				Str("to", string(next)).
				Msg("admin override of order lifecycle")
		}

		updated, err := s.orders.UpdateOrderStatus(ctx, orderID, prev, next)
		if errors.Is(err, store.ErrConflict) {
			log.Debug().Int("attempt", attempt).Msg("order status changed underneath, retrying")
			continue
		}
		if err != nil {
			return nil, storeErr(err, "Order not found")
		}

		metrics.OrderStatusTransitionsTotal.WithLabelValues(string(prev), string(next)).Inc()
		log.Info().Str("from", string(prev)).Str("to", string(next)).Msg("order status updated")

		if s.notifier != nil {
			s.notifier.Notify(notify.NewStatusChange(updated, prev))
		}
		return updated, nil
	}

	return nil, utils.Conflict("Order was modified concurrently, please retry", store.ErrConflict)
}

// UpdatePaymentStatus sets the payment status of any order. Admin only.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, actor models.Identity, orderID primitive.ObjectID, rawStatus string) (*models.Order, error) {
	if !actor.IsAdmin {
		return nil, utils.Unauthorized("Admin access required")
	}
	status, ok := models.ParsePaymentStatus(rawStatus)
	if !ok {
		return nil, utils.Validation(fmt.Sprintf("Invalid payment status %q", rawStatus))
	}

	order, err := s.orders.UpdatePaymentStatus(ctx, orderID, status)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}

	if s.mailer != nil {
		go s.mailOwner(order.UserID, order.ID.Hex(), func(u *models.User) error {
			return s.mailer.SendPaymentStatusEmail(u.Email, u.Name, order.ID.Hex(), status)
		})
	}
	return order, nil
}

func (s *OrderService) mailOwner(userID primitive.ObjectID, orderID string, send func(*models.User) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log := s.logger.With().Str("order_id", orderID).Logger()
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Msg("order owner not found, skipping email")
		return
	}
	if err := send(user); err != nil {
		log.Warn().Err(err).Msg("failed to send order email")
	}
}
