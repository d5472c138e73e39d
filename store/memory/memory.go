// Package memory is an in-process implementation of store.Store. It keeps
// documents in maps guarded by one mutex and copies on every read and write,
// so callers never share state with the store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-storefront/models"
	"go-storefront/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the in-memory backend
type Store struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]models.User
	products map[primitive.ObjectID]models.Product
	carts    map[primitive.ObjectID]models.Cart // keyed by user id
	orders   map[primitive.ObjectID]models.Order
	messages map[primitive.ObjectID]models.Message
}

var _ store.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]models.User),
		products: make(map[primitive.ObjectID]models.Product),
		carts:    make(map[primitive.ObjectID]models.Cart),
		orders:   make(map[primitive.ObjectID]models.Order),
		messages: make(map[primitive.ObjectID]models.Message),
	}
}

func (s *Store) Ping(ctx context.Context) error  { return nil }
func (s *Store) Close(ctx context.Context) error { return nil }

// Users

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Password = ""
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		u.Password = ""
		users = append(users, u)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return newer(users[i].CreatedAt, users[j].CreatedAt, users[i].ID, users[j].ID)
	})
	return users, nil
}

func (s *Store) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u.IsAdmin = isAdmin
			u.UpdatedAt = time.Now()
			s.users[id] = u
			return nil
		}
	}
	return store.ErrNotFound
}

// Products

func (s *Store) FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID.Hex() < products[j].ID.Hex()
	})
	return products, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	s.products[product.ID] = *product
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return store.ErrNotFound
	}
	s.products[product.ID] = *product
	return nil
}

func (s *Store) ReplaceProducts(ctx context.Context, products []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make(map[primitive.ObjectID]models.Product, len(products))
	for i := range products {
		if products[i].ID.IsZero() {
			products[i].ID = primitive.NewObjectID()
		}
		s.products[products[i].ID] = products[i]
	}
	return nil
}

// Carts

func (s *Store) FindCartByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *Store) InsertCart(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[cart.UserID]; ok {
		return store.ErrDuplicate
	}
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	cart.Version = 1
	s.carts[cart.UserID] = *cart.Clone()
	return nil
}

func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.carts[cart.UserID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Version != cart.Version {
		return store.ErrConflict
	}
	cart.Version++
	cart.UpdatedAt = time.Now()
	s.carts[cart.UserID] = *cart.Clone()
	return nil
}

// Orders

func matches(o models.Order, f store.OrderFilter) bool {
	if f.ID != nil && o.ID != *f.ID {
		return false
	}
	if f.UserID != nil && o.UserID != *f.UserID {
		return false
	}
	return true
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem{}, o.Items...)
	if o.ShippingAddress != nil {
		addr := *o.ShippingAddress
		o.ShippingAddress = &addr
	}
	return o
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (s *Store) FindOrder(ctx context.Context, filter store.OrderFilter) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if matches(o, filter) {
			o = cloneOrder(o)
			return &o, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []models.Order{}
	for _, o := range s.orders {
		if matches(o, filter) {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return newer(orders[i].CreatedAt, orders[j].CreatedAt, orders[i].ID, orders[j].ID)
	})
	return orders, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if o.Status != from {
		return nil, store.ErrConflict
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	s.orders[id] = o
	o = cloneOrder(o)
	return &o, nil
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o.PaymentStatus = status
	o.UpdatedAt = time.Now()
	s.orders[id] = o
	o = cloneOrder(o)
	return &o, nil
}

// Messages

func (s *Store) CreateMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	s.messages[msg.ID] = *msg
	return nil
}

func (s *Store) ListMessages(ctx context.Context) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]models.Message, 0, len(s.messages))
	for _, m := range s.messages {
		msgs = append(msgs, m)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return newer(msgs[i].CreatedAt, msgs[j].CreatedAt, msgs[i].ID, msgs[j].ID)
	})
	return msgs, nil
}

func (s *Store) UpdateMessageStatus(ctx context.Context, id primitive.ObjectID, status models.MessageStatus) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	m.Status = status
	m.UpdatedAt = time.Now()
	s.messages[id] = m
	return &m, nil
}

// newer orders by creation time descending, falling back to id
func newer(a, b time.Time, idA, idB primitive.ObjectID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA.Hex() > idB.Hex()
}
