// controllers/order.go
package controllers

import (
	"net/http"

	"go-storefront/services"
	"go-storefront/utils"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders *services.OrderService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder creates a new order from the checkout payload
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req services.CreateOrderInput
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.Create(ctx, identity.ID, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}

// GetOrders lists the caller's orders, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.Orders.ListForUser(ctx, identity.ID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

// GetAllOrders lists every order (Admin only)
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.Orders.ListAll(ctx, identity)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

// GetOrder retrieves a single order of the caller
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	orderID, err := pathID(r, "orderId", "Order")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.Get(ctx, identity, orderID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

// UpdateOrderStatus changes the status of an order and notifies its owner
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	orderID, err := pathID(r, "orderId", "Order")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.UpdateStatus(ctx, identity, orderID, req.Status)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

// UpdateOrderPaymentStatus changes the payment status of an order (Admin only)
func (oc *OrderController) UpdateOrderPaymentStatus(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	orderID, err := pathID(r, "orderId", "Order")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req struct {
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.UpdatePaymentStatus(ctx, identity, orderID, req.PaymentStatus)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}
