// routes/routes.go
package routes

import (
	"net/http"

	"go-storefront/controllers"
	"go-storefront/metrics"
	"go-storefront/middleware"

	"github.com/gorilla/mux"
)

// Handlers groups everything the route table dispatches to
type Handlers struct {
	Guard   *middleware.Guard
	User    *controllers.UserController
	Product *controllers.ProductController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Message *controllers.MessageController
	Health  *controllers.HealthController
	// Live is the websocket endpoint; it authenticates on its own
	Live http.Handler
}

// NewRouter builds the router with all routes registered
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger)
	RegisterRoutes(router, h)
	return router
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, h Handlers) {
	router.HandleFunc("/health", h.Health.Health).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", h.User.Register).Methods("POST")
	api.HandleFunc("/auth/login", h.User.Login).Methods("POST")
	api.HandleFunc("/products", h.Product.GetProducts).Methods("GET")
	api.HandleFunc("/products/{id}", h.Product.GetProductByID).Methods("GET")
	api.HandleFunc("/messages/submit", h.Message.SubmitMessage).Methods("POST")
	if h.Live != nil {
		api.Handle("/ws", h.Live).Methods("GET")
	}

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(h.Guard.Middleware)
	protected.HandleFunc("/auth/me", h.User.GetProfile).Methods("GET")

	// Cart routes
	protected.HandleFunc("/cart", h.Cart.GetCart).Methods("GET")
	protected.HandleFunc("/cart/add", h.Cart.AddToCart).Methods("POST")
	protected.HandleFunc("/cart/update", h.Cart.UpdateCartItem).Methods("PUT")
	protected.HandleFunc("/cart/remove/{productId}", h.Cart.RemoveFromCart).Methods("DELETE")
	protected.HandleFunc("/cart/clear", h.Cart.ClearCart).Methods("DELETE")

	// Order routes; ListAll and payment updates check admin rights themselves
	protected.HandleFunc("/orders", h.Order.CreateOrder).Methods("POST")
	protected.HandleFunc("/orders", h.Order.GetOrders).Methods("GET")
	protected.HandleFunc("/orders/admin/all", h.Order.GetAllOrders).Methods("GET")
	protected.HandleFunc("/orders/my-orders", h.Order.GetOrders).Methods("GET")
	protected.HandleFunc("/orders/{orderId}", h.Order.GetOrder).Methods("GET")
	protected.HandleFunc("/orders/{orderId}", h.Order.UpdateOrderStatus).Methods("PUT")
	protected.HandleFunc("/orders/{orderId}/payment", h.Order.UpdateOrderPaymentStatus).Methods("PUT")

	// Admin routes
	admin := protected.NewRoute().Subrouter()
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/auth/all", h.User.GetAllUsers).Methods("GET")
	admin.HandleFunc("/orders/users/all", h.User.GetAllUsers).Methods("GET")
	admin.HandleFunc("/products", h.Product.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/seed", h.Product.SeedProducts).Methods("POST")
	admin.HandleFunc("/products/{id}", h.Product.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/messages/all", h.Message.GetAllMessages).Methods("GET")
	admin.HandleFunc("/messages/{messageId}/status", h.Message.UpdateMessageStatus).Methods("PUT")
}
