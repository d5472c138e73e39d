package controllers

import (
	"net/http"

	"go-storefront/services"
	"go-storefront/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartController handles cart-related requests
type CartController struct {
	Carts *services.CartService
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService) *CartController {
	return &CartController{Carts: carts}
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (req cartItemRequest) productID() (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return primitive.NilObjectID, utils.Validation("Invalid product ID")
	}
	return id, nil
}

// GetCart retrieves the user's cart, creating it on first access
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.Carts.GetOrCreate(ctx, identity.ID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

// AddToCart adds a product to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	productID, err := req.productID()
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.Carts.AddItem(ctx, identity.ID, productID, req.Quantity)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

// UpdateCartItem overwrites the quantity of a cart line; zero removes it
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	productID, err := req.productID()
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.Carts.UpdateItemQuantity(ctx, identity.ID, productID, req.Quantity)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	productID, err := pathID(r, "productId", "Product")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.Carts.RemoveItem(ctx, identity.ID, productID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

// ClearCart empties the user's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.Carts.Clear(ctx, identity.ID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}
