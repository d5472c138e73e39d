package controllers

import (
	"net/http"

	"go-storefront/services"
	"go-storefront/utils"
)

// ProductController handles product-related requests
type ProductController struct {
	Catalog *services.CatalogService
}

// NewProductController creates a new ProductController
func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{Catalog: catalog}
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req services.ProductInput
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.Catalog.Create(ctx, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Product created successfully",
		"product": product,
	})
}

// GetProducts retrieves all products
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	products, err := pc.Catalog.List(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Product")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.Catalog.Get(ctx, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Product")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req services.ProductInput
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.Catalog.Update(ctx, id, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

// SeedProducts replaces the catalog with the starter products (Admin only)
func (pc *ProductController) SeedProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	products, err := pc.Catalog.Seed(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":  "Products seeded successfully",
		"count":    len(products),
		"products": products,
	})
}
