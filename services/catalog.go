package services

import (
	"context"
	"strings"

	"go-storefront/logger"
	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const placeholderImage = "/products/placeholder.jpg"

// ProductInput creates or edits a catalog product. Nil or empty fields are
// left untouched on edit.
type ProductInput struct {
	Name            string             `json:"name"`
	Type            models.ProductType `json:"type"`
	Price           *decimal.Decimal   `json:"price"`
	Description     string             `json:"description"`
	FullDescription string             `json:"fullDescription"`
	Composition     []string           `json:"composition"`
	Benefits        []string           `json:"benefits"`
	Usage           string             `json:"usage"`
	Image           string             `json:"image"`
}

// CatalogService manages products. Price edits never reach existing carts
// or orders, which hold their own price snapshots.
type CatalogService struct {
	products store.ProductStore
}

// NewCatalogService creates a catalog service
func NewCatalogService(products store.ProductStore) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindProductByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return product, nil
}

func validType(t models.ProductType) bool {
	return t == models.ProductPowder || t == models.ProductLiquid
}

// Create adds a product. Name, a positive price and a description are required.
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" || in.Price == nil || description == "" {
		return nil, utils.Validation("Please provide all required fields: name, price, description")
	}
	if !in.Price.IsPositive() {
		return nil, utils.Validation("Price must be positive")
	}

	product := &models.Product{
		Name:            name,
		Type:            in.Type,
		Price:           *in.Price,
		Description:     description,
		FullDescription: in.FullDescription,
		Composition:     in.Composition,
		Benefits:        in.Benefits,
		Usage:           in.Usage,
		Image:           in.Image,
	}
	if product.Type == "" {
		product.Type = models.ProductPowder
	}
	if !validType(product.Type) {
		return nil, utils.Validation("Product type must be powder or liquid")
	}
	if product.FullDescription == "" {
		product.FullDescription = description
	}
	if product.Composition == nil {
		product.Composition = []string{}
	}
	if product.Benefits == nil {
		product.Benefits = []string{}
	}
	if product.Usage == "" {
		product.Usage = "Usage instructions to be added"
	}
	if product.Image == "" {
		product.Image = placeholderImage
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return product, nil
}

// Update edits the set fields of a product
func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, in ProductInput) (*models.Product, error) {
	if in.Price != nil && !in.Price.IsPositive() {
		return nil, utils.Validation("Price must be positive")
	}
	if in.Type != "" && !validType(in.Type) {
		return nil, utils.Validation("Product type must be powder or liquid")
	}

	product, err := s.products.FindProductByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}

	if v := strings.TrimSpace(in.Name); v != "" {
		product.Name = v
	}
	if in.Type != "" {
		product.Type = in.Type
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if v := strings.TrimSpace(in.Description); v != "" {
		product.Description = v
	}
	if in.FullDescription != "" {
		product.FullDescription = in.FullDescription
	}
	if in.Composition != nil {
		product.Composition = in.Composition
	}
	if in.Benefits != nil {
		product.Benefits = in.Benefits
	}
	if in.Usage != "" {
		product.Usage = in.Usage
	}
	if in.Image != "" {
		product.Image = in.Image
	}

	if err := s.products.UpdateProduct(ctx, product); err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return product, nil
}

// Seed replaces the catalog with the starter products
func (s *CatalogService) Seed(ctx context.Context) ([]models.Product, error) {
	products := SeedProducts()
	if err := s.products.ReplaceProducts(ctx, products); err != nil {
		return nil, storeErr(err, "Product not found")
	}
	log := logger.WithComponent("catalog")
	log.Info().Int("count", len(products)).Msg("catalog seeded")
	return products, nil
}

// SeedProducts returns the starter catalog
func SeedProducts() []models.Product {
	return []models.Product{
		{
			Name:            "SolVital",
			Type:            models.ProductPowder,
			Price:           decimal.RequireFromString("2.9"),
			Description:     "Natural organic growth stimulant mixed into the soil",
			FullDescription: "A premium organic growth stimulant made from selected natural ingredients. It works with your soil to promote strong root development and faster plant growth.",
			Composition:     []string{"Coffee grounds", "Olive leaves", "Corn husk", "Garlic skin"},
			Benefits: []string{
				"Naturally speeds up plant growth",
				"Enriches the soil with organic matter",
				"Improves soil structure and water retention",
				"Safe for every kind of plant",
			},
			Usage: "Mix 2 to 3 tablespoons per litre of soil, spread evenly and water well. Repeat every 2 to 3 weeks during the growing season.",
			Image: "/products/123.jpeg",
		},
		{
			Name:            "Jasmora",
			Type:            models.ProductLiquid,
			Price:           decimal.RequireFromString("19.9"),
			Description:     "Natural liquid fertilizer mixed with water",
			FullDescription: "A nutrient-rich liquid fertilizer made from natural ingredients. Mixed directly with water it is absorbed quickly and supports healthy foliage, bright flowers and strong fruiting.",
			Composition:     []string{"Sugar cane extract", "Molasses", "Sea minerals", "Coffee extract"},
			Benefits: []string{
				"Fast nutrient uptake",
				"Vigorous foliage growth",
				"More flowers and fruit",
				"Fully organic and sustainable",
			},
			Usage: "Mix 1 part with 10 parts water. Apply every 7 to 10 days as a foliar spray or soil drench.",
			Image: "/products/1234.jpeg",
		},
	}
}
