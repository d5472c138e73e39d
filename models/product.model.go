package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductType is the physical form of a catalog product
type ProductType string

const (
	ProductPowder ProductType = "powder"
	ProductLiquid ProductType = "liquid"
)

// Product represents a catalog entry
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name            string             `bson:"name" json:"name"`
	Type            ProductType        `bson:"type" json:"type"`
	Price           decimal.Decimal    `bson:"price" json:"price"`
	Description     string             `bson:"description" json:"description"`
	FullDescription string             `bson:"full_description" json:"fullDescription"`
	Composition     []string           `bson:"composition" json:"composition"`
	Benefits        []string           `bson:"benefits" json:"benefits"`
	Usage           string             `bson:"usage" json:"usage"`
	Image           string             `bson:"image" json:"image"`
}
