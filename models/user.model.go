package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a shipping address. Every field is optional.
type Address struct {
	Street     string `bson:"street,omitempty" json:"street,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postal_code,omitempty" json:"postalCode,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

// User represents an account in the system
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	IsAdmin   bool               `bson:"is_admin" json:"isAdmin"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Identity is the authenticated caller attached to a request.
// It is sourced from the stored User, never from token claims alone.
type Identity struct {
	ID      primitive.ObjectID `json:"_id"`
	IsAdmin bool               `json:"isAdmin"`
	Email   string             `json:"email"`
	Name    string             `json:"name"`
}

// IdentityOf projects a stored user onto a request identity.
func IdentityOf(u *User) Identity {
	return Identity{ID: u.ID, IsAdmin: u.IsAdmin, Email: u.Email, Name: u.Name}
}
