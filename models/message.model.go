package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageStatus tracks how the shop handled a contact message
type MessageStatus string

const (
	MessagePending MessageStatus = "pending"
	MessageRead    MessageStatus = "read"
	MessageReplied MessageStatus = "replied"
)

// Message is a contact form submission
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Subject   string             `bson:"subject" json:"subject"`
	Message   string             `bson:"message" json:"message"`
	Status    MessageStatus      `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ParseMessageStatus maps a raw value onto a known message status
func ParseMessageStatus(s string) (MessageStatus, bool) {
	switch st := MessageStatus(s); st {
	case MessagePending, MessageRead, MessageReplied:
		return st, true
	}
	return "", false
}
