package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxMessageName    = 100
	maxMessageSubject = 200
	maxMessageBody    = 2000
)

// MessageInput is a contact form submission
type MessageInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// InboxService stores contact messages for the shop admins
type InboxService struct {
	messages store.MessageStore
	now      Clock
}

// NewInboxService creates an inbox service
func NewInboxService(messages store.MessageStore) *InboxService {
	return &InboxService{messages: messages, now: time.Now}
}

// Submit stores a new pending message
func (s *InboxService) Submit(ctx context.Context, in MessageInput) (*models.Message, error) {
	msg := &models.Message{
		Name:    strings.TrimSpace(in.Name),
		Email:   normalizeEmail(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
		Status:  models.MessagePending,
	}

	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return nil, utils.Validation("Please provide all required fields: name, email, subject, message")
	}
	if !validEmail(msg.Email) {
		return nil, utils.Validation("Please use a valid email address")
	}
	for _, f := range []struct {
		field string
		value string
		max   int
	}{
		{"Name", msg.Name, maxMessageName},
		{"Subject", msg.Subject, maxMessageSubject},
		{"Message", msg.Message, maxMessageBody},
	} {
		if len([]rune(f.value)) > f.max {
			return nil, utils.Validation(fmt.Sprintf("%s cannot exceed %d characters", f.field, f.max))
		}
	}

	msg.CreatedAt = s.now()
	msg.UpdatedAt = msg.CreatedAt
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, storeErr(err, "Message not found")
	}
	return msg, nil
}

// List returns every message, newest first
func (s *InboxService) List(ctx context.Context) ([]models.Message, error) {
	msgs, err := s.messages.ListMessages(ctx)
	if err != nil {
		return nil, storeErr(err, "Message not found")
	}
	return msgs, nil
}

// UpdateStatus marks a message pending, read or replied
func (s *InboxService) UpdateStatus(ctx context.Context, id primitive.ObjectID, rawStatus string) (*models.Message, error) {
	status, ok := models.ParseMessageStatus(rawStatus)
	if !ok {
		return nil, utils.Validation("Invalid status. Must be: pending, read, or replied")
	}
	msg, err := s.messages.UpdateMessageStatus(ctx, id, status)
	if err != nil {
		return nil, storeErr(err, "Message not found")
	}
	return msg, nil
}
