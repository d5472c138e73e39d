package notify

import (
	"context"
	"fmt"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusMailer sends the status-change mail
type StatusMailer interface {
	SendOrderStatusEmail(toEmail, name, orderID string, status models.OrderStatus) error
}

// UserFinder resolves the recipient of a status mail
type UserFinder interface {
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// EmailSink mails the order owner about the new status
type EmailSink struct {
	mailer StatusMailer
	users  UserFinder
}

// NewEmailSink creates an email sink
func NewEmailSink(mailer StatusMailer, users UserFinder) *EmailSink {
	return &EmailSink{mailer: mailer, users: users}
}

func (e *EmailSink) Name() string { return "email" }

func (e *EmailSink) Publish(ctx context.Context, evt StatusChange) error {
	userID, err := primitive.ObjectIDFromHex(evt.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", evt.UserID, err)
	}
	user, err := e.users.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find order owner: %w", err)
	}
	return e.mailer.SendOrderStatusEmail(user.Email, user.Name, evt.OrderID, evt.NewStatus)
}
