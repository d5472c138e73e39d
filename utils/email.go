// utils/email.go
package utils

import (
	"fmt"

	"go-storefront/logger"
	"go-storefront/models"

	"github.com/keighl/postmark"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService returns nil when no API token is configured; callers treat
// a nil service as "email disabled".
func NewEmailService(apiToken, sender string) *EmailService {
	if apiToken == "" {
		return nil
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log := logger.WithComponent("email")
	log.Debug().Str("to", toEmail).Str("subject", subject).Msg("email sent")
	return nil
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail, name string, order *models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Total Amount: <strong>%s</strong><br>Payment Method: <strong>%s</strong>",
		name,
		order.ID.Hex(),
		order.Total.StringFixed(2),
		order.PaymentMethod,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderStatusEmail tells the user their order moved to a new status
func (es *EmailService) SendOrderStatusEmail(toEmail, name, orderID string, status models.OrderStatus) error {
	subject := "Order Status Updated"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order (ID: %s) is now <strong>%s</strong>.",
		name, orderID, status,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendPaymentStatusEmail tells the user the payment status of their order changed
func (es *EmailService) SendPaymentStatusEmail(toEmail, name, orderID string, status models.PaymentStatus) error {
	subject := "Payment Status Updated"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order (ID: %s) payment status has been updated to '%s'.",
		name, orderID, status,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
