package models

import "strings"

// PaymentStatus tracks money movement for an order
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod is a label only; no gateway is involved
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCOD          PaymentMethod = "cod"
)

// ParsePaymentStatus maps a raw value onto a known payment status
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch p := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return p, true
	}
	return "", false
}

// ParsePaymentMethod maps a raw value onto a known payment method.
// An empty value means cash on delivery.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "":
		return PaymentCOD, true
	case PaymentCreditCard, PaymentPayPal, PaymentBankTransfer, PaymentCOD:
		return m, true
	}
	return "", false
}
