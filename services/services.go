// Package services holds the business operations of the storefront. Each
// service validates its input before touching the store, translates store
// failures onto the utils error taxonomy and never returns a partial write.
package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go-storefront/notify"
	"go-storefront/store"
	"go-storefront/utils"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Notifier receives order status changes once they are committed
type Notifier interface {
	Notify(evt notify.StatusChange)
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func storeErr(err error, notFound string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return utils.NotFound(notFound)
	case errors.Is(err, store.ErrConflict):
		return utils.Conflict("Resource was modified concurrently, please retry", err)
	default:
		return utils.Unavailable("Database unavailable", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}
