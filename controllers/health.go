package controllers

import (
	"context"
	"net/http"
	"time"

	"go-storefront/utils"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness and store reachability
type HealthController struct {
	Store Pinger
}

// Health answers 200 when the store responds, 503 otherwise
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := hc.Store.Ping(ctx); err != nil {
		utils.WriteError(w, utils.Unavailable("Database unavailable", err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
