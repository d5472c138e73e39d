package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const requestTimeout = 10 * time.Second

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return utils.Validation("Invalid request body")
	}
	return nil
}

// pathID parses an id route variable. An id that cannot exist is reported
// the same way as one that does not.
func pathID(r *http.Request, name, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		return primitive.NilObjectID, utils.NotFound(what + " not found")
	}
	return id, nil
}

func caller(r *http.Request) (models.Identity, error) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return models.Identity{}, utils.Unauthenticated("User authentication required", false)
	}
	return identity, nil
}
