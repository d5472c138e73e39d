package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   ErrorKind
		wantMsg    string
	}{
		{"not found", NotFound("Order not found"), http.StatusNotFound, KindNotFound, "Order not found"},
		{"wrapped validation", fmt.Errorf("ctx: %w", Validation("bad")), http.StatusBadRequest, KindValidation, "bad"},
		{"forbidden", Unauthorized("Admin access required"), http.StatusForbidden, KindUnauthorized, "Admin access required"},
		{"backend outage", Unavailable("Database unavailable", errors.New("socket reset by peer")), http.StatusServiceUnavailable, KindStoreUnavailable, "Database unavailable"},
		{"unknown error hides detail", errors.New("socket reset by peer"), http.StatusInternalServerError, KindInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.NotContains(t, rec.Body.String(), "socket")
		})
	}
}

func TestWriteErrorReauthSignal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, Unauthenticated("Token is not valid", true))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.RequiresReauth)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}
