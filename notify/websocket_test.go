package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-storefront/models"
	"go-storefront/utils"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type staticAuth map[string]models.Identity

func (s staticAuth) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return models.Identity{}, utils.Unauthenticated("Token is not valid", true)
}

func TestWSHandlerPushesOwnEvents(t *testing.T) {
	hub := NewHub(4)
	userID := primitive.NewObjectID()
	srv := httptest.NewServer(NewWSHandler(hub, staticAuth{"good": {ID: userID}}, "*"))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=good"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.SubscriberCount(userID.Hex()) == 1 }, time.Second, 10*time.Millisecond)

	evt := statusChange(userID)
	hub.Publish(evt)

	var got StatusChange
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, evt.OrderID, got.OrderID)
	assert.Equal(t, models.OrderPending, got.OldStatus)
	assert.Equal(t, models.OrderDelivered, got.NewStatus)
}

func TestWSHandlerRejectsBadToken(t *testing.T) {
	srv := httptest.NewServer(NewWSHandler(NewHub(1), staticAuth{}, "*"))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=bad"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
