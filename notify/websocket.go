package notify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go-storefront/logger"
	"go-storefront/metrics"
	"go-storefront/models"
	"go-storefront/utils"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Authenticator resolves a bearer token to the caller's identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Identity, error)
}

// WSHandler upgrades authenticated requests to a websocket subscribed to
// the caller's own user topic.
type WSHandler struct {
	hub      *Hub
	auth     Authenticator
	upgrader websocket.Upgrader
}

// NewWSHandler creates the live notification endpoint. allowedOrigin "*"
// accepts any origin.
func NewWSHandler(hub *Hub, auth Authenticator, allowedOrigin string) *WSHandler {
	return &WSHandler{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || strings.EqualFold(origin, allowedOrigin)
			},
		},
	}
}

func tokenFrom(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := h.auth.Authenticate(r.Context(), tokenFrom(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		return
	}
	defer conn.Close()

	userID := identity.ID.Hex()
	log := logger.WithUserID(userID)
	sub := h.hub.Subscribe(userID)
	defer sub.Close()

	metrics.LiveConnections.Inc()
	defer metrics.LiveConnections.Dec()
	log.Debug().Msg("live connection opened")

	// Client messages carry nothing; reading only detects close and pongs.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				log.Debug().Err(err).Msg("live connection write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			log.Debug().Msg("live connection closed")
			return
		}
	}
}
