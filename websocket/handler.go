package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// TokenVerifier checks the session token passed in the query string
type TokenVerifier interface {
	Verify(tokenString, purpose string) (*services.TokenClaims, error)
}

// Handler upgrades authenticated requests to WebSocket connections
type Handler struct {
	hub      *Hub
	tokens   TokenVerifier
	upgrader websocket.Upgrader
}

// NewHandler builds the /api/ws handler. An empty allowedOrigins accepts any origin.
func NewHandler(hub *Hub, tokens TokenVerifier, allowedOrigins []string) *Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Handler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

// HandleWebSocket authenticates the token query parameter and starts the client pumps
func (h *Handler) HandleWebSocket(c echo.Context) error {
	claims, err := h.tokens.Verify(c.QueryParam("token"), services.PurposeAccess)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "A valid session token is required",
		})
	}
	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "A valid session token is required",
		})
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already wrote the error response
		log.Printf("WebSocket upgrade failed: %v", err)
		return nil
	}

	client := newClient(userID, claims.Role)
	h.hub.register(client)
	client.send <- Notification{
		Type:    "connected",
		Message: "WebSocket connection established",
		UserID:  userID.Hex(),
	}

	go writePump(conn, client)
	go h.readPump(conn, client)
	return nil
}

// readPump only watches for the peer going away; clients do not send commands
func (h *Handler) readPump(conn *websocket.Conn, client *Client) {
	defer h.hub.unregister(client)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error for %s: %v", client.UserID.Hex(), err)
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case n, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
