package notify

import (
	"log"
	"net/http"
	"time"

	"rentals/internal/pkg/jwt"
	"rentals/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type Handler struct {
	hub      *Hub
	jwt      *jwt.Service
	upgrader websocket.Upgrader
}

// NewHandler builds the websocket endpoint. allowOrigin decides which browser
// origins may connect; nil allows all.
func NewHandler(hub *Hub, jwtService *jwt.Service, allowOrigin func(origin string) bool) *Handler {
	return &Handler{
		hub: hub,
		jwt: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowOrigin == nil || origin == "" || allowOrigin(origin)
			},
		},
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", h.Connect)
}

// Connect upgrades the request. Browsers cannot set headers on websocket
// requests, so the token comes in ?token=.
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "token query parameter is required")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid token")
		return
	}
	userID := claims.UserID()

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws_upgrade_failed user_id=%s error=%v", userID, err)
		return
	}

	cn := h.hub.register(userID, ws)
	log.Printf("ws_connected user_id=%s", userID)

	done := make(chan struct{})
	defer func() {
		close(done)
		h.hub.unregister(userID, cn)
		log.Printf("ws_disconnected user_id=%s", userID)
	}()

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go pingLoop(cn, done)
	readLoop(cn, userID)
}

func pingLoop(c *conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.writeControl(websocket.PingMessage); err != nil {
				return
			}
		}
	}
}

type clientMessage struct {
	Type string `json:"type"`
}

// readLoop only answers client pings; the stream is server to client.
func readLoop(c *conn, userID string) {
	for {
		var msg clientMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws_read_error user_id=%s error=%v", userID, err)
			}
			return
		}
		if msg.Type == "ping" {
			_ = c.writeJSON(Event{Type: EventPong, Timestamp: time.Now().UTC()})
		}
	}
}
