package live

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"studiodesk/internal/pkg/jwt"
	"studiodesk/internal/pkg/response"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// Handler serves GET /ws/today?token=JWT. Browsers cannot set headers on a
// websocket handshake, so the token travels in the query.
type Handler struct {
	hub         *Hub
	broadcaster *Broadcaster
	jwt         *jwt.Service
	upgrader    websocket.Upgrader
}

// NewHandler builds the websocket handler. allowedOrigins empty means any
// origin is accepted.
func NewHandler(hub *Hub, broadcaster *Broadcaster, jwtService *jwt.Service, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		hub:         hub,
		broadcaster: broadcaster,
		jwt:         jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/today", h.Today)
}

func (h *Handler) Today(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "Token is required. Use ?token=YOUR_JWT_TOKEN")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	operatorID := claims.OperatorID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed operator_id=%s error=%v", operatorID, err)
		return
	}

	unregister := h.hub.Register(operatorID, conn)
	log.Printf("live connected operator_id=%s online=%d", operatorID, h.hub.GetOnlineCount())
	defer func() {
		unregister()
		log.Printf("live disconnected operator_id=%s", operatorID)
	}()

	if err := h.broadcaster.PushOperator(c.Request.Context(), operatorID); err != nil {
		log.Printf("live_initial_push_failed operator_id=%s error=%v", operatorID, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	readLoop(conn, operatorID)
}

// pingLoop keeps the connection alive. WriteControl may run concurrently
// with the hub's JSON writes.
func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames until the connection closes. The feed is
// server-push only.
func readLoop(conn *websocket.Conn, operatorID string) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket error operator_id=%s error=%v", operatorID, err)
			}
			return
		}
	}
}
