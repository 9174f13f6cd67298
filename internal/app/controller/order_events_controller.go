package controller

import (
	"net/http"

	apperrors "github.com/Sahani-Mohottige/SafeOnlineShop/internal/errors"
	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/middleware"
	ws "github.com/Sahani-Mohottige/SafeOnlineShop/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type OrderEventsController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewOrderEventsController accepts upgrades from the given origins. Requests
// without an Origin header (non-browser clients) are always accepted.
func NewOrderEventsController(hub *ws.Hub, allowedOrigins []string) *OrderEventsController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &OrderEventsController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Subscribe streams the caller's order events
// GET /api/v1/ws/orders
// The token may come in the query string and is redacted from the access log.
func (ctrl *OrderEventsController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
