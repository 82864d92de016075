package ws

import (
	"encoding/json"
	"net/http"

	"go-catan/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated requests and serves the action loop of each connection.
type Handler struct {
	hub  *Hub
	game *service.Game
	log  *zap.Logger
}

func NewHandler(hub *Hub, game *service.Game, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{hub: hub, game: game, log: log}
}

// HandleWebSocket WebSocket 主入口，token 通过查询参数传入
func (h *Handler) HandleWebSocket(c *gin.Context) {
	username, err := h.game.Authenticate(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未授权"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	cl := &client{id: uuid.NewString(), username: username, conn: conn, send: make(chan []byte, sendBuffer)}
	h.hub.register(cl)
	defer h.hub.unregister(cl.id)
	go cl.writePump(h.log)

	hello, _ := json.Marshal(gin.H{"type": "init", "clientId": cl.id, "username": username})
	h.hub.sendTo(cl.id, hello)

	ctx := c.Request.Context()
	cl.readPump(h.log, func(msg []byte) {
		reply := dispatch(ctx, h.game, username, msg)
		out, err := json.Marshal(reply)
		if err != nil {
			h.log.Error("回复序列化失败", zap.Error(err))
			return
		}
		h.hub.sendTo(cl.id, out)
	})
}
