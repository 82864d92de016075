package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go-catan/entities"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 8 << 10
	sendBuffer     = 64
)

// 一个 websocket 连接
type client struct {
	id       string
	username string
	conn     *websocket.Conn
	send     chan []byte
}

// Hub 持有所有在线连接，把游戏事件广播给每个客户端
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{clients: make(map[string]*client), log: log}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl.id] = cl
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("玩家连接", zap.String("client", cl.id), zap.String("username", cl.username), zap.Int("online", n))
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	cl, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(cl.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.log.Info("玩家断开", zap.String("client", id), zap.String("username", cl.username), zap.Int("online", n))
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish pushes ev to every connected client.
func (h *Hub) Publish(ctx context.Context, ev entities.GameEvent) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("事件序列化失败: %w", err)
	}
	h.broadcast(msg)
	return nil
}

// broadcast never blocks: a client whose buffer is full is dropped.
func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, cl := range h.clients {
		select {
		case cl.send <- msg:
		default:
			h.log.Warn("客户端发送缓冲已满，断开连接", zap.String("client", id))
			delete(h.clients, id)
			close(cl.send)
		}
	}
}

func (h *Hub) sendTo(id string, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cl, ok := h.clients[id]
	if !ok {
		return
	}
	select {
	case cl.send <- msg:
	default:
		h.log.Warn("回复丢弃，客户端发送缓冲已满", zap.String("client", id))
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, cl := range h.clients {
		delete(h.clients, id)
		close(cl.send)
	}
}

func (cl *client) writePump(log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("写入消息失败", zap.String("client", cl.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump hands every inbound frame to handle until the connection fails.
func (cl *client) readPump(log *zap.Logger, handle func(msg []byte)) {
	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("读取消息失败", zap.String("client", cl.id), zap.Error(err))
			}
			return
		}
		handle(msg)
	}
}
