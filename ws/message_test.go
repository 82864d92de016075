package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-catan/dto"
	"go-catan/engine"
	"go-catan/entities"
	"go-catan/repository"
	"go-catan/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

func TestDecodePayload(t *testing.T) {
	var town dto.TownRequest
	err := decodePayload(map[string]interface{}{"type": "buildTown", "buildId": "12", "level": float64(2)}, &town)
	if err != nil {
		t.Fatalf("decode town: %v", err)
	}
	if town.BuildID != 12 || town.Level != 2 {
		t.Fatalf("town = %+v", town)
	}

	var dice dto.DiceRequest
	if err := decodePayload(map[string]interface{}{"diceResult": "8"}, &dice); err != nil {
		t.Fatalf("decode dice: %v", err)
	}
	if dice.DiceResult == nil || *dice.DiceResult != 8 {
		t.Fatalf("dice = %v", dice.DiceResult)
	}

	var trade dto.TradeRequest
	err = decodePayload(map[string]interface{}{
		"toPlayerId":              float64(3),
		"selectedResourcesByUser": []interface{}{float64(0), float64(2), "1"},
	}, &trade)
	if err != nil {
		t.Fatalf("decode trade: %v", err)
	}
	if trade.ToPlayerID != 3 || len(trade.Resources) != 3 || trade.Resources[1] != 2 || trade.Resources[2] != 1 {
		t.Fatalf("trade = %+v", trade)
	}

	tests := []struct {
		name string
		msg  map[string]interface{}
		out  interface{}
	}{
		{"missing build id", map[string]interface{}{"level": 1}, &dto.TownRequest{}},
		{"level out of range", map[string]interface{}{"buildId": 3, "level": 3}, &dto.TownRequest{}},
		{"not a number", map[string]interface{}{"hexId": "north"}, &dto.ThiefRequest{}},
		{"missing accept", map[string]interface{}{"tradeId": 4}, &dto.ResolveTradeRequest{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodePayload(tt.msg, tt.out)
			if engine.KindOf(err) != engine.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func newTestGame(t *testing.T, hub *Hub) *service.Game {
	t.Helper()
	store := repository.NewMemoryStore(repository.DefaultSeed(2, 19))
	return service.New(store, service.Options{
		Publisher:    hub,
		PasswordCost: bcrypt.MinCost,
		JWTSecret:    []byte("ws-secret"),
		Rand:         service.NewLockedRand(3),
	})
}

func TestDispatchRejectsUnknownAction(t *testing.T) {
	g := newTestGame(t, NewHub(nil))
	tests := []struct {
		name string
		raw  string
		code string
		rid  string
	}{
		{"garbage", `{not json`, "ValidationError", ""},
		{"unknown", `{"type":"fly","requestId":"r1"}`, "ValidationError", "r1"},
		{"unknown player", `{"type":"endTurn","requestId":"r2"}`, "PlayerNotFound", "r2"},
		{"numeric type", `{"type":5,"requestId":"r3"}`, "ValidationError", "r3"},
		{"numeric request id", `{"type":"endTurn","requestId":7}`, "ValidationError", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := dispatch(context.Background(), g, "nobody", []byte(tt.raw))
			if reply.OK || reply.Code != tt.code || reply.RequestID != tt.rid {
				t.Fatalf("reply = %+v", reply)
			}
		})
	}
}

func TestWebSocketActionRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	g := newTestGame(t, hub)
	_, token, err := g.Register(context.Background(), "ana", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	r := gin.New()
	r.GET("/ws", NewHandler(hub, g, nil).HandleWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	if _, resp, err := websocket.DefaultDialer.Dial(url+"?token=bad", nil); err == nil || resp == nil || resp.StatusCode != 401 {
		t.Fatalf("dial with bad token should be refused, got %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	read := func() map[string]interface{} {
		t.Helper()
		var m map[string]interface{}
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		return m
	}
	if m := read(); m["type"] != "init" || m["username"] != "ana" {
		t.Fatalf("first message = %v", m)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","requestId":"1"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	sawEvent := false
	for {
		m := read()
		if m["type"] == "player.joined" {
			sawEvent = true
			continue
		}
		if m["type"] != "reply" {
			t.Fatalf("unexpected message %v", m)
		}
		if m["requestId"] != "1" || m["ok"] != true {
			t.Fatalf("reply = %v", m)
		}
		break
	}
	if !sawEvent {
		t.Fatalf("join event was not pushed before the reply")
	}
	if hub.Count() != 1 {
		t.Fatalf("online = %d", hub.Count())
	}
}

func TestHubPublishReachesClients(t *testing.T) {
	hub := NewHub(nil)
	cl := &client{id: "c1", send: make(chan []byte, 1)}
	hub.register(cl)
	if err := hub.Publish(context.Background(), eventOf("turn.changed")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(<-cl.send, &got); err != nil || got["type"] != "turn.changed" {
		t.Fatalf("got %v %v", got, err)
	}

	// a full buffer drops the client
	_ = hub.Publish(context.Background(), eventOf("a"))
	_ = hub.Publish(context.Background(), eventOf("b"))
	if hub.Count() != 0 {
		t.Fatalf("slow client kept")
	}
	hub.unregister("c1")
}

func eventOf(typ string) entities.GameEvent {
	return entities.GameEvent{Type: typ, At: time.Now()}
}
