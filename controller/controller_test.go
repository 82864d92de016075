package controller_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-catan/controller"
	"go-catan/engine"
	"go-catan/repository"
	"go-catan/router"
	"go-catan/service"
	"go-catan/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type api struct {
	t *testing.T
	r *gin.Engine
}

func newAPI(t *testing.T, players int) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore(repository.DefaultSeed(players, 19))
	hub := ws.NewHub(nil)
	game := service.New(store, service.Options{
		Publisher:    hub,
		PasswordCost: bcrypt.MinCost,
		JWTSecret:    []byte("controller-secret"),
		Rand:         service.NewLockedRand(11),
	})
	r := gin.New()
	router.InitRouter(r, router.Deps{
		Controller: controller.New(game, nil, false),
		WS:         ws.NewHandler(hub, game, nil),
		Auth:       game,
	})
	return &api{t: t, r: r}
}

func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func (a *api) register(name string) string {
	a.t.Helper()
	code, out := a.do(http.MethodPost, "/auth/register", "", map[string]string{"username": name, "password": "pw"})
	if code != http.StatusOK {
		a.t.Fatalf("register %s: %d %v", name, code, out)
	}
	data := out["data"].(map[string]any)
	return data["token"].(string)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", engine.Invalid("bad"), http.StatusBadRequest},
		{"precondition", engine.ErrInsufficientResources, http.StatusBadRequest},
		{"color taken", engine.ErrColorTaken.With("red"), http.StatusConflict},
		{"not your turn", engine.ErrNotYourTurn, http.StatusForbidden},
		{"credentials", engine.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not found", engine.ErrTradeNotFound, http.StatusNotFound},
		{"conflict", engine.ErrDeckContention, http.StatusConflict},
		{"storage", engine.Storage(errors.New("boom")), http.StatusInternalServerError},
		{"foreign", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := controller.StatusOf(tt.err); got != tt.want {
				t.Fatalf("StatusOf(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t, 2)
	token := a.register("ana")

	if code, _ := a.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "ana", "password": "x"}); code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", code)
	}
	if code, out := a.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "ana", "password": "nope"}); code != http.StatusUnauthorized || out["ok"] != false {
		t.Fatalf("bad login: %d %v", code, out)
	}
	if code, _ := a.do(http.MethodPost, "/auth/login", "", `{"username":`); code != http.StatusBadRequest {
		t.Fatalf("malformed login: %d", code)
	}
	if code, _ := a.do(http.MethodGet, "/player/me", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: %d", code)
	}
	if code, _ := a.do(http.MethodGet, "/player/me", "forged", nil); code != http.StatusUnauthorized {
		t.Fatalf("forged token: %d", code)
	}
	if code, out := a.do(http.MethodPost, "/player/join", token, nil); code != http.StatusOK || out["ok"] != true {
		t.Fatalf("join: %d %v", code, out)
	}
	if code, out := a.do(http.MethodGet, "/player/me", token, nil); code != http.StatusOK {
		t.Fatalf("me: %d %v", code, out)
	}
}

func TestGameEndpoints(t *testing.T) {
	a := newAPI(t, 2)
	ana, bob := a.register("ana"), a.register("bob")
	for _, tok := range []string{ana, bob} {
		if code, out := a.do(http.MethodPost, "/player/join", tok, nil); code != http.StatusOK {
			t.Fatalf("join: %d %v", code, out)
		}
	}

	if code, _ := a.do(http.MethodPost, "/player/color", ana, map[string]string{"color": "red"}); code != http.StatusOK {
		t.Fatalf("color: %d", code)
	}
	if code, out := a.do(http.MethodPost, "/player/color", bob, map[string]string{"color": "RED"}); code != http.StatusConflict || out["code"] != "ColorTaken" {
		t.Fatalf("taken color: %d %v", code, out)
	}
	if code, out := a.do(http.MethodPost, "/catan/turn", ana, nil); code != http.StatusBadRequest || out["code"] != "GameNotStarted" {
		t.Fatalf("turn before start: %d %v", code, out)
	}

	if code, out := a.do(http.MethodPost, "/player/ready", ana, nil); code != http.StatusOK || out["started"] != false {
		t.Fatalf("ready ana: %d %v", code, out)
	}
	code, out := a.do(http.MethodPost, "/player/ready", bob, nil)
	if code != http.StatusOK || out["started"] != true {
		t.Fatalf("ready bob: %d %v", code, out)
	}

	_, out = a.do(http.MethodGet, "/player/list", ana, nil)
	players := out["players"].([]any)
	first := players[0].(map[string]any)["username"].(string)
	current, other := ana, bob
	if first == "bob" {
		current, other = bob, ana
	}

	if code, out := a.do(http.MethodPost, "/catan/turn", other, nil); code != http.StatusForbidden || out["code"] != "NotYourTurn" {
		t.Fatalf("turn out of order: %d %v", code, out)
	}
	if code, out := a.do(http.MethodPost, "/catan/path", current, map[string]int{"buildId": 9999}); code != http.StatusNotFound {
		t.Fatalf("unknown path: %d %v", code, out)
	}
	if code, _ := a.do(http.MethodPost, "/catan/town", current, map[string]int{"buildId": 1, "level": 5}); code != http.StatusBadRequest {
		t.Fatalf("bad level: %d", code)
	}
	if code, out := a.do(http.MethodPost, "/catan/town", current, map[string]int{"buildId": 1, "level": 1}); code != http.StatusOK {
		t.Fatalf("setup town: %d %v", code, out)
	}
	if code, out := a.do(http.MethodPost, "/catan/dice", current, map[string]int{"diceResult": 8}); code != http.StatusBadRequest || out["code"] != "NotMainPhase" {
		t.Fatalf("dice in setup: %d %v", code, out)
	}
	if code, _ := a.do(http.MethodGet, "/catan/dice", current, nil); code != http.StatusMethodNotAllowed {
		t.Fatalf("GET dice: %d", code)
	}

	_, out = a.do(http.MethodGet, "/catan/hexes", current, nil)
	if hexes := out["hexes"].([]any); len(hexes) != 19 {
		t.Fatalf("hexes = %d", len(hexes))
	}
	_, out = a.do(http.MethodGet, "/catan/towns", current, nil)
	if towns := out["towns"].([]any); len(towns) != 54 {
		t.Fatalf("towns = %d", len(towns))
	}
	_, out = a.do(http.MethodGet, "/catan/game", current, nil)
	if out["phase"] != "setup1" {
		t.Fatalf("game: %v", out)
	}

	if code, out := a.do(http.MethodPost, "/catan/trade", current, map[string]any{"toPlayerId": 99, "selectedResourcesByUser": []int{1}}); code != http.StatusNotFound {
		t.Fatalf("trade with unknown player: %d %v", code, out)
	}
	if code, out := a.do(http.MethodPost, "/catan/trade/resolve", current, map[string]any{"tradeId": 1, "acceptTrade": true}); code != http.StatusNotFound {
		t.Fatalf("resolve unknown trade: %d %v", code, out)
	}
	if code, out := a.do(http.MethodPost, "/catan/turn", current, nil); code != http.StatusOK {
		t.Fatalf("end turn: %d %v", code, out)
	}
}
