package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go-catan/engine"
	"go-catan/entities"
)

var errReadOnly = errors.New("write inside a read-only view")

type memState struct {
	session     entities.GameSession
	users       map[int64]entities.User
	players     map[int64]entities.Player
	ledgers     map[int64]entities.ResourceVector
	bank        []entities.BankEntry
	hexes       []entities.Hexagon
	links       []entities.HexTown
	towns       []entities.Town
	roads       []entities.Road
	cards       []entities.CardPool
	playerCards map[int64]map[entities.CardKind]int
	trades      map[int64]entities.TradeNotification

	nextUser, nextPlayer, nextTrade int64
}

func (s *memState) clone() *memState {
	c := *s
	c.users = make(map[int64]entities.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.players = make(map[int64]entities.Player, len(s.players))
	for k, v := range s.players {
		c.players[k] = v
	}
	c.ledgers = make(map[int64]entities.ResourceVector, len(s.ledgers))
	for k, v := range s.ledgers {
		c.ledgers[k] = v
	}
	c.bank = append([]entities.BankEntry(nil), s.bank...)
	c.hexes = make([]entities.Hexagon, len(s.hexes))
	for i, h := range s.hexes {
		if h.DiceNumber != nil {
			n := *h.DiceNumber
			h.DiceNumber = &n
		}
		c.hexes[i] = h
	}
	c.links = append([]entities.HexTown(nil), s.links...)
	c.towns = append([]entities.Town(nil), s.towns...)
	c.roads = append([]entities.Road(nil), s.roads...)
	c.cards = append([]entities.CardPool(nil), s.cards...)
	c.playerCards = make(map[int64]map[entities.CardKind]int, len(s.playerCards))
	for pid, m := range s.playerCards {
		cm := make(map[entities.CardKind]int, len(m))
		for k, v := range m {
			cm[k] = v
		}
		c.playerCards[pid] = cm
	}
	c.trades = make(map[int64]entities.TradeNotification, len(s.trades))
	for k, v := range s.trades {
		if v.ToOffer != nil {
			counter := *v.ToOffer
			v.ToOffer = &counter
		}
		c.trades[k] = v
	}
	return &c
}

// MemoryStore keeps the whole game in process. A transaction holds the writer lock for its whole
// run and works on a copy that replaces the state only when fn succeeds.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memState
}

func NewMemoryStore(seed Seed) *MemoryStore {
	st := &memState{
		session:     entities.GameSession{Turn: 1, MaxPlayers: seed.MaxPlayers},
		users:       map[int64]entities.User{},
		players:     map[int64]entities.Player{},
		ledgers:     map[int64]entities.ResourceVector{},
		bank:        append([]entities.BankEntry(nil), seed.Bank...),
		links:       append([]entities.HexTown(nil), seed.Board.Links...),
		towns:       append([]entities.Town(nil), seed.Board.Towns...),
		roads:       append([]entities.Road(nil), seed.Board.Roads...),
		cards:       append([]entities.CardPool(nil), seed.Cards...),
		playerCards: map[int64]map[entities.CardKind]int{},
		trades:      map[int64]entities.TradeNotification{},
	}
	st.hexes = append([]entities.Hexagon(nil), seed.Board.Hexagons...)
	return &MemoryStore{state: st.clone()}
}

func (m *MemoryStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memTx{st: m.state, readOnly: true})
}

func (m *MemoryStore) Close() error {
	return nil
}

type memTx struct {
	st       *memState
	readOnly bool
}

func (t *memTx) write() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *memTx) LockSession(ctx context.Context) (entities.GameSession, error) {
	return t.st.session, nil
}

func (t *memTx) UpdateSession(ctx context.Context, s entities.GameSession) error {
	if err := t.write(); err != nil {
		return err
	}
	t.st.session = s
	return nil
}

func (t *memTx) UserByName(ctx context.Context, username string) (entities.User, error) {
	for _, u := range t.st.users {
		if u.Username == username {
			return u, nil
		}
	}
	return entities.User{}, engine.ErrUserNotFound.With("%s", username)
}

func (t *memTx) InsertUser(ctx context.Context, u entities.User) (entities.User, error) {
	if err := t.write(); err != nil {
		return u, err
	}
	if _, err := t.UserByName(ctx, u.Username); err == nil {
		return u, engine.ErrUsernameTaken
	}
	t.st.nextUser++
	u.ID = t.st.nextUser
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	t.st.users[u.ID] = u
	return u, nil
}

func (t *memTx) withName(p entities.Player) entities.Player {
	p.Username = t.st.users[p.UserID].Username
	return p
}

func (t *memTx) LockPlayerByUsername(ctx context.Context, username string) (entities.Player, error) {
	u, err := t.UserByName(ctx, username)
	if err != nil {
		return entities.Player{}, engine.ErrPlayerNotFound.With("%s", username)
	}
	for _, p := range t.st.players {
		if p.UserID == u.ID {
			return t.withName(p), nil
		}
	}
	return entities.Player{}, engine.ErrPlayerNotFound.With("%s", username)
}

func (t *memTx) LockPlayer(ctx context.Context, id int64) (entities.Player, error) {
	p, ok := t.st.players[id]
	if !ok {
		return entities.Player{}, engine.ErrPlayerNotFound.With("id %d", id)
	}
	return t.withName(p), nil
}

func (t *memTx) LockPlayers(ctx context.Context) ([]entities.Player, error) {
	out := make([]entities.Player, 0, len(t.st.players))
	for _, p := range t.st.players {
		out = append(out, t.withName(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) InsertPlayer(ctx context.Context, userID int64) (entities.Player, error) {
	if err := t.write(); err != nil {
		return entities.Player{}, err
	}
	if _, ok := t.st.users[userID]; !ok {
		return entities.Player{}, engine.ErrUserNotFound.With("id %d", userID)
	}
	for _, p := range t.st.players {
		if p.UserID == userID {
			return t.withName(p), nil
		}
	}
	t.st.nextPlayer++
	p := entities.Player{ID: t.st.nextPlayer, UserID: userID}
	t.st.players[p.ID] = p
	t.st.ledgers[p.ID] = entities.ResourceVector{}
	cards := make(map[entities.CardKind]int, len(t.st.cards))
	for _, c := range t.st.cards {
		cards[c.Kind] = 0
	}
	t.st.playerCards[p.ID] = cards
	return t.withName(p), nil
}

func (t *memTx) UpdatePlayers(ctx context.Context, players ...entities.Player) error {
	if err := t.write(); err != nil {
		return err
	}
	for _, p := range players {
		if _, ok := t.st.players[p.ID]; !ok {
			return engine.ErrPlayerNotFound.With("id %d", p.ID)
		}
		p.Username = ""
		t.st.players[p.ID] = p
	}
	return nil
}

func (t *memTx) ColorTaken(ctx context.Context, color string, exceptPlayer int64) (bool, error) {
	for _, p := range t.st.players {
		if p.ID != exceptPlayer && strings.EqualFold(p.Color, color) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) LockLedgers(ctx context.Context, playerIDs ...int64) (map[int64]entities.ResourceVector, error) {
	out := make(map[int64]entities.ResourceVector, len(playerIDs))
	for _, id := range playerIDs {
		l, ok := t.st.ledgers[id]
		if !ok {
			return nil, engine.ErrPlayerNotFound.With("ledger of %d", id)
		}
		out[id] = l
	}
	return out, nil
}

func (t *memTx) LockBank(ctx context.Context) ([]entities.BankEntry, error) {
	return append([]entities.BankEntry(nil), t.st.bank...), nil
}

func (t *memTx) ApplyTransfer(ctx context.Context, deltas map[int64]entities.ResourceVector) error {
	if err := t.write(); err != nil {
		return err
	}
	var circulation entities.ResourceVector
	for id, d := range deltas {
		l, ok := t.st.ledgers[id]
		if !ok {
			return engine.ErrPlayerNotFound.With("ledger of %d", id)
		}
		next := l.Plus(d)
		for _, q := range next {
			if q < 0 {
				return engine.ErrInsufficientResources.With("ledger of %d would be %v", id, next)
			}
		}
		t.st.ledgers[id] = next
		circulation = circulation.Plus(d)
	}
	for i := range t.st.bank {
		t.st.bank[i].InCirculation += circulation.Get(t.st.bank[i].Resource)
	}
	return nil
}

func (t *memTx) LockHexagons(ctx context.Context) ([]entities.Hexagon, error) {
	out := make([]entities.Hexagon, len(t.st.hexes))
	copy(out, t.st.hexes)
	return out, nil
}

func (t *memTx) UpdateHexagons(ctx context.Context, hexes []entities.Hexagon) error {
	if err := t.write(); err != nil {
		return err
	}
	byID := make(map[int]int, len(t.st.hexes))
	for i, h := range t.st.hexes {
		byID[h.ID] = i
	}
	for _, h := range hexes {
		i, ok := byID[h.ID]
		if !ok {
			return engine.ErrTileNotFound.With("hex %d", h.ID)
		}
		t.st.hexes[i] = h
	}
	return nil
}

func (t *memTx) MoveThief(ctx context.Context, hexID int) error {
	if err := t.write(); err != nil {
		return err
	}
	found := false
	for i := range t.st.hexes {
		t.st.hexes[i].IsThief = t.st.hexes[i].ID == hexID
		found = found || t.st.hexes[i].ID == hexID
	}
	if !found {
		return engine.ErrTileNotFound.With("hex %d", hexID)
	}
	return nil
}

func (t *memTx) HexTowns(ctx context.Context) ([]entities.HexTown, error) {
	return append([]entities.HexTown(nil), t.st.links...), nil
}

func (t *memTx) LockTowns(ctx context.Context) ([]entities.Town, error) {
	return append([]entities.Town(nil), t.st.towns...), nil
}

func (t *memTx) UpdateTown(ctx context.Context, town entities.Town) error {
	if err := t.write(); err != nil {
		return err
	}
	for i := range t.st.towns {
		if t.st.towns[i].ID == town.ID {
			t.st.towns[i] = town
			return nil
		}
	}
	return engine.ErrSlotNotFound.With("town %d", town.ID)
}

func (t *memTx) LockRoads(ctx context.Context) ([]entities.Road, error) {
	return append([]entities.Road(nil), t.st.roads...), nil
}

func (t *memTx) UpdateRoad(ctx context.Context, r entities.Road) error {
	if err := t.write(); err != nil {
		return err
	}
	for i := range t.st.roads {
		if t.st.roads[i].ID == r.ID {
			t.st.roads[i] = r
			return nil
		}
	}
	return engine.ErrSlotNotFound.With("road %d", r.ID)
}

func (t *memTx) LockCardPools(ctx context.Context) ([]entities.CardPool, error) {
	return append([]entities.CardPool(nil), t.st.cards...), nil
}

func (t *memTx) IncrementCardDrawn(ctx context.Context, kind entities.CardKind) (bool, error) {
	if err := t.write(); err != nil {
		return false, err
	}
	for i := range t.st.cards {
		c := &t.st.cards[i]
		if c.Kind == kind && c.CurrentCount < c.MaxCount {
			c.CurrentCount++
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) AddPlayerCard(ctx context.Context, playerID int64, kind entities.CardKind) error {
	if err := t.write(); err != nil {
		return err
	}
	cards, ok := t.st.playerCards[playerID]
	if !ok {
		return engine.ErrPlayerNotFound.With("cards of %d", playerID)
	}
	cards[kind]++
	return nil
}

func (t *memTx) PlayerCards(ctx context.Context, playerID int64) (map[entities.CardKind]int, error) {
	out := make(map[entities.CardKind]int)
	for k, v := range t.st.playerCards[playerID] {
		out[k] = v
	}
	return out, nil
}

func (t *memTx) LockTrade(ctx context.Context, id int64) (entities.TradeNotification, error) {
	tn, ok := t.st.trades[id]
	if !ok {
		return entities.TradeNotification{}, engine.ErrTradeNotFound.With("trade %d", id)
	}
	return tn, nil
}

func (t *memTx) LockTradeBetween(ctx context.Context, from, to int64) (*entities.TradeNotification, error) {
	for _, tn := range t.st.trades {
		if tn.FromPlayer == from && tn.ToPlayer == to {
			found := tn
			return &found, nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertTrade(ctx context.Context, tn entities.TradeNotification) (int64, error) {
	if err := t.write(); err != nil {
		return 0, err
	}
	t.st.nextTrade++
	tn.ID = t.st.nextTrade
	if tn.CreatedAt.IsZero() {
		tn.CreatedAt = time.Now()
	}
	t.st.trades[tn.ID] = tn
	return tn.ID, nil
}

func (t *memTx) UpdateTradeCounter(ctx context.Context, id int64, counter entities.ResourceVector) error {
	if err := t.write(); err != nil {
		return err
	}
	tn, ok := t.st.trades[id]
	if !ok {
		return engine.ErrTradeNotFound.With("trade %d", id)
	}
	tn.ToOffer = &counter
	t.st.trades[id] = tn
	return nil
}

func (t *memTx) DeleteTrade(ctx context.Context, id int64) (bool, error) {
	if err := t.write(); err != nil {
		return false, err
	}
	if _, ok := t.st.trades[id]; !ok {
		return false, nil
	}
	delete(t.st.trades, id)
	return true, nil
}

func (t *memTx) TradesFor(ctx context.Context, playerID int64) ([]entities.TradeNotification, error) {
	var out []entities.TradeNotification
	for _, tn := range t.st.trades {
		if tn.Involves(playerID) {
			out = append(out, tn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
