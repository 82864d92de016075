package service

import (
	"context"
	"sort"

	"go-catan/engine"
	"go-catan/entities"
	"go-catan/repository"

	"go.uber.org/zap"
)

// Listings below run without locks and may be stale by the time a client acts on them.

type GameView struct {
	Session entities.GameSession `json:"session"`
	Phase   string               `json:"phase"`
}

func (g *Game) GameState(ctx context.Context) (GameView, error) {
	var v GameView
	err := g.store.View(ctx, func(tx repository.Tx) error {
		s, err := tx.LockSession(ctx)
		v = GameView{Session: s, Phase: engine.PhaseOf(s).String()}
		return err
	})
	if err != nil {
		return v, g.fail("game", "", err)
	}
	return v, nil
}

// Hexes lists the map, served from the cache when one is configured.
// A listing read before an invalidation is never written back over it.
func (g *Game) Hexes(ctx context.Context) ([]entities.Hexagon, error) {
	fill := false
	var gen int64
	if g.cache != nil {
		hexes, cur, ok, err := g.cache.CachedHexes(ctx)
		switch {
		case err != nil:
			g.log.Warn("读取地图缓存失败", zap.Error(err))
		case ok:
			return hexes, nil
		default:
			fill, gen = true, cur
		}
	}

	var hexes []entities.Hexagon
	err := g.store.View(ctx, func(tx repository.Tx) error {
		var err error
		hexes, err = tx.LockHexagons(ctx)
		return err
	})
	if err != nil {
		return nil, g.fail("hexes", "", err)
	}
	sort.Slice(hexes, func(i, j int) bool { return hexes[i].ID < hexes[j].ID })
	if fill {
		if err := g.cache.CacheHexes(ctx, gen, hexes, g.cacheTTL); err != nil {
			g.log.Warn("写入地图缓存失败", zap.Error(err))
		}
	}
	return hexes, nil
}

// TownView is a town slot as seen by one player.
type TownView struct {
	entities.Town
	Color       string `json:"color"`
	Username    string `json:"username"`
	IsBuilt     bool   `json:"isBuilt"`
	BuiltNear   bool   `json:"builtNear"`
	NearOwnRoad bool   `json:"nearOwnRoad"`
}

// PathView is a road slot as seen by one player.
type PathView struct {
	entities.Road
	Color       string `json:"color"`
	IsBuilt     bool   `json:"isBuilt"`
	NearOwnTown bool   `json:"nearOwnTown"`
	NearOwnRoad bool   `json:"nearOwnRoad"`
}

type BoardView struct {
	Towns []TownView `json:"towns"`
	Paths []PathView `json:"paths"`
}

// Towns lists every town and road slot with the placement hints for username.
func (g *Game) Towns(ctx context.Context, username string) (BoardView, error) {
	var v BoardView
	err := g.store.View(ctx, func(tx repository.Tx) error {
		me, err := tx.LockPlayerByUsername(ctx, username)
		if err != nil {
			return err
		}
		players, err := tx.LockPlayers(ctx)
		if err != nil {
			return err
		}
		towns, err := tx.LockTowns(ctx)
		if err != nil {
			return err
		}
		roads, err := tx.LockRoads(ctx)
		if err != nil {
			return err
		}
		v = boardView(me.ID, players, towns, roads)
		return nil
	})
	if err != nil {
		return v, g.fail("towns", username, err)
	}
	return v, nil
}

func boardView(me int64, players []entities.Player, towns []entities.Town, roads []entities.Road) BoardView {
	byID := make(map[int64]entities.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	built := make(map[int]bool, len(towns))
	mine := make(map[int]bool)
	for _, t := range towns {
		built[t.ID] = t.Built()
		if t.PlayerID == me {
			mine[t.ID] = true
		}
	}
	// town ids touched by one of my roads
	myRoadEnds := make(map[int]bool)
	for _, r := range roads {
		if r.PlayerID == me {
			myRoadEnds[r.FromTown] = true
			myRoadEnds[r.ToTown] = true
		}
	}
	neighbours := engine.Neighbours(roads)

	v := BoardView{Towns: make([]TownView, 0, len(towns)), Paths: make([]PathView, 0, len(roads))}
	for _, t := range towns {
		tv := TownView{Town: t, IsBuilt: t.Built(), NearOwnRoad: myRoadEnds[t.ID]}
		if owner, ok := byID[t.PlayerID]; ok {
			tv.Color, tv.Username = owner.Color, owner.Username
		}
		for _, n := range neighbours[t.ID] {
			if built[n] {
				tv.BuiltNear = true
				break
			}
		}
		v.Towns = append(v.Towns, tv)
	}
	for _, r := range roads {
		pv := PathView{
			Road:        r,
			IsBuilt:     r.Built(),
			NearOwnTown: mine[r.FromTown] || mine[r.ToTown],
			NearOwnRoad: myRoadEnds[r.FromTown] || myRoadEnds[r.ToTown],
		}
		if owner, ok := byID[r.PlayerID]; ok {
			pv.Color = owner.Color
		}
		v.Paths = append(v.Paths, pv)
	}
	return v
}

// PlayerView is a player together with its resource hand.
type PlayerView struct {
	entities.Player
	Resources []entities.ResourceAmount `json:"resources"`
}

func (g *Game) playerViews(ctx context.Context, tx repository.Tx, keep func(entities.Player) bool) ([]PlayerView, error) {
	players, err := tx.LockPlayers(ctx)
	if err != nil {
		return nil, err
	}
	var ids []int64
	var kept []entities.Player
	for _, p := range players {
		if keep(p) {
			kept = append(kept, p)
			ids = append(ids, p.ID)
		}
	}
	ledgers, err := tx.LockLedgers(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]PlayerView, 0, len(kept))
	for _, p := range kept {
		out = append(out, PlayerView{Player: p, Resources: ledgers[p.ID].Amounts()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayOrder != out[j].PlayOrder {
			return out[i].PlayOrder < out[j].PlayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Players lists the active roster in play order.
func (g *Game) Players(ctx context.Context) ([]PlayerView, error) {
	var out []PlayerView
	err := g.store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = g.playerViews(ctx, tx, func(p entities.Player) bool { return p.IsPlaying })
		return err
	})
	if err != nil {
		return nil, g.fail("players", "", err)
	}
	return out, nil
}

// Others lists every player except username.
func (g *Game) Others(ctx context.Context, username string) ([]PlayerView, error) {
	var out []PlayerView
	err := g.store.View(ctx, func(tx repository.Tx) error {
		if _, err := tx.LockPlayerByUsername(ctx, username); err != nil {
			return err
		}
		var err error
		out, err = g.playerViews(ctx, tx, func(p entities.Player) bool { return p.Username != username })
		return err
	})
	if err != nil {
		return nil, g.fail("others", username, err)
	}
	return out, nil
}

type CardAmount struct {
	ID   entities.CardKind `json:"id"`
	Name string            `json:"name"`
	Qty  int               `json:"qty"`
}

// MeView is the caller's own hand plus what is left for it to build.
type MeView struct {
	Player    entities.Player               `json:"player"`
	Resources []entities.ResourceAmount     `json:"resources"`
	Cards     []CardAmount                  `json:"cards"`
	Available map[entities.BuildingKind]int `json:"available"`
}

func (g *Game) Me(ctx context.Context, username string) (MeView, error) {
	var v MeView
	err := g.store.View(ctx, func(tx repository.Tx) error {
		p, err := tx.LockPlayerByUsername(ctx, username)
		if err != nil {
			return err
		}
		ledgers, err := tx.LockLedgers(ctx, p.ID)
		if err != nil {
			return err
		}
		held, err := tx.PlayerCards(ctx, p.ID)
		if err != nil {
			return err
		}
		pools, err := tx.LockCardPools(ctx)
		if err != nil {
			return err
		}
		towns, err := tx.LockTowns(ctx)
		if err != nil {
			return err
		}
		roads, err := tx.LockRoads(ctx)
		if err != nil {
			return err
		}

		v.Player = p
		v.Resources = ledgers[p.ID].Amounts()
		for _, pool := range pools {
			v.Cards = append(v.Cards, CardAmount{ID: pool.Kind, Name: pool.Name, Qty: held[pool.Kind]})
		}
		pieces := engine.CountPieces(towns, roads, p.ID)
		v.Available = map[entities.BuildingKind]int{entities.BuildCard: engine.DeckRemaining(pools)}
		for _, kind := range []entities.BuildingKind{entities.BuildRoad, entities.BuildSettlement, entities.BuildCity} {
			n, err := g.catalog.Available(kind, pieces.Built(kind))
			if err != nil {
				return err
			}
			v.Available[kind] = n
		}
		return nil
	})
	if err != nil {
		return v, g.fail("me", username, err)
	}
	return v, nil
}

// Trades lists the open notifications username takes part in.
func (g *Game) Trades(ctx context.Context, username string) ([]entities.TradeNotification, error) {
	var out []entities.TradeNotification
	err := g.store.View(ctx, func(tx repository.Tx) error {
		p, err := tx.LockPlayerByUsername(ctx, username)
		if err != nil {
			return err
		}
		out, err = tx.TradesFor(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, g.fail("trades", username, err)
	}
	return out, nil
}
