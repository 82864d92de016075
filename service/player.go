package service

import (
	"context"
	"sort"
	"strings"

	"go-catan/engine"
	"go-catan/entities"
	"go-catan/repository"

	"go.uber.org/zap"
)

// Join creates the caller's player row with a zeroed ledger; joining twice is a no-op.
func (g *Game) Join(ctx context.Context, username string) (entities.Player, error) {
	var p entities.Player
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		u, err := tx.UserByName(ctx, username)
		if err != nil {
			return err
		}
		p, err = tx.InsertPlayer(ctx, u.ID)
		return err
	})
	if err != nil {
		return p, g.fail("join", username, err)
	}
	g.done("join", username, zap.Int64("player", p.ID))
	g.publish(ctx, "player.joined", username, nil)
	return p, nil
}

// SetColor 设置玩家颜色，颜色不区分大小写且不能与其他玩家重复
func (g *Game) SetColor(ctx context.Context, username, color string) (entities.Player, error) {
	color = strings.ToLower(strings.TrimSpace(color))
	if color == "" {
		return entities.Player{}, g.fail("color", username, engine.Invalid("Username and color are required"))
	}

	var p entities.Player
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		u, err := tx.UserByName(ctx, username)
		if err != nil {
			return err
		}
		if p, err = tx.InsertPlayer(ctx, u.ID); err != nil {
			return err
		}
		taken, err := tx.ColorTaken(ctx, color, p.ID)
		if err != nil {
			return err
		}
		if taken {
			return engine.ErrColorTaken.With("%s", color)
		}
		p.Color = color
		return tx.UpdatePlayers(ctx, p)
	})
	if err != nil {
		return p, g.fail("color", username, err)
	}
	g.done("color", username, zap.String("color", color))
	g.publish(ctx, "player.color", username, map[string]any{"color": color})
	return p, nil
}

// PlayerColor is one row of the color listing.
type PlayerColor struct {
	Username string `json:"username"`
	Color    string `json:"color"`
}

func (g *Game) Colors(ctx context.Context) ([]PlayerColor, error) {
	var out []PlayerColor
	err := g.store.View(ctx, func(tx repository.Tx) error {
		players, err := tx.LockPlayers(ctx)
		if err != nil {
			return err
		}
		for _, p := range players {
			out = append(out, PlayerColor{Username: p.Username, Color: p.Color})
		}
		return nil
	})
	if err != nil {
		return nil, g.fail("colors", "", err)
	}
	return out, nil
}

// ReadyResult reports the caller's new state and whether the toggle started the game.
type ReadyResult struct {
	Player  entities.Player      `json:"player"`
	Started bool                 `json:"started"`
	Session entities.GameSession `json:"session"`
}

// ToggleReady flips the caller's isPlaying flag. When the number of active players reaches the
// session's maxPlayers the roster is shuffled into play orders, the map is generated and the
// first setup round begins, all in the same transaction.
func (g *Game) ToggleReady(ctx context.Context, username string) (ReadyResult, error) {
	var res ReadyResult
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		s, p, err := lockCaller(ctx, tx, username)
		if err != nil {
			return err
		}
		if s.Started() {
			return engine.ErrGameStarted
		}
		p.IsPlaying = !p.IsPlaying
		if err := tx.UpdatePlayers(ctx, p); err != nil {
			return err
		}
		res.Player = p
		res.Session = s

		players, err := tx.LockPlayers(ctx)
		if err != nil {
			return err
		}
		var active []entities.Player
		for _, pl := range players {
			if pl.IsPlaying {
				active = append(active, pl)
			}
		}
		if len(active) != s.MaxPlayers {
			return nil
		}

		ordered := engine.AssignPlayOrder(active, g.rng)
		if err := tx.UpdatePlayers(ctx, ordered...); err != nil {
			return err
		}
		for _, o := range ordered {
			if o.ID == p.ID {
				res.Player = o
			}
		}

		bank, err := tx.LockBank(ctx)
		if err != nil {
			return err
		}
		hexes, err := tx.LockHexagons(ctx)
		if err != nil {
			return err
		}
		sort.Slice(hexes, func(i, j int) bool { return hexes[i].ID < hexes[j].ID })
		generated, err := engine.GenerateMap(hexes, repository.HexQuotas(bank), g.rng)
		if err != nil {
			return err
		}
		if err := tx.UpdateHexagons(ctx, generated); err != nil {
			return err
		}

		s = engine.StartGame(s)
		if err := tx.UpdateSession(ctx, s); err != nil {
			return err
		}
		res.Session = s
		res.Started = true
		return nil
	})
	if err != nil {
		return res, g.fail("ready", username, err)
	}

	g.done("ready", username, zap.Bool("isPlaying", res.Player.IsPlaying), zap.Bool("started", res.Started))
	g.publish(ctx, "player.ready", username, map[string]any{"isPlaying": res.Player.IsPlaying})
	if res.Started {
		g.invalidateHexes(ctx)
		g.publish(ctx, "game.started", username, map[string]any{"turn": res.Session.Turn, "round": res.Session.Round})
	}
	return res, nil
}

// EndTurn passes the turn to the next player in snake order.
func (g *Game) EndTurn(ctx context.Context, username string) (entities.GameSession, error) {
	var s entities.GameSession
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		cur, p, err := lockCaller(ctx, tx, username)
		if err != nil {
			return err
		}
		if s, err = engine.EndTurn(cur, p); err != nil {
			return err
		}
		return tx.UpdateSession(ctx, s)
	})
	if err != nil {
		return s, g.fail("turn", username, err)
	}
	g.done("turn", username, zap.Int("turn", s.Turn), zap.Int("round", s.Round))
	g.publish(ctx, "turn.changed", username, map[string]any{"turn": s.Turn, "round": s.Round})
	return s, nil
}
