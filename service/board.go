package service

import (
	"context"

	"go-catan/engine"
	"go-catan/entities"
	"go-catan/repository"

	"go.uber.org/zap"
)

// RollOutcome is what a dice roll produced.
type RollOutcome struct {
	Dice     int                               `json:"dice"`
	Credits  map[int64]entities.ResourceVector `json:"credits"`
	Withheld []entities.ResourceType           `json:"withheld,omitempty"`
}

// RollDice records the dice result of the current turn and credits production from the bank.
// dice may be nil, in which case the server rolls two six-sided dice.
func (g *Game) RollDice(ctx context.Context, username string, dice *int) (RollOutcome, error) {
	if dice != nil && (*dice < 2 || *dice > 12) {
		return RollOutcome{}, g.fail("dice", username, engine.Invalid("diceResult must be between 2 and 12"))
	}

	var out RollOutcome
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		s, p, err := lockCaller(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := engine.RequireMainTurn(s, p); err != nil {
			return err
		}
		if s.LastDiceRoll != 0 {
			return engine.ErrAlreadyRolled.With("rolled %d", s.LastDiceRoll)
		}
		roll := 0
		if dice != nil {
			roll = *dice
		} else {
			roll = g.rng.Intn(6) + g.rng.Intn(6) + 2
		}

		players, err := tx.LockPlayers(ctx)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(players))
		for _, pl := range players {
			ids = append(ids, pl.ID)
		}
		if _, err := tx.LockLedgers(ctx, ids...); err != nil {
			return err
		}
		bank, err := tx.LockBank(ctx)
		if err != nil {
			return err
		}
		hexes, err := tx.LockHexagons(ctx)
		if err != nil {
			return err
		}
		links, err := tx.HexTowns(ctx)
		if err != nil {
			return err
		}
		towns, err := tx.LockTowns(ctx)
		if err != nil {
			return err
		}

		res := engine.Production(roll, hexes, links, towns, bank)
		if len(res.Credits) > 0 {
			if err := tx.ApplyTransfer(ctx, res.Credits); err != nil {
				return err
			}
		}
		s.LastDiceRoll = roll
		if err := tx.UpdateSession(ctx, s); err != nil {
			return err
		}
		out = RollOutcome{Dice: roll, Credits: res.Credits, Withheld: res.Withheld}
		return nil
	})
	if err != nil {
		return out, g.fail("dice", username, err)
	}
	g.done("dice", username, zap.Int("dice", out.Dice), zap.Int("credited", len(out.Credits)))
	g.publish(ctx, "dice.rolled", username, map[string]any{"dice": out.Dice})
	return out, nil
}

// MoveThief moves the thief to hexID; it must leave its current tile.
func (g *Game) MoveThief(ctx context.Context, username string, hexID int) error {
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		s, p, err := lockCaller(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := engine.RequireMainTurn(s, p); err != nil {
			return err
		}
		hexes, err := tx.LockHexagons(ctx)
		if err != nil {
			return err
		}
		if _, err := engine.ThiefTarget(hexes, hexID); err != nil {
			return err
		}
		return tx.MoveThief(ctx, hexID)
	})
	if err != nil {
		return g.fail("thief", username, err)
	}
	g.done("thief", username, zap.Int("hex", hexID))
	g.invalidateHexes(ctx)
	g.publish(ctx, "thief.moved", username, map[string]any{"hexId": hexID})
	return nil
}

// charge debits kind from p unless the build is free this turn.
func (g *Game) charge(ctx context.Context, tx repository.Tx, s entities.GameSession, p entities.Player, kind entities.BuildingKind) error {
	if kind != entities.BuildCard && engine.IsBuildFree(s, p) {
		return nil
	}
	ledgers, err := tx.LockLedgers(ctx, p.ID)
	if err != nil {
		return err
	}
	t, err := engine.ChargeBuilding(g.catalog, p.ID, ledgers[p.ID], kind)
	if err != nil {
		return err
	}
	return tx.ApplyTransfer(ctx, t)
}

// BuildResult is returned by the road and town builders.
type BuildResult struct {
	Player      entities.Player `json:"player"`
	LongestRoad int             `json:"longestRoad"`
	TookTitle   bool            `json:"tookTitle"`
}

// BuildRoad places a road of the caller on roadID and re-evaluates the longest road title.
func (g *Game) BuildRoad(ctx context.Context, username string, roadID int) (BuildResult, error) {
	var res BuildResult
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		s, p, err := lockCaller(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := engine.RequireTurn(s, p); err != nil {
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
		idx := -1
		for i, r := range roads {
			if r.ID == roadID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return engine.ErrSlotNotFound.With("road %d", roadID)
		}
		if err := engine.CheckRoad(roads[idx], p.ID, towns, roads); err != nil {
			return err
		}
		if err := engine.RequirePiece(g.catalog, entities.BuildRoad, engine.CountPieces(towns, roads, p.ID)); err != nil {
			return err
		}
		if err := g.charge(ctx, tx, s, p, entities.BuildRoad); err != nil {
			return err
		}
		roads[idx].PlayerID = p.ID
		if err := tx.UpdateRoad(ctx, roads[idx]); err != nil {
			return err
		}

		res.LongestRoad = engine.LongestRoad(engine.RoadsOf(roads, p.ID))
		prev := s.LongestRoadHolder
		next, moved := engine.AwardLongestRoad(s, p.ID, res.LongestRoad)
		if next != s {
			if err := tx.UpdateSession(ctx, next); err != nil {
				return err
			}
		}
		if moved {
			if err := g.moveLongestRoad(ctx, tx, prev, &p); err != nil {
				return err
			}
			res.TookTitle = true
		}
		res.Player = p
		return nil
	})
	if err != nil {
		return res, g.fail("road", username, err)
	}
	g.done("road", username, zap.Int("road", roadID), zap.Int("longest", res.LongestRoad), zap.Bool("title", res.TookTitle))
	g.publish(ctx, "road.built", username, map[string]any{"buildId": roadID, "longestRoad": res.LongestRoad})
	if res.TookTitle {
		g.publish(ctx, "longestRoad.awarded", username, map[string]any{"length": res.LongestRoad})
	}
	return res, nil
}

// moveLongestRoad clears the title and its points from the previous holder and gives them to p,
// persisted in one update.
func (g *Game) moveLongestRoad(ctx context.Context, tx repository.Tx, prevHolder int64, p *entities.Player) error {
	players, err := tx.LockPlayers(ctx)
	if err != nil {
		return err
	}
	var changed []entities.Player
	for _, other := range players {
		if other.ID == p.ID || !other.HasLongestRoad {
			continue
		}
		other.HasLongestRoad = false
		if other.ID == prevHolder {
			other.Points -= 2
		}
		changed = append(changed, other)
	}
	p.HasLongestRoad = true
	p.Points += 2
	return tx.UpdatePlayers(ctx, append(changed, *p)...)
}

// BuildTown builds a settlement (level 1) or upgrades a settlement to a city (level 2) on townID.
func (g *Game) BuildTown(ctx context.Context, username string, townID, level int) (BuildResult, error) {
	if level != 1 && level != 2 {
		return BuildResult{}, g.fail("town", username, engine.Invalid("level must be 1 or 2"))
	}
	kind := entities.BuildSettlement
	if level == 2 {
		kind = entities.BuildCity
	}

	var res BuildResult
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		s, p, err := lockCaller(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := engine.RequireTurn(s, p); err != nil {
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
		idx := -1
		for i, t := range towns {
			if t.ID == townID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return engine.ErrSlotNotFound.With("town %d", townID)
		}
		setup := engine.PhaseOf(s) != engine.PhaseMain
		if err := engine.CheckTown(towns[idx], level, p.ID, towns, roads, setup); err != nil {
			return err
		}
		if err := engine.RequirePiece(g.catalog, kind, engine.CountPieces(towns, roads, p.ID)); err != nil {
			return err
		}
		if err := g.charge(ctx, tx, s, p, kind); err != nil {
			return err
		}
		towns[idx].PlayerID = p.ID
		towns[idx].Level = level
		if err := tx.UpdateTown(ctx, towns[idx]); err != nil {
			return err
		}
		p.Points++
		if err := tx.UpdatePlayers(ctx, p); err != nil {
			return err
		}
		res.Player = p
		return nil
	})
	if err != nil {
		return res, g.fail("town", username, err)
	}
	g.done("town", username, zap.Int("town", townID), zap.Int("level", level))
	g.publish(ctx, "town.built", username, map[string]any{"buildId": townID, "level": level})
	return res, nil
}

// DrawCard pays the card cost and draws one development card, weighted by remaining supply.
func (g *Game) DrawCard(ctx context.Context, username string) (entities.CardPool, error) {
	var picked entities.CardPool
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		s, p, err := lockCaller(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := engine.RequireTurn(s, p); err != nil {
			return err
		}
		pools, err := tx.LockCardPools(ctx)
		if err != nil {
			return err
		}
		if picked, err = engine.PickCard(pools, g.rng); err != nil {
			return err
		}
		if err := g.charge(ctx, tx, s, p, entities.BuildCard); err != nil {
			return err
		}
		ok, err := tx.IncrementCardDrawn(ctx, picked.Kind)
		if err != nil {
			return err
		}
		if !ok {
			return engine.ErrDeckContention.With("%s", picked.Kind)
		}
		return tx.AddPlayerCard(ctx, p.ID, picked.Kind)
	})
	if err != nil {
		return entities.CardPool{}, g.fail("card", username, err)
	}
	g.done("card", username, zap.String("card", picked.Name))
	g.publish(ctx, "card.drawn", username, nil)
	return picked, nil
}

// BankTrade swaps ratio units of from for one unit of to with the bank.
func (g *Game) BankTrade(ctx context.Context, username string, from, to entities.ResourceType) (entities.ResourceVector, error) {
	var balance entities.ResourceVector
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		s, p, err := lockCaller(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := engine.RequireMainTurn(s, p); err != nil {
			return err
		}
		ledgers, err := tx.LockLedgers(ctx, p.ID)
		if err != nil {
			return err
		}
		bank, err := tx.LockBank(ctx)
		if err != nil {
			return err
		}
		t, err := engine.BankTrade(p.ID, ledgers[p.ID], bank, from, to, g.ratio)
		if err != nil {
			return err
		}
		if err := tx.ApplyTransfer(ctx, t); err != nil {
			return err
		}
		balance = ledgers[p.ID].Plus(t[p.ID])
		return nil
	})
	if err != nil {
		return balance, g.fail("bankTrade", username, err)
	}
	g.done("bankTrade", username, zap.Stringer("from", from), zap.Stringer("to", to))
	g.publish(ctx, "bank.trade", username, map[string]any{"fromId": int(from), "toId": int(to)})
	return balance, nil
}
