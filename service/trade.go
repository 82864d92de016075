package service

import (
	"context"
	"errors"

	"go-catan/engine"
	"go-catan/entities"
	"go-catan/repository"

	"go.uber.org/zap"
)

// ProposeTrade offers resources to toPlayerID. Proposing against an open notification from that
// player fills its counter-offer instead of opening a new one.
func (g *Game) ProposeTrade(ctx context.Context, username string, toPlayerID int64, resources []int) (entities.TradeNotification, engine.ProposalOutcome, error) {
	offer, err := entities.VectorFromSlice(resources)
	if err != nil {
		return entities.TradeNotification{}, 0, g.fail("trade", username, engine.Invalid(err.Error()))
	}

	var (
		tn      entities.TradeNotification
		outcome engine.ProposalOutcome
	)
	err = g.store.WithTx(ctx, func(tx repository.Tx) error {
		from, err := tx.LockPlayerByUsername(ctx, username)
		if err != nil {
			return err
		}
		if from.ID == toPlayerID {
			return engine.ErrTradeWithSelf
		}
		if _, err := tx.LockPlayer(ctx, toPlayerID); err != nil {
			return err
		}
		ledgers, err := tx.LockLedgers(ctx, from.ID)
		if err != nil {
			return err
		}
		forward, err := tx.LockTradeBetween(ctx, from.ID, toPlayerID)
		if err != nil {
			return err
		}
		reverse, err := tx.LockTradeBetween(ctx, toPlayerID, from.ID)
		if err != nil {
			return err
		}

		tn, outcome, err = engine.Propose(from.ID, toPlayerID, offer, ledgers[from.ID], forward, reverse)
		if err != nil {
			return err
		}
		switch outcome {
		case engine.ProposalCountered:
			return tx.UpdateTradeCounter(ctx, tn.ID, *tn.ToOffer)
		default:
			tn.ID, err = tx.InsertTrade(ctx, tn)
			return err
		}
	})
	if err != nil {
		return tn, 0, g.fail("trade", username, err)
	}

	typ := "trade.proposed"
	if outcome == engine.ProposalCountered {
		typ = "trade.countered"
	}
	g.done("trade", username, zap.Int64("trade", tn.ID), zap.String("event", typ))
	g.publish(ctx, typ, username, map[string]any{"tradeId": tn.ID, "fromPlayerId": tn.FromPlayer, "toPlayerId": tn.ToPlayer})
	return tn, outcome, nil
}

// ResolveTrade accepts or rejects a notification the caller takes part in. A rejected or settled
// notification is deleted. When an accept finds that a party no longer holds its offer the
// notification is deleted as well and ErrTradeNoLongerValid is returned.
func (g *Game) ResolveTrade(ctx context.Context, username string, tradeID int64, accept bool) error {
	var (
		tn      entities.TradeNotification
		invalid error
	)
	err := g.store.WithTx(ctx, func(tx repository.Tx) error {
		caller, err := tx.LockPlayerByUsername(ctx, username)
		if err != nil {
			return err
		}
		if tn, err = tx.LockTrade(ctx, tradeID); err != nil {
			return err
		}
		if !tn.Involves(caller.ID) {
			return engine.ErrTradeNotFound.With("player %d not in trade %d", caller.ID, tradeID)
		}

		if accept {
			if engine.StateOf(&tn) != engine.TradeCountered {
				return engine.ErrNoActiveTrade
			}
			ledgers, err := tx.LockLedgers(ctx, tn.FromPlayer, tn.ToPlayer)
			if err != nil {
				return err
			}
			t, err := engine.Settle(tn, ledgers[tn.FromPlayer], ledgers[tn.ToPlayer])
			switch {
			case errors.Is(err, engine.ErrTradeNoLongerValid):
				invalid = err
			case err != nil:
				return err
			default:
				if err := tx.ApplyTransfer(ctx, t); err != nil {
					return err
				}
			}
		}

		deleted, err := tx.DeleteTrade(ctx, tradeID)
		if err != nil {
			return err
		}
		if !deleted {
			return engine.ErrTradeNotFound.With("trade %d", tradeID)
		}
		return nil
	})
	if err != nil {
		return g.fail("resolveTrade", username, err)
	}

	typ := "trade.rejected"
	switch {
	case invalid != nil:
		typ = "trade.invalidated"
	case accept:
		typ = "trade.accepted"
	}
	g.publish(ctx, typ, username, map[string]any{"tradeId": tradeID, "fromPlayerId": tn.FromPlayer, "toPlayerId": tn.ToPlayer})
	if invalid != nil {
		return g.fail("resolveTrade", username, invalid)
	}
	g.done("resolveTrade", username, zap.Int64("trade", tradeID), zap.String("event", typ))
	return nil
}
