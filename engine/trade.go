package engine

import "go-catan/entities"

// TradeState 交易通知状态
type TradeState int

const (
	TradeNoOffer TradeState = iota
	TradeProposed
	TradeCountered
)

func StateOf(tn *entities.TradeNotification) TradeState {
	switch {
	case tn == nil:
		return TradeNoOffer
	case tn.ToOffer == nil:
		return TradeProposed
	default:
		return TradeCountered
	}
}

// ProposalOutcome tells the store what to persist for a propose call.
type ProposalOutcome int

const (
	ProposalCreated ProposalOutcome = iota + 1
	ProposalCountered
)

// Propose applies a propose action from `from` to `to`. reverse is the open notification in the
// other direction (to → from), forward the one in the same direction; either may be nil.
// A propose against an open reverse notification fills its responder slot.
func Propose(from, to int64, offer, balance entities.ResourceVector, forward, reverse *entities.TradeNotification) (entities.TradeNotification, ProposalOutcome, error) {
	if from == to {
		return entities.TradeNotification{}, 0, ErrTradeWithSelf
	}
	if !balance.Covers(offer) {
		return entities.TradeNotification{}, 0, ErrInsufficientResources.With("offer %v, holds %v", offer, balance)
	}
	if reverse != nil {
		if StateOf(reverse) == TradeCountered {
			return entities.TradeNotification{}, 0, ErrTradeAlreadyOpen.With("trade %d already countered", reverse.ID)
		}
		tn := *reverse
		counter := offer
		tn.ToOffer = &counter
		return tn, ProposalCountered, nil
	}
	if forward != nil {
		return entities.TradeNotification{}, 0, ErrTradeAlreadyOpen.With("trade %d", forward.ID)
	}
	if offer.IsZero() {
		return entities.TradeNotification{}, 0, Invalid("offer is empty")
	}
	return entities.TradeNotification{FromPlayer: from, ToPlayer: to, FromOffer: offer}, ProposalCreated, nil
}

// Settle re-validates an accepted trade against current balances and returns the exchange.
// ErrNoActiveTrade leaves the notification open; ErrTradeNoLongerValid means it must be deleted
// without moving resources.
func Settle(tn entities.TradeNotification, fromBalance, toBalance entities.ResourceVector) (Transfer, error) {
	if StateOf(&tn) != TradeCountered {
		return nil, ErrNoActiveTrade
	}
	counter := *tn.ToOffer
	if !fromBalance.Covers(tn.FromOffer) {
		return nil, ErrTradeNoLongerValid.With("player %d lacks %v", tn.FromPlayer, tn.FromOffer)
	}
	if !toBalance.Covers(counter) {
		return nil, ErrTradeNoLongerValid.With("player %d lacks %v", tn.ToPlayer, counter)
	}
	t := Transfer{}
	t.Add(tn.FromPlayer, counter.Minus(tn.FromOffer))
	t.Add(tn.ToPlayer, tn.FromOffer.Minus(counter))
	return t, nil
}
