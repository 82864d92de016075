package engine

import (
	"errors"
	"testing"

	"go-catan/entities"
)

func TestProposeCreatesThenCounters(t *testing.T) {
	offer := v(0, 2, 0, 0, 0)
	tn, outcome, err := Propose(1, 2, offer, v(0, 3, 0, 0, 0), nil, nil)
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if outcome != ProposalCreated || StateOf(&tn) != TradeProposed || tn.FromOffer != offer {
		t.Fatalf("unexpected proposal %+v outcome=%d", tn, outcome)
	}
	tn.ID = 5

	counter := v(0, 0, 0, 0, 1)
	countered, outcome, err := Propose(2, 1, counter, v(0, 0, 0, 0, 1), nil, &tn)
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	if outcome != ProposalCountered || countered.ID != 5 || StateOf(&countered) != TradeCountered {
		t.Fatalf("unexpected counter %+v outcome=%d", countered, outcome)
	}
	if *countered.ToOffer != counter || countered.FromOffer != offer {
		t.Fatalf("offers changed: %+v", countered)
	}
	if StateOf(&tn) != TradeProposed {
		t.Fatalf("input notification mutated")
	}
}

func TestProposeRejections(t *testing.T) {
	open := &entities.TradeNotification{ID: 1, FromPlayer: 1, ToPlayer: 2, FromOffer: v(1, 0, 0, 0, 0)}
	countered := &entities.TradeNotification{ID: 2, FromPlayer: 2, ToPlayer: 1, FromOffer: v(1, 0, 0, 0, 0), ToOffer: &entities.ResourceVector{}}

	tests := []struct {
		name     string
		from, to int64
		offer    entities.ResourceVector
		balance  entities.ResourceVector
		forward  *entities.TradeNotification
		reverse  *entities.TradeNotification
		want     error
	}{
		{"self", 1, 1, v(1, 0, 0, 0, 0), v(1, 0, 0, 0, 0), nil, nil, ErrTradeWithSelf},
		{"not enough", 1, 2, v(2, 0, 0, 0, 0), v(1, 0, 0, 0, 0), nil, nil, ErrInsufficientResources},
		{"already open", 1, 2, v(1, 0, 0, 0, 0), v(1, 0, 0, 0, 0), open, nil, ErrTradeAlreadyOpen},
		{"already countered", 1, 2, v(1, 0, 0, 0, 0), v(1, 0, 0, 0, 0), nil, countered, ErrTradeAlreadyOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Propose(tt.from, tt.to, tt.offer, tt.balance, tt.forward, tt.reverse)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, _, err := Propose(1, 2, entities.ResourceVector{}, v(1, 0, 0, 0, 0), nil, nil); KindOf(err) != KindValidation {
		t.Fatalf("empty offer: expected validation error, got %v", err)
	}
}

func TestSettle(t *testing.T) {
	counter := v(0, 0, 0, 0, 1)
	tn := entities.TradeNotification{ID: 1, FromPlayer: 1, ToPlayer: 2, FromOffer: v(0, 2, 0, 0, 0), ToOffer: &counter}

	tr, err := Settle(tn, v(0, 2, 0, 0, 0), v(0, 0, 0, 0, 1))
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if tr[1] != v(0, -2, 0, 0, 1) || tr[2] != v(0, 2, 0, 0, -1) {
		t.Fatalf("unexpected transfer %v", tr)
	}
	if !tr.Circulation().IsZero() {
		t.Fatalf("player trade must not touch the bank: %v", tr.Circulation())
	}

	// proposer spent a brick after proposing
	if _, err := Settle(tn, v(0, 1, 0, 0, 0), v(0, 0, 0, 0, 1)); !errors.Is(err, ErrTradeNoLongerValid) {
		t.Fatalf("expected ErrTradeNoLongerValid, got %v", err)
	}
	if _, err := Settle(tn, v(0, 2, 0, 0, 0), entities.ResourceVector{}); !errors.Is(err, ErrTradeNoLongerValid) {
		t.Fatalf("expected ErrTradeNoLongerValid for responder, got %v", err)
	}

	tn.ToOffer = nil
	if _, err := Settle(tn, v(0, 2, 0, 0, 0), v(0, 0, 0, 0, 1)); !errors.Is(err, ErrNoActiveTrade) {
		t.Fatalf("expected ErrNoActiveTrade, got %v", err)
	}
}
