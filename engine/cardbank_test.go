package engine

import (
	"errors"
	"testing"

	"go-catan/entities"

	"golang.org/x/exp/rand"
)

func TestPickWithTicket(t *testing.T) {
	pools := []entities.CardPool{
		{Kind: entities.CardKnight, MaxCount: 3, CurrentCount: 1},       // 2 left
		{Kind: entities.CardVictoryPoint, MaxCount: 1, CurrentCount: 1}, // empty
		{Kind: entities.CardMonopoly, MaxCount: 2},                      // 2 left
	}
	tests := []struct {
		ticket int
		want   entities.CardKind
	}{
		{1, entities.CardKnight},
		{2, entities.CardKnight},
		{3, entities.CardMonopoly},
		{4, entities.CardMonopoly},
	}
	for _, tt := range tests {
		got, err := pickWithTicket(pools, tt.ticket)
		if err != nil {
			t.Fatalf("ticket %d: %v", tt.ticket, err)
		}
		if got.Kind != tt.want {
			t.Errorf("ticket %d: got %s, want %s", tt.ticket, got.Kind, tt.want)
		}
	}
	if _, err := pickWithTicket(pools, 5); !errors.Is(err, ErrDeckContention) {
		t.Fatalf("expected contention past the end, got %v", err)
	}
}

func TestPickCardWeightsByRemaining(t *testing.T) {
	pools := []entities.CardPool{
		{Kind: entities.CardKnight, MaxCount: 14},
		{Kind: entities.CardVictoryPoint, MaxCount: 5, CurrentCount: 5},
		{Kind: entities.CardRoadBuilding, MaxCount: 2},
	}
	rng := rand.New(rand.NewSource(3))
	counts := map[entities.CardKind]int{}
	for i := 0; i < 8000; i++ {
		p, err := PickCard(pools, rng)
		if err != nil {
			t.Fatalf("PickCard: %v", err)
		}
		counts[p.Kind]++
	}
	if counts[entities.CardVictoryPoint] != 0 {
		t.Fatalf("exhausted kind drawn %d times", counts[entities.CardVictoryPoint])
	}
	// expected 7000 / 1000
	if counts[entities.CardKnight] < 6600 || counts[entities.CardRoadBuilding] < 800 {
		t.Fatalf("distribution off: %v", counts)
	}
}

func TestPickCardEmptyDeck(t *testing.T) {
	pools := []entities.CardPool{{Kind: entities.CardKnight, MaxCount: 1, CurrentCount: 1}}
	_, err := PickCard(pools, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrDeckEmpty) || KindOf(err) != KindConflict {
		t.Fatalf("expected ErrDeckEmpty conflict, got %v", err)
	}
	if DeckRemaining(pools) != 0 {
		t.Fatalf("DeckRemaining = %d", DeckRemaining(pools))
	}
}
