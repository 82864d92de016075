package engine

import (
	"errors"
	"testing"

	"go-catan/entities"
)

func TestNextTurnSnakeOrder(t *testing.T) {
	want := [][2]int{
		{2, 1}, {3, 1}, {4, 1},
		{3, 2}, {2, 2}, {1, 2},
		{1, 3}, {2, 3}, {3, 3}, {4, 3},
		{1, 4}, {2, 4},
	}
	turn, round := 1, 1
	for i, w := range want {
		turn, round = NextTurn(turn, round, 4)
		if turn != w[0] || round != w[1] {
			t.Fatalf("step %d: got (%d,%d), want (%d,%d)", i, turn, round, w[0], w[1])
		}
	}
}

func TestNextTurnEdgeCases(t *testing.T) {
	tests := []struct {
		name              string
		turn, round, max  int
		wantTurn, wantRnd int
	}{
		{"last player round 1 reverses", 3, 1, 3, 2, 2},
		{"round 2 first player enters main", 1, 2, 3, 1, 3},
		{"last player in round 2 enters main", 3, 2, 3, 1, 3},
		{"round 2 descends", 2, 2, 3, 1, 2},
		{"main wraps", 3, 7, 3, 1, 8},
		{"main advances", 1, 5, 3, 2, 5},
		{"two players", 2, 1, 2, 1, 2},
		{"single player", 1, 1, 1, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn, round := NextTurn(tt.turn, tt.round, tt.max)
			if turn != tt.wantTurn || round != tt.wantRnd {
				t.Errorf("got (%d,%d), want (%d,%d)", turn, round, tt.wantTurn, tt.wantRnd)
			}
		})
	}
}

func TestEndTurn(t *testing.T) {
	s := entities.GameSession{Turn: 2, Round: 3, LastDiceRoll: 8, MaxPlayers: 4}

	if _, err := EndTurn(s, entities.Player{PlayOrder: 1}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}

	next, err := EndTurn(s, entities.Player{PlayOrder: 2})
	if err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if next.Turn != 3 || next.Round != 3 || next.LastDiceRoll != 0 {
		t.Fatalf("unexpected session %+v", next)
	}

	if _, err := EndTurn(entities.GameSession{MaxPlayers: 4}, entities.Player{PlayOrder: 1}); !errors.Is(err, ErrGameNotStarted) {
		t.Fatalf("expected ErrGameNotStarted, got %v", err)
	}
}

func TestIsBuildFree(t *testing.T) {
	tests := []struct {
		name  string
		round int
		order int
		want  bool
	}{
		{"setup1 own turn", 1, 1, true},
		{"setup2 own turn", 2, 1, true},
		{"setup other turn", 1, 2, false},
		{"main own turn", 3, 1, false},
		{"not started", 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := entities.GameSession{Turn: 1, Round: tt.round, MaxPlayers: 4}
			if got := IsBuildFree(s, entities.Player{PlayOrder: tt.order}); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPhaseOf(t *testing.T) {
	for round, want := range map[int]Phase{0: PhaseNotStarted, 1: PhaseSetup1, 2: PhaseSetup2, 3: PhaseMain, 9: PhaseMain} {
		if got := PhaseOf(entities.GameSession{Round: round}); got != want {
			t.Errorf("round %d: got %s, want %s", round, got, want)
		}
	}
}
