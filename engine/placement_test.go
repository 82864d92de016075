package engine

import (
	"errors"
	"testing"

	"go-catan/entities"
)

func TestCheckTown(t *testing.T) {
	roads := path(1, 0, 1, 2, 3, 4)
	roads[2].PlayerID = 7 // 3-4 belongs to player 7
	towns := []entities.Town{{ID: 1, PlayerID: 9, Level: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5, PlayerID: 7, Level: 1}}

	tests := []struct {
		name  string
		slot  entities.Town
		level int
		setup bool
		want  error
	}{
		{"neighbour built", towns[1], 1, true, ErrTooCloseToTown},
		{"already built", towns[0], 1, true, ErrAlreadyBuilt},
		{"setup ignores roads", towns[3], 1, true, nil},
		{"main needs own road", towns[2], 1, false, nil},
		{"main without road", entities.Town{ID: 40}, 1, false, ErrNotConnected},
		{"city on own settlement", towns[4], 2, false, nil},
		{"city on foreign settlement", towns[0], 2, false, ErrBuildNotAllowed},
		{"city on empty slot", towns[2], 2, false, ErrBuildNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTown(tt.slot, tt.level, 7, towns, roads, tt.setup)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCheckRoad(t *testing.T) {
	roads := []entities.Road{
		{ID: 1, FromTown: 1, ToTown: 2, PlayerID: 7},
		{ID: 2, FromTown: 2, ToTown: 3},
		{ID: 3, FromTown: 5, ToTown: 6},
		{ID: 4, FromTown: 6, ToTown: 8},
	}
	towns := []entities.Town{{ID: 5, PlayerID: 7, Level: 1}}

	if err := CheckRoad(roads[1], 7, towns, roads); err != nil {
		t.Fatalf("extends own road: %v", err)
	}
	if err := CheckRoad(roads[2], 7, towns, roads); err != nil {
		t.Fatalf("touches own town: %v", err)
	}
	if err := CheckRoad(roads[3], 7, towns, roads); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if err := CheckRoad(roads[0], 7, towns, roads); !errors.Is(err, ErrAlreadyBuilt) {
		t.Fatalf("expected ErrAlreadyBuilt, got %v", err)
	}
}

func TestRequirePiece(t *testing.T) {
	c := DefaultCatalog()
	if err := RequirePiece(c, entities.BuildSettlement, Pieces{Settlements: 4}); err != nil {
		t.Fatalf("4 of 5 settlements: %v", err)
	}
	if err := RequirePiece(c, entities.BuildSettlement, Pieces{Settlements: 5}); !errors.Is(err, ErrNoPiecesLeft) {
		t.Fatalf("expected ErrNoPiecesLeft, got %v", err)
	}
	if err := RequirePiece(c, entities.BuildRoad, Pieces{Roads: 15}); !errors.Is(err, ErrNoPiecesLeft) {
		t.Fatalf("expected ErrNoPiecesLeft for roads, got %v", err)
	}
}
