package engine

import (
	"testing"

	"go-catan/entities"
)

// path builds consecutive roads through the given town ids.
func path(firstID int, owner int64, towns ...int) []entities.Road {
	var out []entities.Road
	for i := 0; i+1 < len(towns); i++ {
		out = append(out, entities.Road{ID: firstID + i, FromTown: towns[i], ToTown: towns[i+1], PlayerID: owner})
	}
	return out
}

func TestLongestRoad(t *testing.T) {
	tests := []struct {
		name  string
		roads []entities.Road
		want  int
	}{
		{"below five short-circuits", path(1, 1, 1, 2, 3, 4, 5), 0},
		{"straight five", path(1, 1, 1, 2, 3, 4, 5, 6), 5},
		{"straight six", path(1, 1, 1, 2, 3, 4, 5, 6, 7), 6},
		{"fork keeps longest branch", append(path(1, 1, 1, 2, 3, 4, 5, 6), path(10, 1, 3, 20)...), 5},
		{"loop of six", path(1, 1, 1, 2, 3, 4, 5, 6, 1), 6},
		{
			"loop with tail revisits node via different edge",
			append(path(1, 1, 1, 2, 3, 4, 1), path(10, 1, 1, 7, 8)...),
			6,
		},
		{"two disjoint runs", append(path(1, 1, 1, 2, 3), path(10, 1, 10, 11, 12, 13, 14, 15)...), 5},
		{
			"figure eight",
			append(path(1, 1, 1, 2, 3, 1), path(10, 1, 1, 4, 5, 1)...),
			6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LongestRoad(tt.roads); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLongestRoadOnBoard(t *testing.T) {
	b := StandardBoard()
	// walk the six edges around the first tile
	var ring []entities.Road
	around := map[int]bool{}
	for _, l := range b.Links {
		if l.HexID == 1 {
			around[l.TownID] = true
		}
	}
	for _, r := range b.Roads {
		if around[r.FromTown] && around[r.ToTown] {
			r.PlayerID = 1
			ring = append(ring, r)
		}
	}
	if len(ring) != 6 {
		t.Fatalf("expected 6 edges around tile 1, got %d", len(ring))
	}
	if got := LongestRoad(ring); got != 6 {
		t.Fatalf("ring: got %d, want 6", got)
	}
}

func TestAwardLongestRoad(t *testing.T) {
	s := entities.GameSession{}

	s, moved := AwardLongestRoad(s, 1, 4)
	if moved || s.LongestRoadHolder != 0 {
		t.Fatalf("4 roads must not award, got %+v", s)
	}

	s, moved = AwardLongestRoad(s, 1, 6)
	if !moved || s.LongestRoadHolder != 1 || s.LongestRoadLength != 6 {
		t.Fatalf("first 6 should award, got %+v moved=%v", s, moved)
	}

	s, moved = AwardLongestRoad(s, 2, 6)
	if moved || s.LongestRoadHolder != 1 {
		t.Fatalf("tie must not transfer, got %+v", s)
	}

	s, moved = AwardLongestRoad(s, 2, 7)
	if !moved || s.LongestRoadHolder != 2 || s.LongestRoadLength != 7 {
		t.Fatalf("7 should transfer, got %+v", s)
	}

	s, moved = AwardLongestRoad(s, 2, 8)
	if moved || s.LongestRoadHolder != 2 || s.LongestRoadLength != 8 {
		t.Fatalf("holder extending keeps title, got %+v moved=%v", s, moved)
	}
}
