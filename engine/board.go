package engine

import (
	"fmt"

	"go-catan/entities"
)

// Board is the fixed topology of the map: tiles, corner slots, edges and tile→slot links.
type Board struct {
	Hexagons []entities.Hexagon
	Towns    []entities.Town
	Roads    []entities.Road
	Links    []entities.HexTown
}

// DesertLetter is the tag of the tile without a number.
const DesertLetter = "s"

// ReferenceNumbers is the printed A..R chit sequence laid along the board spiral.
var ReferenceNumbers = []int{5, 2, 6, 3, 8, 10, 9, 12, 11, 4, 8, 10, 9, 4, 5, 6, 3, 11}

type axial struct{ q, r int }

var hexDirections = []axial{{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}}

// pointy-top corners in a lattice where the centre of (q,r) sits at (2q+r, 3r)
var cornerOffsets = [6][2]int{{0, -2}, {1, -1}, {1, 1}, {0, 2}, {-1, 1}, {-1, -1}}

// spiral returns the tiles of a radius-n board from the outer ring inwards, the order chits are laid in.
func spiral(radius int) []axial {
	var out []axial
	for k := radius; k >= 1; k-- {
		h := axial{hexDirections[4].q * k, hexDirections[4].r * k}
		for side := 0; side < 6; side++ {
			for step := 0; step < k; step++ {
				out = append(out, h)
				h = axial{h.q + hexDirections[side].q, h.r + hexDirections[side].r}
			}
		}
	}
	return append(out, axial{0, 0})
}

// StandardBoard builds the 19-tile board: 54 town slots and 72 roads. Tile ids run row by row; the
// reference numbering follows the spiral and leaves the centre tile blank.
func StandardBoard() Board {
	const radius = 2
	var b Board

	tileID := make(map[axial]int)
	id := 0
	for r := -radius; r <= radius; r++ {
		for q := -radius; q <= radius; q++ {
			if abs(q) > radius || abs(r) > radius || abs(q+r) > radius {
				continue
			}
			id++
			tileID[axial{q, r}] = id
			b.Hexagons = append(b.Hexagons, entities.Hexagon{ID: id, Q: q, R: r, Resource: entities.Desert, Letter: DesertLetter})
		}
	}

	for i, a := range spiral(radius) {
		h := &b.Hexagons[tileID[a]-1]
		if i < len(ReferenceNumbers) {
			n := ReferenceNumbers[i]
			h.DiceNumber = &n
			h.Letter = string(rune('A' + i))
		} else {
			h.IsThief = true
		}
	}

	townAt := make(map[[2]int]int)
	roadAt := make(map[[2]int]bool)
	for _, h := range b.Hexagons {
		cx, cy := 2*h.Q+h.R, 3*h.R
		var corners [6]int
		for i, off := range cornerOffsets {
			p := [2]int{cx + off[0], cy + off[1]}
			tid, ok := townAt[p]
			if !ok {
				tid = len(b.Towns) + 1
				townAt[p] = tid
				b.Towns = append(b.Towns, entities.Town{ID: tid, X: p[0], Y: p[1]})
			}
			corners[i] = tid
			b.Links = append(b.Links, entities.HexTown{HexID: h.ID, TownID: tid})
		}
		for i := range corners {
			a, c := corners[i], corners[(i+1)%6]
			if a > c {
				a, c = c, a
			}
			if roadAt[[2]int{a, c}] {
				continue
			}
			roadAt[[2]int{a, c}] = true
			b.Roads = append(b.Roads, entities.Road{ID: len(b.Roads) + 1, FromTown: a, ToTown: c})
		}
	}
	return b
}

// Validate checks the counts a playable board must have.
func (b Board) Validate() error {
	if len(b.Hexagons) == 0 || len(b.Towns) == 0 || len(b.Roads) == 0 {
		return fmt.Errorf("empty board")
	}
	numbered := 0
	for _, h := range b.Hexagons {
		if h.DiceNumber != nil {
			numbered++
		}
	}
	if numbered != len(b.Hexagons)-1 {
		return fmt.Errorf("board has %d numbered tiles for %d tiles", numbered, len(b.Hexagons))
	}
	return nil
}

// Neighbours maps each town slot to the slots one road away.
func Neighbours(roads []entities.Road) map[int][]int {
	out := make(map[int][]int)
	for _, r := range roads {
		out[r.FromTown] = append(out[r.FromTown], r.ToTown)
		out[r.ToTown] = append(out[r.ToTown], r.FromTown)
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
