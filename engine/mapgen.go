package engine

import (
	"sort"

	"go-catan/entities"
)

// Rand is the subset of golang.org/x/exp/rand the generators need.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// GenerateMap shuffles which tile gets which resource and re-lays the reference numbering over
// the non-desert tiles in the same order. hexes must be ordered by id and carry the current
// numbering; quotas is the number of tiles per resource type (desert included).
func GenerateMap(hexes []entities.Hexagon, quotas map[entities.ResourceType]int, rng Rand) ([]entities.Hexagon, error) {
	if len(hexes) == 0 {
		return nil, Configuration("no hexagon rows")
	}

	kinds := make([]entities.ResourceType, 0, len(quotas))
	for r := range quotas {
		kinds = append(kinds, r)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var pool []entities.ResourceType
	deserts := 0
	for _, r := range kinds {
		n := quotas[r]
		if n < 0 {
			return nil, Configuration("invalid max_hex_count %d for resource %d", n, r)
		}
		if r == entities.Desert {
			deserts += n
		}
		for i := 0; i < n; i++ {
			pool = append(pool, r)
		}
	}
	if len(pool) != len(hexes) {
		return nil, Configuration("sum of max_hex_count (%d) does not match hexagon count (%d)", len(pool), len(hexes))
	}
	if deserts != 1 {
		return nil, Configuration("expected exactly 1 desert, found %d", deserts)
	}

	type chit struct {
		dice   int
		letter string
	}
	var seq []chit
	for _, h := range hexes {
		if h.DiceNumber != nil {
			seq = append(seq, chit{dice: *h.DiceNumber, letter: h.Letter})
		}
	}
	if len(seq) != len(hexes)-1 {
		return nil, Configuration("numbered tiles (%d) do not match hexagons-1 (%d)", len(seq), len(hexes)-1)
	}

	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	out := make([]entities.Hexagon, len(hexes))
	k := 0
	desertID := 0
	for i, h := range hexes {
		h.Resource = pool[i]
		if h.Resource == entities.Desert {
			desertID = h.ID
			h.DiceNumber = nil
			h.Letter = DesertLetter
			h.IsThief = true
		} else {
			if k >= len(seq) {
				return nil, Configuration("ran out of numbers at hexagon %d", h.ID)
			}
			n := seq[k].dice
			h.DiceNumber = &n
			h.Letter = seq[k].letter
			h.IsThief = false
			k++
		}
		out[i] = h
	}
	if desertID == 0 {
		return nil, Configuration("no desert after shuffling")
	}
	if k != len(seq) {
		return nil, Configuration("number sequence not fully consumed, used %d of %d", k, len(seq))
	}
	return out, nil
}

// AssignPlayOrder shuffles the active players and numbers them 1..N.
func AssignPlayOrder(players []entities.Player, rng Rand) []entities.Player {
	out := make([]entities.Player, len(players))
	copy(out, players)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	for i := range out {
		out[i].PlayOrder = i + 1
	}
	return out
}
