package engine

import "go-catan/entities"

// RollResult is what one dice number yields.
type RollResult struct {
	Credits Transfer
	// Withheld lists resources nobody received because the bank could not cover the demand.
	Withheld []entities.ResourceType
}

// Production computes the credits of a dice roll: every built town on a matching, non-desert,
// thief-free tile receives level units of the tile's resource. Computed for all owners at once so
// the result can be persisted in a single batched update.
func Production(dice int, hexes []entities.Hexagon, links []entities.HexTown, towns []entities.Town, bank []entities.BankEntry) RollResult {
	res := RollResult{Credits: Transfer{}}

	producing := make(map[int]entities.ResourceType)
	for _, h := range hexes {
		if h.DiceNumber == nil || *h.DiceNumber != dice || h.IsThief || !h.Resource.Tradeable() {
			continue
		}
		producing[h.ID] = h.Resource
	}
	if len(producing) == 0 {
		return res
	}

	townByID := make(map[int]entities.Town, len(towns))
	for _, t := range towns {
		townByID[t.ID] = t
	}

	demand := Transfer{}
	var total entities.ResourceVector
	for _, l := range links {
		r, ok := producing[l.HexID]
		if !ok {
			continue
		}
		t, ok := townByID[l.TownID]
		if !ok || !t.Built() {
			continue
		}
		var d entities.ResourceVector
		d.Add(r, t.Level)
		demand.Add(t.PlayerID, d)
		total = total.Plus(d)
	}

	available := BankAvailable(bank)
	var blocked entities.ResourceVector
	for i, r := range entities.TradeableResources {
		if total[i] > 0 && total[i] > available[i] {
			blocked[i] = 1
			res.Withheld = append(res.Withheld, r)
		}
	}
	for pid, d := range demand {
		for i := range d {
			if blocked[i] == 1 {
				d[i] = 0
			}
		}
		if !d.IsZero() {
			res.Credits[pid] = d
		}
	}
	return res
}

// ThiefTarget validates a thief move and returns the tile currently holding it (0 if none).
func ThiefTarget(hexes []entities.Hexagon, target int) (int, error) {
	current := 0
	found := false
	for _, h := range hexes {
		if h.IsThief {
			current = h.ID
		}
		if h.ID == target {
			found = true
		}
	}
	if !found {
		return 0, ErrTileNotFound.With("hex %d", target)
	}
	if current == target {
		return 0, ErrThiefMustMove
	}
	return current, nil
}
