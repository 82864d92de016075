package engine

import "go-catan/entities"

// Pieces counts what a player has on the board.
type Pieces struct {
	Roads       int
	Settlements int
	Cities      int
}

func CountPieces(towns []entities.Town, roads []entities.Road, playerID int64) Pieces {
	var p Pieces
	for _, t := range towns {
		if t.PlayerID != playerID {
			continue
		}
		if t.Level == 2 {
			p.Cities++
		} else {
			p.Settlements++
		}
	}
	for _, r := range roads {
		if r.PlayerID == playerID {
			p.Roads++
		}
	}
	return p
}

func (p Pieces) Built(kind entities.BuildingKind) int {
	switch kind {
	case entities.BuildRoad:
		return p.Roads
	case entities.BuildSettlement:
		return p.Settlements
	case entities.BuildCity:
		return p.Cities
	}
	return 0
}

// CheckTown validates placing a town of level on slot for playerID.
// Settlements need an empty slot with no built neighbour and, outside the setup rounds, one of the
// player's roads touching it. Cities upgrade the player's own settlement.
func CheckTown(slot entities.Town, level int, playerID int64, towns []entities.Town, roads []entities.Road, setup bool) error {
	if level == 2 {
		if slot.PlayerID != playerID || slot.Level != 1 {
			return ErrBuildNotAllowed.With("city needs your settlement on slot %d", slot.ID)
		}
		return nil
	}
	if slot.Built() {
		return ErrAlreadyBuilt.With("town %d", slot.ID)
	}
	built := make(map[int]bool, len(towns))
	for _, t := range towns {
		if t.Built() {
			built[t.ID] = true
		}
	}
	for _, n := range Neighbours(roads)[slot.ID] {
		if built[n] {
			return ErrTooCloseToTown.With("town %d next to %d", slot.ID, n)
		}
	}
	if setup {
		return nil
	}
	for _, r := range roads {
		if r.PlayerID == playerID && r.Touches(slot.ID) {
			return nil
		}
	}
	return ErrNotConnected.With("town %d", slot.ID)
}

// CheckRoad validates placing a road on slot: it must be free and share an end with one of the
// player's towns or roads.
func CheckRoad(slot entities.Road, playerID int64, towns []entities.Town, roads []entities.Road) error {
	if slot.Built() {
		return ErrAlreadyBuilt.With("road %d", slot.ID)
	}
	for _, t := range towns {
		if t.PlayerID == playerID && slot.Touches(t.ID) {
			return nil
		}
	}
	for _, r := range roads {
		if r.ID == slot.ID || r.PlayerID != playerID {
			continue
		}
		if slot.Touches(r.FromTown) || slot.Touches(r.ToTown) {
			return nil
		}
	}
	return ErrNotConnected.With("road %d", slot.ID)
}

// RequirePiece fails when the player has no pieces of kind left.
func RequirePiece(c *Catalog, kind entities.BuildingKind, p Pieces) error {
	left, err := c.Available(kind, p.Built(kind))
	if err != nil {
		return err
	}
	if left <= 0 {
		return ErrNoPiecesLeft.With("%s", kind)
	}
	return nil
}
