package repository

import (
	"go-catan/engine"
	"go-catan/entities"
)

// Seed is the reference data a fresh store starts from.
type Seed struct {
	MaxPlayers int
	Board      engine.Board
	Bank       []entities.BankEntry
	Cards      []entities.CardPool
	Catalog    *engine.Catalog
}

// DefaultSeed 标准版图：19 块地形、每种资源 supply 张、25 张发展卡
func DefaultSeed(maxPlayers, supply int) Seed {
	hexCount := map[entities.ResourceType]int{
		entities.Wood: 4, entities.Brick: 3, entities.Sheep: 4,
		entities.Wheat: 4, entities.Ore: 3, entities.Desert: 1,
	}
	var bank []entities.BankEntry
	for r := entities.Wood; r <= entities.Desert; r++ {
		e := entities.BankEntry{Resource: r, MaxHexCount: hexCount[r]}
		if r.Tradeable() {
			e.Supply = supply
		}
		bank = append(bank, e)
	}
	cards := []entities.CardPool{
		{Kind: entities.CardKnight, MaxCount: 14},
		{Kind: entities.CardVictoryPoint, MaxCount: 5},
		{Kind: entities.CardRoadBuilding, MaxCount: 2},
		{Kind: entities.CardYearOfPlenty, MaxCount: 2},
		{Kind: entities.CardMonopoly, MaxCount: 2},
	}
	for i := range cards {
		cards[i].Name = cards[i].Kind.String()
	}
	return Seed{
		MaxPlayers: maxPlayers,
		Board:      engine.StandardBoard(),
		Bank:       bank,
		Cards:      cards,
		Catalog:    engine.DefaultCatalog(),
	}
}

// HexQuotas turns the bank rows into the per-resource tile counts used by the map generator.
func HexQuotas(bank []entities.BankEntry) map[entities.ResourceType]int {
	out := make(map[entities.ResourceType]int, len(bank))
	for _, b := range bank {
		out[b.Resource] = b.MaxHexCount
	}
	return out
}
