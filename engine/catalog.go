package engine

import (
	"fmt"

	"go-catan/entities"
)

// BuildingSpec is one row of the building table and its resource requirements.
type BuildingSpec struct {
	Kind     entities.BuildingKind
	MaxCount int // pieces per player; 0 = unlimited
	Cost     entities.ResourceVector
}

// Catalog 建筑花费表
type Catalog struct {
	specs map[entities.BuildingKind]BuildingSpec
}

func vec(pairs map[entities.ResourceType]int) entities.ResourceVector {
	var v entities.ResourceVector
	for r, q := range pairs {
		v.Add(r, q)
	}
	return v
}

// DefaultCatalog is the standard cost table.
func DefaultCatalog() *Catalog {
	return NewCatalog([]BuildingSpec{
		{Kind: entities.BuildRoad, MaxCount: 15, Cost: vec(map[entities.ResourceType]int{entities.Wood: 1, entities.Brick: 1})},
		{Kind: entities.BuildSettlement, MaxCount: 5, Cost: vec(map[entities.ResourceType]int{
			entities.Wood: 1, entities.Brick: 1, entities.Sheep: 1, entities.Wheat: 1,
		})},
		{Kind: entities.BuildCity, MaxCount: 4, Cost: vec(map[entities.ResourceType]int{entities.Wheat: 2, entities.Ore: 3})},
		{Kind: entities.BuildCard, Cost: vec(map[entities.ResourceType]int{entities.Sheep: 1, entities.Wheat: 1, entities.Ore: 1})},
	})
}

func NewCatalog(specs []BuildingSpec) *Catalog {
	c := &Catalog{specs: make(map[entities.BuildingKind]BuildingSpec, len(specs))}
	for _, s := range specs {
		c.specs[s.Kind] = s
	}
	return c
}

func (c *Catalog) Spec(kind entities.BuildingKind) (BuildingSpec, error) {
	s, ok := c.specs[kind]
	if !ok {
		return BuildingSpec{}, Configuration("no cost row for building %d", kind)
	}
	return s, nil
}

func (c *Catalog) Cost(kind entities.BuildingKind) (entities.ResourceVector, error) {
	s, err := c.Spec(kind)
	if err != nil {
		return entities.ResourceVector{}, err
	}
	return s.Cost, nil
}

// Specs lists every row ordered by kind.
func (c *Catalog) Specs() []BuildingSpec {
	out := make([]BuildingSpec, 0, len(c.specs))
	for k := entities.BuildRoad; k <= entities.BuildCard; k++ {
		if s, ok := c.specs[k]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Available returns how many more pieces of kind a player may place given how many are built.
func (c *Catalog) Available(kind entities.BuildingKind, built int) (int, error) {
	s, err := c.Spec(kind)
	if err != nil {
		return 0, err
	}
	if s.MaxCount == 0 {
		return 0, fmt.Errorf("building %s has no piece limit", kind)
	}
	if built >= s.MaxCount {
		return 0, nil
	}
	return s.MaxCount - built, nil
}
