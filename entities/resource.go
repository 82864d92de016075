package entities

import "fmt"

// ResourceType 资源种类，数值与 resources_card.id 一致
type ResourceType int

const (
	Wood   ResourceType = 1
	Brick  ResourceType = 2
	Sheep  ResourceType = 3
	Wheat  ResourceType = 4
	Ore    ResourceType = 5
	Desert ResourceType = 6
)

// ResourceCount is the number of tradeable kinds. Desert never appears in a ledger.
const ResourceCount = 5

// TradeableResources maps vector ordinal -> resource type. Vectors sent by clients and stored in
// trade notifications are indexed by this table, never by "id - 1".
var TradeableResources = [ResourceCount]ResourceType{Wood, Brick, Sheep, Wheat, Ore}

var resourceNames = map[ResourceType]string{
	Wood:   "wood",
	Brick:  "brick",
	Sheep:  "sheep",
	Wheat:  "wheat",
	Ore:    "ore",
	Desert: "desert",
}

func (r ResourceType) String() string {
	if name, ok := resourceNames[r]; ok {
		return name
	}
	return fmt.Sprintf("resource(%d)", int(r))
}

func (r ResourceType) Tradeable() bool {
	return r >= Wood && r <= Ore
}

// Ordinal returns the vector position of a tradeable resource.
func (r ResourceType) Ordinal() (int, bool) {
	for i, t := range TradeableResources {
		if t == r {
			return i, true
		}
	}
	return 0, false
}

// ResourceVector 每种可交易资源的数量
type ResourceVector [ResourceCount]int

// VectorFromSlice builds a vector from a positional slice; missing trailing entries are zero.
func VectorFromSlice(qty []int) (ResourceVector, error) {
	var v ResourceVector
	if len(qty) > ResourceCount {
		return v, fmt.Errorf("resource vector has %d entries, at most %d allowed", len(qty), ResourceCount)
	}
	for i, q := range qty {
		if q < 0 {
			return v, fmt.Errorf("negative quantity %d for %s", q, TradeableResources[i])
		}
		v[i] = q
	}
	return v, nil
}

func (v ResourceVector) Get(r ResourceType) int {
	i, ok := r.Ordinal()
	if !ok {
		return 0
	}
	return v[i]
}

func (v *ResourceVector) Add(r ResourceType, qty int) {
	if i, ok := r.Ordinal(); ok {
		v[i] += qty
	}
}

func (v ResourceVector) Plus(o ResourceVector) ResourceVector {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

func (v ResourceVector) Minus(o ResourceVector) ResourceVector {
	for i := range v {
		v[i] -= o[i]
	}
	return v
}

func (v ResourceVector) Neg() ResourceVector {
	for i := range v {
		v[i] = -v[i]
	}
	return v
}

// Covers reports whether every entry of v is at least the matching entry of need.
func (v ResourceVector) Covers(need ResourceVector) bool {
	for i := range v {
		if v[i] < need[i] {
			return false
		}
	}
	return true
}

func (v ResourceVector) IsZero() bool {
	return v == ResourceVector{}
}

func (v ResourceVector) Total() int {
	n := 0
	for _, q := range v {
		n += q
	}
	return n
}

func (v ResourceVector) Slice() []int {
	out := make([]int, ResourceCount)
	copy(out, v[:])
	return out
}

// ResourceAmount is the {id,name,qty} shape used by the listing endpoints.
type ResourceAmount struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

func (v ResourceVector) Amounts() []ResourceAmount {
	out := make([]ResourceAmount, 0, ResourceCount)
	for i, r := range TradeableResources {
		out = append(out, ResourceAmount{ID: int(r), Name: r.String(), Qty: v[i]})
	}
	return out
}
