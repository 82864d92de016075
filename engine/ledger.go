package engine

import (
	"sort"

	"go-catan/entities"
)

// Transfer holds per-player ledger deltas applied as one unit. The bank's in-circulation
// counters move by the same total, so Σ ledgers + bank available stays equal to the supply.
type Transfer map[int64]entities.ResourceVector

func (t Transfer) Add(playerID int64, delta entities.ResourceVector) {
	t[playerID] = t[playerID].Plus(delta)
}

// Circulation is the change of resources held by players.
func (t Transfer) Circulation() entities.ResourceVector {
	var sum entities.ResourceVector
	for _, d := range t {
		sum = sum.Plus(d)
	}
	return sum
}

// PlayerIDs returns the touched players in ascending order, the order rows are locked in.
func (t Transfer) PlayerIDs() []int64 {
	ids := make([]int64, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Apply returns the balances after the transfer, failing if any would go negative.
func (t Transfer) Apply(balances map[int64]entities.ResourceVector) (map[int64]entities.ResourceVector, error) {
	out := make(map[int64]entities.ResourceVector, len(balances))
	for id, b := range balances {
		out[id] = b
	}
	for id, d := range t {
		next := out[id].Plus(d)
		for _, q := range next {
			if q < 0 {
				return nil, ErrInsufficientResources
			}
		}
		out[id] = next
	}
	return out, nil
}

// ChargeBuilding debits the cost of kind from a player holding balance.
func ChargeBuilding(c *Catalog, playerID int64, balance entities.ResourceVector, kind entities.BuildingKind) (Transfer, error) {
	cost, err := c.Cost(kind)
	if err != nil {
		return nil, err
	}
	if !balance.Covers(cost) {
		return nil, ErrInsufficientResources.With("%s needs %v, player holds %v", kind, cost, balance)
	}
	return Transfer{playerID: cost.Neg()}, nil
}

// BankAvailable indexes the bank rows by vector position.
func BankAvailable(bank []entities.BankEntry) entities.ResourceVector {
	var v entities.ResourceVector
	for _, b := range bank {
		v.Add(b.Resource, b.Available())
	}
	return v
}

// BankTrade 以 ratio 个 from 资源向银行换 1 个 to 资源
func BankTrade(playerID int64, balance entities.ResourceVector, bank []entities.BankEntry, from, to entities.ResourceType, ratio int) (Transfer, error) {
	if !from.Tradeable() || !to.Tradeable() || from == to {
		return nil, Invalid("invalid trade params")
	}
	if ratio <= 0 {
		return nil, Configuration("bank trade ratio %d", ratio)
	}
	if balance.Get(from) < ratio {
		return nil, ErrInsufficientResources.With("need %d %s", ratio, from)
	}
	if BankAvailable(bank).Get(to) < 1 {
		return nil, ErrBankEmpty.With("%s", to)
	}
	var d entities.ResourceVector
	d.Add(from, -ratio)
	d.Add(to, 1)
	return Transfer{playerID: d}, nil
}
