package engine

import "go-catan/entities"

// PickCard chooses a card kind weighted by remaining supply. The ticket is drawn in
// [1, totalRemaining] and consumed against each kind's remaining count in kind order.
func PickCard(pools []entities.CardPool, rng Rand) (entities.CardPool, error) {
	total := 0
	for _, p := range pools {
		if p.Remaining() > 0 {
			total += p.Remaining()
		}
	}
	if total <= 0 {
		return entities.CardPool{}, ErrDeckEmpty
	}
	return pickWithTicket(pools, rng.Intn(total)+1)
}

func pickWithTicket(pools []entities.CardPool, ticket int) (entities.CardPool, error) {
	for _, p := range pools {
		if p.Remaining() <= 0 {
			continue
		}
		ticket -= p.Remaining()
		if ticket <= 0 {
			return p, nil
		}
	}
	return entities.CardPool{}, ErrDeckContention.With("ticket %d past end of deck", ticket)
}

// DeckRemaining is the number of cards still in the bank.
func DeckRemaining(pools []entities.CardPool) int {
	n := 0
	for _, p := range pools {
		if p.Remaining() > 0 {
			n += p.Remaining()
		}
	}
	return n
}
