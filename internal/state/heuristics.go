package state

// Inversions counts, over all tableau columns, the adjacent pairs where the card on top outranks
// the card just below it. Such pairs have to be broken up before the column can be cleared, so
// lower is better. A sorted column (descending towards the top) has no inversions.
func Inversions(gs *GameState) (count int) {
	for _, cards := range gs.Tableau {
		for ii := 1; ii < len(cards); ii++ {
			if cards[ii].Rank() > cards[ii-1].Rank() {
				count++
			}
		}
	}
	return
}

// NextNeeded returns, for each suit, the next rank its foundation needs. A completed suit
// returns King+1.
func NextNeeded(gs *GameState) (needed [NumSuits]Rank) {
	for _, suit := range Suits {
		needed[suit] = gs.FoundationRank(suit) + 1
	}
	return
}

// LowestNeeded returns the lowest rank still needed by any foundation, or King+1 if the game is won.
func LowestNeeded(gs *GameState) Rank {
	lowest := King + 1
	for _, rank := range NextNeeded(gs) {
		lowest = min(lowest, rank)
	}
	return lowest
}

// ColumnMinRank returns the lowest rank in the given tableau column, or King+1 if it is empty.
func ColumnMinRank(gs *GameState, col int) Rank {
	lowest := King + 1
	for _, card := range gs.Tableau[col] {
		lowest = min(lowest, card.Rank())
	}
	return lowest
}
