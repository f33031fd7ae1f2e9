package searchers

import (
	"slices"

	. "github.com/janpfeifer/freecellGo/internal/state"
)

// NoPreviousColumn is passed to Ordering.Order when the previous move didn't come from the tableau,
// or at the root of the search.
const NoPreviousColumn = -1

// freeCellPriority is the priority of moves sourced from a free cell with OrderNeeded: after
// columns holding cards below a Ten.
const freeCellPriority = 10

// Order sorts moves, in place, according to the ordering, and returns the same slice. The sort is
// stable: moves with the same priority stay in the order they were generated.
//
// previousColumn is the source tableau column of the move that led to gs, or NoPreviousColumn.
func (o Ordering) Order(gs *GameState, moves []Move, previousColumn int) []Move {
	switch o {
	case OrderColumn:
		if previousColumn == NoPreviousColumn {
			return moves
		}
		slices.SortStableFunc(moves, func(a, b Move) int {
			return columnPreference(a, previousColumn) - columnPreference(b, previousColumn)
		})
	case OrderNeeded:
		var columnMin [NumColumns]int
		for col := range columnMin {
			columnMin[col] = int(ColumnMinRank(gs, col))
		}
		priority := func(m Move) int {
			if col := m.SourceColumn(); col >= 0 {
				return columnMin[col]
			}
			return freeCellPriority
		}
		slices.SortStableFunc(moves, func(a, b Move) int {
			if pa, pb := priority(a), priority(b); pa != pb {
				return pa - pb
			}
			return columnPreference(a, previousColumn) - columnPreference(b, previousColumn)
		})
	}
	return moves
}

// columnPreference is 0 for moves from previousColumn, 1 otherwise.
func columnPreference(m Move, previousColumn int) int {
	if previousColumn != NoPreviousColumn && m.SourceColumn() == previousColumn {
		return 0
	}
	return 1
}
