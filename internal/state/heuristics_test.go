package state_test

import (
	"testing"

	. "github.com/janpfeifer/freecellGo/internal/state"
	. "github.com/janpfeifer/freecellGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
)

func TestInversions(t *testing.T) {
	assert.Equal(t, 0, Inversions(NewGameState()))
	gs := BuildState(Layout{Columns: [][]string{
		{"KS", "QS", "JS"}, // Sorted.
		{"KH", "JH", "QH"}, // One inversion.
		{"JD", "KD", "QD"}, // One inversion.
		{"AC", "2C", "3C"}, // Two inversions.
	}})
	assert.Equal(t, 4, Inversions(gs))
}

func TestNeeded(t *testing.T) {
	gs := NearlyWon()
	assert.Equal(t, [NumSuits]Rank{Queen, Queen, Queen, Queen}, NextNeeded(gs))
	assert.Equal(t, Queen, LowestNeeded(gs))
	assert.Equal(t, Queen, ColumnMinRank(gs, 0))
	assert.Equal(t, King+1, ColumnMinRank(gs, 7))

	gs = BuildState(Layout{
		Foundations: []string{"3H", "--", "AS", "--"},
		Columns:     [][]string{{"KD", "4H", "AC"}},
	})
	assert.Equal(t, [NumSuits]Rank{Ace, Ace, 4, 2}, NextNeeded(gs))
	assert.Equal(t, Ace, LowestNeeded(gs))
	assert.Equal(t, Ace, ColumnMinRank(gs, 0))
}
