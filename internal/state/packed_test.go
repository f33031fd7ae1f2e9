package state_test

import (
	"testing"

	. "github.com/janpfeifer/freecellGo/internal/state"
	. "github.com/janpfeifer/freecellGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpack(t *testing.T) {
	for _, seed := range []int{1, 2, 617, 11982, 32000} {
		gs, err := NewDeal(seed)
		require.NoError(t, err)
		// Fill a few free cells.
		for range 3 {
			moves := gs.AvailableMoves(nil)
			require.NotEmpty(t, moves)
			require.NoError(t, gs.Execute(moves[len(moves)-1]))
		}

		p := Pack(gs)
		assert.Equal(t, p, Pack(gs), "encoding must be deterministic")
		unpacked, err := Unpack(p)
		require.NoErrorf(t, err, "deal #%d", seed)
		assert.Truef(t, unpacked.Equal(gs), "deal #%d: Unpack(Pack(s)) != s", seed)
		assert.Equal(t, p, Pack(unpacked))

		// Canonical encoding is idempotent.
		c := PackCanonical(gs)
		canonical, err := Unpack(c)
		require.NoError(t, err)
		assert.Equal(t, c, PackCanonical(canonical))
		assert.Equal(t, c, Pack(canonical), "a canonical state packs the same in raw mode")
	}

	gs := NearlyWon()
	unpacked, err := Unpack(Pack(gs))
	require.NoError(t, err)
	assert.True(t, unpacked.Equal(gs))
	assert.Len(t, Pack(gs).String(), 2*PackedStateSize)
}

func TestPackCanonical(t *testing.T) {
	// Free cell permutations.
	a := Deadlock()
	b := Deadlock()
	b.FreeCells[0], b.FreeCells[3] = b.FreeCells[3], b.FreeCells[0]
	b.FreeCells[1], b.FreeCells[2] = b.FreeCells[2], b.FreeCells[1]
	assert.Equal(t, PackCanonical(a), PackCanonical(b))
	assert.NotEqual(t, Pack(a), Pack(b))

	// Empty free cells in different slots.
	a = NearlyWon()
	b = NearlyWon()
	require.NoError(t, a.Execute(TableauToFreeCell(0, 0)))
	require.NoError(t, b.Execute(TableauToFreeCell(0, 2)))
	assert.Equal(t, PackCanonical(a), PackCanonical(b))
	assert.NotEqual(t, Pack(a), Pack(b))

	// Foundation pile permutations.
	a = BuildState(Layout{
		Foundations: []string{"AH", "--", "2C", "--"},
		Columns:     [][]string{{"AD"}},
	})
	b = BuildState(Layout{
		Foundations: []string{"2C", "AH", "--", "--"},
		Columns:     [][]string{{"AD"}},
	})
	assert.Equal(t, PackCanonical(a), PackCanonical(b))
	assert.NotEqual(t, Pack(a), Pack(b))

	// Starting the same suit on different piles.
	a = BuildState(Layout{Columns: [][]string{{"AD"}}})
	b = a.Clone()
	require.NoError(t, a.Execute(TableauToFoundation(0, 0)))
	require.NoError(t, b.Execute(TableauToFoundation(0, 3)))
	assert.Equal(t, PackCanonical(a), PackCanonical(b))
	assert.NotEqual(t, Pack(a), Pack(b))

	// Tableau columns are never reordered.
	gs, err := NewDeal(1)
	require.NoError(t, err)
	swapped := gs.Clone()
	swapped.Tableau[0], swapped.Tableau[1] = swapped.Tableau[1], swapped.Tableau[0]
	assert.NotEqual(t, PackCanonical(gs), PackCanonical(swapped))
	assert.NotEqual(t, Pack(gs), Pack(swapped))
}

func TestUnpackMalformed(t *testing.T) {
	// All zeros: an empty layout, not a full deck.
	_, err := Unpack(PackedState{})
	assert.Error(t, err)

	var p PackedState
	for ii := range p {
		p[ii] = 0xFF
	}
	_, err = Unpack(p)
	assert.Error(t, err)

	// Non-zero padding after the tableau: the last byte holds the final bits of the last card id.
	gs := NearlyWon()
	p = Pack(gs)
	p[PackedStateSize-1] |= 1
	_, err = Unpack(p)
	assert.Error(t, err)
}

func TestParsePackedState(t *testing.T) {
	gs, err := NewDeal(617)
	require.NoError(t, err)
	for _, p := range []PackedState{Pack(gs), PackCanonical(gs)} {
		parsed, err := ParsePackedState(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
		unpacked, err := UnpackString(p.String())
		require.NoError(t, err)
		assert.True(t, unpacked.Equal(gs))
	}

	for _, s := range []string{"", "zz", "00ff", Pack(gs).String() + "00"} {
		_, err = ParsePackedState(s)
		assert.Errorf(t, err, "%q should fail to parse", s)
	}
	_, err = UnpackString(PackedState{}.String())
	assert.Error(t, err, "an empty layout is not a full deck")
}
