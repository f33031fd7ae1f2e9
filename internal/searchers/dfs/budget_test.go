package dfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBudgetClock(t *testing.T) {
	r := &search{
		Searcher:      &Searcher{},
		deadline:      time.Now().Add(-time.Second),
		nextTimeCheck: 1,
	}
	r.stats.Nodes = 1
	require.ErrorIs(t, r.checkBudget(), errTimeout, "the clock is checked at the root")

	// Cache hits return before checkBudget, so the node count may skip any multiple of
	// timeCheckEvery: the clock must still be checked once the threshold is passed.
	r.nextTimeCheck = timeCheckEvery
	r.stats.Nodes = timeCheckEvery + 44
	require.ErrorIs(t, r.checkBudget(), errTimeout)
	assert.EqualValues(t, 2*timeCheckEvery+44, r.nextTimeCheck)

	// Before the next threshold the clock is not read.
	r.stats.Nodes++
	assert.NoError(t, r.checkBudget())

	// No deadline.
	r.deadline = time.Time{}
	r.stats.Nodes = 10 * timeCheckEvery
	assert.NoError(t, r.checkBudget())
}
