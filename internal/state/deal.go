package state

import (
	"github.com/pkg/errors"
)

// MaxSeed is the largest deal number accepted by NewDeal.
const MaxSeed = 1<<31 - 1

// msRand is the linear congruential generator of the Microsoft C runtime, used by
// Microsoft Windows FreeCell to shuffle the deck.
type msRand struct {
	state uint32
}

func (r *msRand) next() uint32 {
	r.state = (r.state*214013 + 2531011) & 0x7FFFFFFF
	return r.state >> 16
}

// NewDeal returns the layout of Microsoft FreeCell deal number seed. Deal numbers start at 1.
//
// The deck is ordered by rank and then suit (A♣ A♦ A♥ A♠ 2♣ ...), shuffled from the end and dealt
// from the end of the deck, one card per column in turn.
func NewDeal(seed int) (*GameState, error) {
	if seed < 1 || seed > MaxSeed {
		return nil, errors.Errorf("invalid deal number %d, it must be between 1 and %d", seed, MaxSeed)
	}
	var deck [NumCards]Card
	for ii := range deck {
		deck[ii] = NewCard(Rank(ii/NumSuits+1), Suit(ii%NumSuits))
	}
	rng := &msRand{state: uint32(seed)}
	for ii := NumCards - 1; ii > 0; ii-- {
		jj := int(rng.next()) % (ii + 1)
		deck[ii], deck[jj] = deck[jj], deck[ii]
	}

	gs := NewGameState()
	for col := range gs.Tableau {
		gs.Tableau[col] = make([]Card, 0, NumCards/NumColumns+NumRanks)
	}
	for ii := range NumCards {
		col := ii % NumColumns
		gs.Tableau[col] = append(gs.Tableau[col], deck[NumCards-1-ii])
	}
	return gs, nil
}
