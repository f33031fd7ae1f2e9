// Package state implements the FreeCell rules: cards, the game state, move generation, execution and
// undo, the Microsoft deal generator and the packed (hashable) encoding of a state used by the solvers.
package state

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

const (
	// NumColumns in the tableau.
	NumColumns = 8

	// NumFreeCells available to park single cards.
	NumFreeCells = 4

	// NumFoundations piles, one per suit, built from Ace to King.
	NumFoundations = NumSuits
)

// GameState of a FreeCell match. It is mutated in place by Execute and Undo.
//
// Foundation piles only ever hold consecutive ranks of one suit starting at the Ace, so only the top
// card of each pile is stored.
type GameState struct {
	// Tableau columns, with the bottom card first and the playable (top) card last.
	Tableau [NumColumns][]Card

	// FreeCells hold at most one card each, NoCard if empty.
	FreeCells [NumFreeCells]Card

	// Foundations holds the top card of each pile, NoCard if empty.
	// Piles are not bound to a suit: any Ace can start any empty pile.
	Foundations [NumFoundations]Card
}

// NewGameState returns an empty game state: no cards anywhere.
func NewGameState() *GameState {
	return &GameState{}
}

// Clone returns a deep copy of the state.
func (gs *GameState) Clone() *GameState {
	newGS := &GameState{
		FreeCells:   gs.FreeCells,
		Foundations: gs.Foundations,
	}
	for col, cards := range gs.Tableau {
		if len(cards) > 0 {
			newGS.Tableau[col] = append(make([]Card, 0, len(cards)+NumRanks), cards...)
		}
	}
	return newGS
}

// Equal returns whether both states hold the same cards in the same places.
func (gs *GameState) Equal(other *GameState) bool {
	if gs.FreeCells != other.FreeCells || gs.Foundations != other.Foundations {
		return false
	}
	for col := range gs.Tableau {
		if len(gs.Tableau[col]) != len(other.Tableau[col]) {
			return false
		}
		for ii, card := range gs.Tableau[col] {
			if other.Tableau[col][ii] != card {
				return false
			}
		}
	}
	return true
}

// TopCard of the given tableau column, or NoCard if it is empty.
func (gs *GameState) TopCard(col int) Card {
	if col < 0 || col >= NumColumns {
		exceptions.Panicf("invalid tableau column %d", col)
	}
	cards := gs.Tableau[col]
	if len(cards) == 0 {
		return NoCard
	}
	return cards[len(cards)-1]
}

// FoundationPile returns the cards in the given foundation pile, from the Ace up.
func (gs *GameState) FoundationPile(pile int) []Card {
	top := gs.Foundations[pile]
	if top == NoCard {
		return nil
	}
	cards := make([]Card, 0, top.Rank())
	for rank := Ace; rank <= top.Rank(); rank++ {
		cards = append(cards, NewCard(rank, top.Suit()))
	}
	return cards
}

// FoundationFor returns the pile holding the given suit, or -1 if the suit hasn't been started.
func (gs *GameState) FoundationFor(suit Suit) int {
	for pile, top := range gs.Foundations {
		if top != NoCard && top.Suit() == suit {
			return pile
		}
	}
	return -1
}

// FoundationRank returns the rank on top of the foundation for the given suit, NoRank if not started.
func (gs *GameState) FoundationRank(suit Suit) Rank {
	if pile := gs.FoundationFor(suit); pile >= 0 {
		return gs.Foundations[pile].Rank()
	}
	return NoRank
}

// NumEmptyFreeCells returns how many free cells are available.
func (gs *GameState) NumEmptyFreeCells() (count int) {
	for _, card := range gs.FreeCells {
		if card == NoCard {
			count++
		}
	}
	return
}

// NumEmptyColumns returns how many tableau columns are empty.
func (gs *GameState) NumEmptyColumns() (count int) {
	for _, cards := range gs.Tableau {
		if len(cards) == 0 {
			count++
		}
	}
	return
}

// CardsInFoundations returns the total number of cards already moved to the foundations.
func (gs *GameState) CardsInFoundations() (count int) {
	for _, top := range gs.Foundations {
		count += int(top.Rank())
	}
	return
}

// IsWon returns whether all 52 cards are in the foundations.
func (gs *GameState) IsWon() bool {
	for _, top := range gs.Foundations {
		if top.Rank() != King {
			return false
		}
	}
	return true
}

// Validate checks that each of the 52 cards is present exactly once and that foundations hold
// distinct suits. It returns nil if the state is valid.
func (gs *GameState) Validate() error {
	var seen [NumCards + 1]bool
	see := func(card Card, where string) error {
		if !card.IsValid() {
			return errors.Errorf("invalid card %s in %s", card, where)
		}
		if seen[card] {
			return errors.Errorf("card %s appears more than once (again in %s)", card, where)
		}
		seen[card] = true
		return nil
	}
	for col, cards := range gs.Tableau {
		for _, card := range cards {
			if err := see(card, fmt.Sprintf("tableau column %d", col)); err != nil {
				return err
			}
		}
	}
	for cell, card := range gs.FreeCells {
		if card == NoCard {
			continue
		}
		if err := see(card, fmt.Sprintf("freecell %d", cell)); err != nil {
			return err
		}
	}
	for pile := range gs.Foundations {
		for _, card := range gs.FoundationPile(pile) {
			if err := see(card, fmt.Sprintf("foundation %d", pile)); err != nil {
				return err
			}
		}
	}
	for card := Card(1); card <= NumCards; card++ {
		if !seen[card] {
			return errors.Errorf("card %s is missing", card)
		}
	}
	return nil
}

// String returns a multi-line plain-text representation of the state, see also ui/cli for
// a prettier version.
func (gs *GameState) String() string {
	var sb strings.Builder
	sb.WriteString("Foundations:")
	for _, top := range gs.Foundations {
		sb.WriteString(" " + top.String())
	}
	sb.WriteString("  FreeCells:")
	for _, card := range gs.FreeCells {
		sb.WriteString(" " + card.String())
	}
	sb.WriteString("\n")
	maxLen := 0
	for _, cards := range gs.Tableau {
		maxLen = max(maxLen, len(cards))
	}
	for row := range maxLen {
		for col, cards := range gs.Tableau {
			if col > 0 {
				sb.WriteString(" ")
			}
			if row < len(cards) {
				sb.WriteString(cards[row].String())
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
