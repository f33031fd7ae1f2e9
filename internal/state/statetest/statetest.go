// Package statetest provides helper functions to create tests using FreeCell states.
package statetest

import (
	"strings"

	"github.com/gomlx/exceptions"
	. "github.com/janpfeifer/freecellGo/internal/state"
)

// Layout of a game given as card strings (see state.ParseCard). Columns list cards from the bottom
// to the top. Foundations list the top card of each pile, use "--" or "" for an empty pile.
type Layout struct {
	Foundations []string
	FreeCells   []string
	Columns     [][]string
}

// Cards parses a space separated list of cards, e.g. "AS 2H TD". It panics on invalid cards.
func Cards(list string) []Card {
	var cards []Card
	for _, s := range strings.Fields(list) {
		card, err := ParseCard(s)
		if err != nil {
			panic(err)
		}
		cards = append(cards, card)
	}
	return cards
}

func parse(s string) Card {
	if s == "" {
		return NoCard
	}
	card, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return card
}

// BuildState from the layout. It panics if the layout is malformed, it doesn't check that it holds a
// full deck: use GameState.Validate for that.
func BuildState(layout Layout) *GameState {
	gs := NewGameState()
	if len(layout.Foundations) > NumFoundations || len(layout.FreeCells) > NumFreeCells ||
		len(layout.Columns) > NumColumns {
		exceptions.Panicf("layout has too many foundations, freecells or columns: %+v", layout)
	}
	for pile, s := range layout.Foundations {
		gs.Foundations[pile] = parse(s)
	}
	for cell, s := range layout.FreeCells {
		gs.FreeCells[cell] = parse(s)
	}
	for col, cards := range layout.Columns {
		for _, s := range cards {
			gs.Tableau[col] = append(gs.Tableau[col], parse(s))
		}
	}
	return gs
}

// Deadlock returns a valid state with no legal moves: free cells are full, there are no empty
// columns, no card can be stacked and no ace is reachable.
func Deadlock() *GameState {
	return BuildState(Layout{
		Foundations: []string{"KC", "KD", "--", "--"},
		FreeCells:   []string{"KH", "KS", "QH", "QS"},
		Columns: [][]string{
			{"AS", "2H"},
			{"AH", "2S"},
			{"3H", "3S", "5H"},
			{"4H", "4S", "5S"},
			{"6H", "6S", "8H"},
			{"7H", "7S", "8S"},
			{"9H", "9S", "JH"},
			{"TH", "TS", "JS"},
		},
	})
}

// NearlyWon returns a valid state a few moves away from the win: all foundations are at the Jack,
// and each Queen is covered by a King of another suit.
func NearlyWon() *GameState {
	return BuildState(Layout{
		Foundations: []string{"JC", "JD", "JH", "JS"},
		Columns: [][]string{
			{"QH", "KC"},
			{"QC", "KD"},
			{"QS", "KH"},
			{"QD", "KS"},
		},
	})
}
