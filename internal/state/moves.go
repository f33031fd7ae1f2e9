package state

import (
	"fmt"

	"github.com/pkg/errors"
)

// LocationKind is where in the layout a card sits.
type LocationKind uint8

const (
	InTableau LocationKind = iota
	InFreeCell
	InFoundation
)

var locationKindNames = []string{"tableau", "freecell", "foundation"}

// String implements fmt.Stringer.
func (k LocationKind) String() string {
	if int(k) < len(locationKindNames) {
		return locationKindNames[k]
	}
	return fmt.Sprintf("LocationKind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler, used when serializing moves to JSON.
func (k LocationKind) MarshalText() ([]byte, error) {
	if int(k) >= len(locationKindNames) {
		return nil, errors.Errorf("invalid location kind %d", k)
	}
	return []byte(locationKindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *LocationKind) UnmarshalText(text []byte) error {
	for ii, name := range locationKindNames {
		if name == string(text) {
			*k = LocationKind(ii)
			return nil
		}
	}
	return errors.Errorf("unknown location kind %q", text)
}

// Location of a slot in the layout: a tableau column, a freecell or a foundation pile.
type Location struct {
	Kind  LocationKind `json:"kind"`
	Index uint8        `json:"index"`
}

// String returns a short representation: "T3" for column 3, "C0" for freecell 0, "F1" for foundation 1.
func (loc Location) String() string {
	switch loc.Kind {
	case InTableau:
		return fmt.Sprintf("T%d", loc.Index)
	case InFreeCell:
		return fmt.Sprintf("C%d", loc.Index)
	case InFoundation:
		return fmt.Sprintf("F%d", loc.Index)
	}
	return fmt.Sprintf("?%d", loc.Index)
}

// IsValid checks the index is within bounds for the location kind.
func (loc Location) IsValid() bool {
	switch loc.Kind {
	case InTableau:
		return loc.Index < NumColumns
	case InFreeCell:
		return loc.Index < NumFreeCells
	case InFoundation:
		return loc.Index < NumFoundations
	}
	return false
}

// Move transfers CardCount cards from one location to another. Only single card moves are
// generated and accepted by this engine.
type Move struct {
	From      Location `json:"source"`
	To        Location `json:"destination"`
	CardCount uint8    `json:"card_count"`
}

// TableauToFoundation creates the corresponding Move.
func TableauToFoundation(col, pile int) Move {
	return Move{From: Location{InTableau, uint8(col)}, To: Location{InFoundation, uint8(pile)}, CardCount: 1}
}

// TableauToFreeCell creates the corresponding Move.
func TableauToFreeCell(col, cell int) Move {
	return Move{From: Location{InTableau, uint8(col)}, To: Location{InFreeCell, uint8(cell)}, CardCount: 1}
}

// TableauToTableau creates the corresponding single card Move.
func TableauToTableau(fromCol, toCol int) Move {
	return Move{From: Location{InTableau, uint8(fromCol)}, To: Location{InTableau, uint8(toCol)}, CardCount: 1}
}

// FreeCellToTableau creates the corresponding Move.
func FreeCellToTableau(cell, col int) Move {
	return Move{From: Location{InFreeCell, uint8(cell)}, To: Location{InTableau, uint8(col)}, CardCount: 1}
}

// FreeCellToFoundation creates the corresponding Move.
func FreeCellToFoundation(cell, pile int) Move {
	return Move{From: Location{InFreeCell, uint8(cell)}, To: Location{InFoundation, uint8(pile)}, CardCount: 1}
}

// String implements fmt.Stringer.
func (m Move) String() string {
	if m.CardCount > 1 {
		return fmt.Sprintf("%s->%s(x%d)", m.From, m.To, m.CardCount)
	}
	return fmt.Sprintf("%s->%s", m.From, m.To)
}

// SourceColumn returns the tableau column the move takes its card from, or -1 if the source is not
// in the tableau.
func (m Move) SourceColumn() int {
	if m.From.Kind != InTableau {
		return -1
	}
	return int(m.From.Index)
}

// IsFoundationMove returns whether the move sends a card to a foundation.
func (m Move) IsFoundationMove() bool {
	return m.To.Kind == InFoundation
}

// AvailableMoves appends to buf all the valid moves from the current state, and returns the
// extended slice. Pass a nil buf to allocate a new one.
//
// Moves are generated in a fixed order: tableau to foundation, freecell to foundation, freecell
// to tableau, tableau to tableau and finally tableau to freecell.
func (gs *GameState) AvailableMoves(buf []Move) []Move {
	moves := buf
	for col := range NumColumns {
		card := gs.TopCard(col)
		if card == NoCard {
			continue
		}
		for pile := range NumFoundations {
			if canMoveToFoundation(card, gs.Foundations[pile]) {
				moves = append(moves, TableauToFoundation(col, pile))
			}
		}
	}
	for cell, card := range gs.FreeCells {
		if card == NoCard {
			continue
		}
		for pile := range NumFoundations {
			if canMoveToFoundation(card, gs.Foundations[pile]) {
				moves = append(moves, FreeCellToFoundation(cell, pile))
			}
		}
	}
	for cell, card := range gs.FreeCells {
		if card == NoCard {
			continue
		}
		for col := range NumColumns {
			if canMoveToTableau(card, gs.TopCard(col)) {
				moves = append(moves, FreeCellToTableau(cell, col))
			}
		}
	}
	for fromCol := range NumColumns {
		card := gs.TopCard(fromCol)
		if card == NoCard {
			continue
		}
		for toCol := range NumColumns {
			if fromCol != toCol && canMoveToTableau(card, gs.TopCard(toCol)) {
				moves = append(moves, TableauToTableau(fromCol, toCol))
			}
		}
	}
	for col := range NumColumns {
		if gs.TopCard(col) == NoCard {
			continue
		}
		for cell, slot := range gs.FreeCells {
			if slot == NoCard {
				moves = append(moves, TableauToFreeCell(col, cell))
			}
		}
	}
	return moves
}

// canMoveToFoundation: Ace on an empty pile, otherwise the next rank of the same suit.
func canMoveToFoundation(card, top Card) bool {
	if top == NoCard {
		return card.Rank() == Ace
	}
	return card.Suit() == top.Suit() && card.Rank() == top.Rank()+1
}

// canMoveToTableau: any card on an empty column, otherwise alternating colours in descending rank.
func canMoveToTableau(card, top Card) bool {
	return top == NoCard || card.CanStackOn(top)
}
