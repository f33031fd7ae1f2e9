package state

import (
	"github.com/pkg/errors"
)

// ErrInvalidMove is returned (wrapped with details) by Execute and Undo when the move cannot be
// applied to the current state. Use errors.Is to test for it.
var ErrInvalidMove = errors.New("invalid move")

// cardAt returns the card that would be taken from loc, or NoCard if there is none.
func (gs *GameState) cardAt(loc Location) Card {
	switch loc.Kind {
	case InTableau:
		return gs.TopCard(int(loc.Index))
	case InFreeCell:
		return gs.FreeCells[loc.Index]
	case InFoundation:
		return gs.Foundations[loc.Index]
	}
	return NoCard
}

// checkMove returns the card moved by m, or an error explaining why m is not valid.
func (gs *GameState) checkMove(m Move) (Card, error) {
	if m.CardCount != 1 {
		return NoCard, errors.Wrapf(ErrInvalidMove, "%s: only single card moves are supported, got %d cards", m, m.CardCount)
	}
	if !m.From.IsValid() || !m.To.IsValid() {
		return NoCard, errors.Wrapf(ErrInvalidMove, "%s: location out of range", m)
	}
	if m.From == m.To {
		return NoCard, errors.Wrapf(ErrInvalidMove, "%s: source and destination are the same", m)
	}
	if m.From.Kind == InFoundation {
		return NoCard, errors.Wrapf(ErrInvalidMove, "%s: cards can't be taken from the foundations", m)
	}
	card := gs.cardAt(m.From)
	if card == NoCard {
		return NoCard, errors.Wrapf(ErrInvalidMove, "%s: source is empty", m)
	}
	switch m.To.Kind {
	case InTableau:
		if !canMoveToTableau(card, gs.TopCard(int(m.To.Index))) {
			return NoCard, errors.Wrapf(ErrInvalidMove, "%s: %s can't be stacked on %s",
				m, card, gs.TopCard(int(m.To.Index)))
		}
	case InFreeCell:
		if gs.FreeCells[m.To.Index] != NoCard {
			return NoCard, errors.Wrapf(ErrInvalidMove, "%s: freecell is occupied by %s", m, gs.FreeCells[m.To.Index])
		}
	case InFoundation:
		if !canMoveToFoundation(card, gs.Foundations[m.To.Index]) {
			return NoCard, errors.Wrapf(ErrInvalidMove, "%s: %s can't go on foundation with %s",
				m, card, gs.Foundations[m.To.Index])
		}
	}
	return card, nil
}

// IsValid returns whether the move can be executed on the current state.
func (gs *GameState) IsValid(m Move) bool {
	_, err := gs.checkMove(m)
	return err == nil
}

// Execute applies the move to the state, or returns an error wrapping ErrInvalidMove, in which
// case the state is left untouched.
func (gs *GameState) Execute(m Move) error {
	card, err := gs.checkMove(m)
	if err != nil {
		return err
	}
	gs.take(m.From)
	gs.place(m.To, card)
	return nil
}

// Undo reverts a move previously executed with Execute: the card on top of the move's destination is
// sent back to its source. It returns an error wrapping ErrInvalidMove if the state doesn't match
// what executing m would have left.
func (gs *GameState) Undo(m Move) error {
	if m.CardCount != 1 || !m.From.IsValid() || !m.To.IsValid() || m.From == m.To || m.From.Kind == InFoundation {
		return errors.Wrapf(ErrInvalidMove, "undo %s: malformed move", m)
	}
	card := gs.cardAt(m.To)
	if card == NoCard {
		return errors.Wrapf(ErrInvalidMove, "undo %s: destination is empty", m)
	}
	if m.From.Kind == InFreeCell && gs.FreeCells[m.From.Index] != NoCard {
		return errors.Wrapf(ErrInvalidMove, "undo %s: source freecell is occupied by %s", m, gs.FreeCells[m.From.Index])
	}
	gs.take(m.To)
	gs.place(m.From, card)
	return nil
}

// take removes the card from loc, which must not be empty.
func (gs *GameState) take(loc Location) {
	switch loc.Kind {
	case InTableau:
		col := gs.Tableau[loc.Index]
		gs.Tableau[loc.Index] = col[:len(col)-1]
	case InFreeCell:
		gs.FreeCells[loc.Index] = NoCard
	case InFoundation:
		top := gs.Foundations[loc.Index]
		if top.Rank() == Ace {
			gs.Foundations[loc.Index] = NoCard
		} else {
			gs.Foundations[loc.Index] = top - 1
		}
	}
}

// place puts card on loc, without checking the rules.
func (gs *GameState) place(loc Location, card Card) {
	switch loc.Kind {
	case InTableau:
		gs.Tableau[loc.Index] = append(gs.Tableau[loc.Index], card)
	case InFreeCell:
		gs.FreeCells[loc.Index] = card
	case InFoundation:
		gs.Foundations[loc.Index] = card
	}
}
