package state

import (
	"encoding/hex"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// PackedStateSize is the number of bytes of a PackedState.
const PackedStateSize = 50

const (
	suitBits   = 2
	rankBits   = 4
	cardBits   = 6
	lengthBits = 5

	// maxColumnLength that can be represented with lengthBits.
	maxColumnLength = 1<<lengthBits - 1
)

// PackedState is a lossless fixed-size encoding of a GameState. It is comparable, so it can be used
// as a map key.
//
// Layout, most significant bits first:
//
//   - 4 foundation slots: 2 bits suit, 4 bits rank (0 for an empty pile);
//   - 4 freecells: 6 bits card id (0 for empty);
//   - 8 column lengths: 5 bits each;
//   - 52 tableau card ids: 6 bits each, columns concatenated, zero padded.
type PackedState [PackedStateSize]byte

// String returns the hex representation.
func (p PackedState) String() string {
	return hex.EncodeToString(p[:])
}

// ParsePackedState parses the hex representation returned by PackedState.String.
func ParsePackedState(s string) (p PackedState, err error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return p, errors.Wrapf(err, "invalid packed state %q", s)
	}
	if len(data) != PackedStateSize {
		return p, errors.Errorf("packed state must have %d bytes, got %d", PackedStateSize, len(data))
	}
	copy(p[:], data)
	return p, nil
}

// UnpackString parses the hex representation of a packed state and rebuilds the GameState, see Unpack.
func UnpackString(s string) (*GameState, error) {
	p, err := ParsePackedState(s)
	if err != nil {
		return nil, err
	}
	return Unpack(p)
}

type bitWriter struct {
	buf *PackedState
	pos int
}

func (w *bitWriter) write(value uint8, numBits int) {
	for bit := numBits - 1; bit >= 0; bit-- {
		if value&(1<<bit) != 0 {
			w.buf[w.pos/8] |= 0x80 >> (w.pos % 8)
		}
		w.pos++
	}
}

type bitReader struct {
	buf *PackedState
	pos int
}

func (r *bitReader) read(numBits int) (value uint8) {
	for range numBits {
		value <<= 1
		if r.buf[r.pos/8]&(0x80>>(r.pos%8)) != 0 {
			value |= 1
		}
		r.pos++
	}
	return
}

// Pack encodes the state as is: freecells and foundation piles in their slot order.
func Pack(gs *GameState) PackedState {
	return pack(gs, false)
}

// PackCanonical encodes the state so that layouts differing only in which freecell holds which card,
// or which foundation pile holds which suit, encode identically: freecells are sorted ascending
// with empty slots last, and foundation slot i holds suit i. Tableau columns are never reordered.
func PackCanonical(gs *GameState) PackedState {
	return pack(gs, true)
}

func pack(gs *GameState, canonical bool) (p PackedState) {
	w := &bitWriter{buf: &p}

	// Foundations.
	if canonical {
		for _, suit := range Suits {
			rank := gs.FoundationRank(suit)
			if rank == NoRank {
				w.write(0, suitBits+rankBits)
				continue
			}
			w.write(uint8(suit), suitBits)
			w.write(uint8(rank), rankBits)
		}
	} else {
		for _, top := range gs.Foundations {
			if top == NoCard {
				w.write(0, suitBits+rankBits)
				continue
			}
			w.write(uint8(top.Suit()), suitBits)
			w.write(uint8(top.Rank()), rankBits)
		}
	}

	// FreeCells.
	cells := gs.FreeCells
	if canonical {
		slices.SortFunc(cells[:], func(a, b Card) int {
			switch {
			case a == b:
				return 0
			case a == NoCard:
				return 1
			case b == NoCard:
				return -1
			}
			return int(a) - int(b)
		})
	}
	for _, card := range cells {
		w.write(uint8(card), cardBits)
	}

	// Tableau.
	for _, cards := range gs.Tableau {
		if len(cards) > maxColumnLength {
			exceptions.Panicf("tableau column with %d cards can't be packed", len(cards))
		}
		w.write(uint8(len(cards)), lengthBits)
	}
	for _, cards := range gs.Tableau {
		for _, card := range cards {
			w.write(uint8(card), cardBits)
		}
	}
	return
}

// Unpack rebuilds the GameState encoded in p. It returns an error if p is not a valid encoding of a
// complete deck.
func Unpack(p PackedState) (*GameState, error) {
	gs := NewGameState()
	r := &bitReader{buf: &p}
	for pile := range gs.Foundations {
		suit := Suit(r.read(suitBits))
		rank := Rank(r.read(rankBits))
		if rank > King {
			return nil, errors.Errorf("invalid rank %d in foundation %d", rank, pile)
		}
		if rank == NoRank {
			if suit != 0 {
				return nil, errors.Errorf("empty foundation %d with suit %s", pile, suit)
			}
			continue
		}
		if gs.FoundationFor(suit) >= 0 {
			return nil, errors.Errorf("suit %s in more than one foundation", suit)
		}
		gs.Foundations[pile] = NewCard(rank, suit)
	}
	for cell := range gs.FreeCells {
		card := Card(r.read(cardBits))
		if card != NoCard && !card.IsValid() {
			return nil, errors.Errorf("invalid card id %d in freecell %d", card, cell)
		}
		gs.FreeCells[cell] = card
	}
	var lengths [NumColumns]int
	total := 0
	for col := range lengths {
		lengths[col] = int(r.read(lengthBits))
		total += lengths[col]
	}
	if total > NumCards {
		return nil, errors.Errorf("tableau columns hold %d cards, more than a deck", total)
	}
	for col, length := range lengths {
		if length == 0 {
			continue
		}
		gs.Tableau[col] = make([]Card, length, length+NumRanks)
		for ii := range length {
			card := Card(r.read(cardBits))
			if !card.IsValid() {
				return nil, errors.Errorf("invalid card id %d in tableau column %d", card, col)
			}
			gs.Tableau[col][ii] = card
		}
	}
	for range NumCards - total {
		if r.read(cardBits) != 0 {
			return nil, errors.New("non-zero padding after the tableau cards")
		}
	}
	if err := gs.Validate(); err != nil {
		return nil, errors.WithMessage(err, "packed state doesn't hold a valid deck")
	}
	return gs, nil
}
