package state

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Suit of a card. The order matches the one used by the Microsoft deal generator.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades

	// NumSuits is also the number of foundation piles.
	NumSuits = 4
)

// Suits enumerates all suits in order.
var Suits = [NumSuits]Suit{Clubs, Diamonds, Hearts, Spades}

var (
	suitLetters = [NumSuits]string{"C", "D", "H", "S"}
	suitSymbols = [NumSuits]string{"♣", "♦", "♥", "♠"}
	suitNames   = [NumSuits]string{"Clubs", "Diamonds", "Hearts", "Spades"}
)

// String returns the suit name.
func (s Suit) String() string {
	if s >= NumSuits {
		return fmt.Sprintf("Suit(%d)", uint8(s))
	}
	return suitNames[s]
}

// Symbol returns the unicode symbol of the suit.
func (s Suit) Symbol() string {
	return suitSymbols[s]
}

// IsRed returns whether the suit is Diamonds or Hearts.
func (s Suit) IsRed() bool {
	return s == Diamonds || s == Hearts
}

// Rank of a card, from Ace (1) to King (13).
type Rank uint8

const (
	NoRank Rank = 0
	Ace    Rank = 1
	Jack   Rank = 11
	Queen  Rank = 12
	King   Rank = 13

	// NumRanks per suit.
	NumRanks = 13
)

var rankLetters = "-A23456789TJQK"

// String returns the one letter representation of the rank ("A", "2", ..., "T", "J", "Q", "K").
func (r Rank) String() string {
	if r > King {
		return fmt.Sprintf("Rank(%d)", uint8(r))
	}
	return rankLetters[r : r+1]
}

// Card is encoded as suit*13+rank, so valid cards go from 1 to 52. NoCard (0) is used for empty slots.
type Card uint8

const (
	NoCard Card = 0

	// NumCards in a deck.
	NumCards = 52
)

// NewCard returns the card with the given rank and suit. It panics on invalid values.
func NewCard(rank Rank, suit Suit) Card {
	if rank < Ace || rank > King || suit >= NumSuits {
		exceptions.Panicf("invalid card rank=%d, suit=%d", rank, suit)
	}
	return Card(uint8(suit)*NumRanks + uint8(rank))
}

// IsValid returns whether c is one of the 52 cards.
func (c Card) IsValid() bool {
	return c >= 1 && c <= NumCards
}

// Rank of the card.
func (c Card) Rank() Rank {
	if c == NoCard {
		return NoRank
	}
	return Rank((uint8(c)-1)%NumRanks + 1)
}

// Suit of the card. Undefined for NoCard.
func (c Card) Suit() Suit {
	return Suit((uint8(c) - 1) / NumRanks)
}

// IsRed returns whether the card is a Diamond or a Heart.
func (c Card) IsRed() bool {
	return c.Suit().IsRed()
}

// String returns a 2-letter representation, e.g. "TS" for the ten of spades, or "--" for NoCard.
func (c Card) String() string {
	if c == NoCard {
		return "--"
	}
	if !c.IsValid() {
		return fmt.Sprintf("Card(%d)", uint8(c))
	}
	return c.Rank().String() + suitLetters[c.Suit()]
}

// Pretty returns the card using the suit symbol, e.g. "T♠".
func (c Card) Pretty() string {
	if c == NoCard {
		return "  "
	}
	return c.Rank().String() + c.Suit().Symbol()
}

// CanStackOn returns whether c can be placed on top of target in a tableau column:
// one rank lower and alternating colours.
func (c Card) CanStackOn(target Card) bool {
	return c.Rank()+1 == target.Rank() && c.IsRed() != target.IsRed()
}

// ParseCard parses the 2-letter representation used by Card.String. Suit symbols are also accepted,
// and "10" can be used for tens.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.Replace(s, "10", "T", 1)
	if s == "--" {
		return NoCard, nil
	}
	if len(s) < 2 {
		return NoCard, errors.Errorf("invalid card %q", s)
	}
	rankIdx := strings.IndexByte(rankLetters, s[0])
	if rankIdx <= 0 {
		return NoCard, errors.Errorf("invalid rank in card %q", s)
	}
	suitStr := s[1:]
	for suit := range Suits {
		if suitStr == suitLetters[suit] || suitStr == suitSymbols[suit] {
			return NewCard(Rank(rankIdx), Suit(suit)), nil
		}
	}
	return NoCard, errors.Errorf("invalid suit in card %q", s)
}
