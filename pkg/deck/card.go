package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Suit represents a Spanish card suit
type Suit string

// suit constants
const (
	Espadas Suit = "espadas"
	Bastos  Suit = "bastos"
	Oros    Suit = "oros"
	Copas   Suit = "copas"
)

// Suits is the canonical suit order used to build a deck
var Suits = []Suit{Espadas, Bastos, Oros, Copas}

// Ranks are the ten ranks of the Spanish deck. There are no eights or nines.
var Ranks = []int{1, 2, 3, 4, 5, 6, 7, 10, 11, 12}

// face cards
const (
	Sota    = 10
	Caballo = 11
	Rey     = 12
)

// Card is an individual playing card
// Identity is the (suit, rank) pair; ID is derived from it.
type Card struct {
	ID   string `json:"id"`
	Suit Suit   `json:"suit"`
	Rank int    `json:"rank"`
}

// NewCard returns a card with its ID populated
func NewCard(rank int, suit Suit) Card {
	return Card{
		ID:   cardID(rank, suit),
		Suit: suit,
		Rank: rank,
	}
}

func cardID(rank int, suit Suit) string {
	return strconv.Itoa(rank) + suitLetter(suit)
}

func suitLetter(suit Suit) string {
	switch suit {
	case Espadas:
		return "e"
	case Bastos:
		return "b"
	case Oros:
		return "o"
	case Copas:
		return "c"
	}

	panic(fmt.Sprintf("unknown suit: %s", suit))
}

func (c Card) String() string {
	return c.ID
}

// Equal returns true if the cards are equal (matches suit and rank)
func (c Card) Equal(card Card) bool {
	return c.Suit == card.Suit && c.Rank == card.Rank
}

// IsValid returns true if the card exists in the Spanish deck
func (c Card) IsValid() bool {
	validSuit := false
	for _, s := range Suits {
		if s == c.Suit {
			validSuit = true
			break
		}
	}

	if !validSuit {
		return false
	}

	for _, r := range Ranks {
		if r == c.Rank {
			return true
		}
	}

	return false
}

var cardRx = regexp.MustCompile(`(?i)^([1-7]|1[0-2])([eboc])\z`)

// CardFromString returns a Card from the string.
// The string must be in the format of <rank><suit> where suit is one of [eboc]
func CardFromString(s string) (Card, error) {
	match := cardRx.FindStringSubmatch(s)
	if match == nil {
		return Card{}, fmt.Errorf("could not parse card: %q", s)
	}

	rank, err := strconv.Atoi(match[1])
	if err != nil {
		return Card{}, fmt.Errorf("could not parse card %q: %w", s, err)
	}

	var suit Suit
	switch strings.ToLower(match[2]) {
	case "e":
		suit = Espadas
	case "b":
		suit = Bastos
	case "o":
		suit = Oros
	case "c":
		suit = Copas
	}

	return NewCard(rank, suit), nil
}

// MustCardFromString is like CardFromString, but panics on an invalid string
func MustCardFromString(s string) Card {
	card, err := CardFromString(s)
	if err != nil {
		panic(err)
	}

	return card
}

// CardsFromString will return a slice of cards from a comma separated list
func CardsFromString(s string) []Card {
	if s == "" {
		return []Card{}
	}

	cardStrings := strings.Split(s, ",")
	cards := make([]Card, len(cardStrings))
	for i, card := range cardStrings {
		cards[i] = MustCardFromString(strings.TrimSpace(card))
	}

	return cards
}

// CardsToString will convert a slice of cards to a string in the format of 1e,7o,...
func CardsToString(cards []Card) string {
	c := make([]string, len(cards))
	for i, card := range cards {
		c[i] = card.ID
	}

	return strings.Join(c, ",")
}
