package game

import (
	"fmt"
	"math/rand"
)

// DefaultSymbols is the card face alphabet used when none is configured.
var DefaultSymbols = []string{"🍎", "🍌", "🍇", "🍓", "🍒", "🍍", "🥭", "🍊", "🥝", "🥧"}

// DefaultPairCount is the number of pairs dealt when none is configured.
const DefaultPairCount = 10

// Card represents a single card on the board.
type Card struct {
	ID      int
	Value   string
	FaceUp  bool
	Matched bool
}

// Board is the ordered sequence of cards for one round.
type Board []Card

// GenerateDeck deals the first pairCount symbols of alphabet twice each and
// shuffles them. Cards keep the id they were dealt with, so ids are unique in
// [0, 2*pairCount) but not ordered after the shuffle. A nil rng uses the
// package-level source.
func GenerateDeck(pairCount int, alphabet []string, rng *rand.Rand) (Board, error) {
	if err := validateDeck(pairCount, alphabet); err != nil {
		return nil, err
	}

	total := 2 * pairCount
	cards := make(Board, total)
	for i := 0; i < total; i++ {
		cards[i] = Card{ID: i, Value: alphabet[i%pairCount]}
	}

	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}
	// Fisher-Yates: swap each position with a uniform pick from [0, i].
	for i := total - 1; i > 0; i-- {
		j := intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}

	return cards, nil
}

func validateDeck(pairCount int, alphabet []string) error {
	if pairCount < 1 {
		return fmt.Errorf("%w: pair count must be at least 1, got %d", ErrConfiguration, pairCount)
	}
	if len(alphabet) < pairCount {
		return fmt.Errorf("%w: %d pairs need %d symbols, alphabet has %d", ErrConfiguration, pairCount, pairCount, len(alphabet))
	}
	seen := make(map[string]struct{}, pairCount)
	for _, sym := range alphabet[:pairCount] {
		if sym == "" {
			return fmt.Errorf("%w: alphabet contains an empty symbol", ErrConfiguration)
		}
		if _, dup := seen[sym]; dup {
			return fmt.Errorf("%w: symbol %q appears more than once", ErrConfiguration, sym)
		}
		seen[sym] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	copy(out, b)
	return out
}

// Find returns the card with the given id.
func (b Board) Find(id int) (Card, bool) {
	if i := b.indexOf(id); i >= 0 {
		return b[i], true
	}
	return Card{}, false
}

func (b Board) indexOf(id int) int {
	for i := range b {
		if b[i].ID == id {
			return i
		}
	}
	return -1
}

// AllMatched reports whether every card on a non-empty board is matched.
func (b Board) AllMatched() bool {
	if len(b) == 0 {
		return false
	}
	for _, card := range b {
		if !card.Matched {
			return false
		}
	}
	return true
}

// MatchedPairs returns the number of pairs already found.
func (b Board) MatchedPairs() int {
	n := 0
	for _, card := range b {
		if card.Matched {
			n++
		}
	}
	return n / 2
}
