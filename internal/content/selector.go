package content

import (
	"math/rand/v2"
)

// OptionCount is the size of every multiple-choice option set.
const OptionCount = 3

// Selector hands out catalog entries in non-repeating shuffle cycles and
// generates the letter options shown alongside each round's picture.
//
// Not safe for concurrent use; the orchestrator is the only caller.
type Selector struct {
	catalog *Catalog
	rng     *rand.Rand
	deck    []Entry
}

// NewSelector creates a selector with an empty deck; the first NextEntry
// call triggers the initial shuffle.
func NewSelector(catalog *Catalog, rng *rand.Rand) *Selector {
	return &Selector{catalog: catalog, rng: rng}
}

// NextEntry pops the head of the deck, rebuilding and reshuffling it first
// when it is empty. Every letter with at least one picture appears exactly
// once per full cycle through the deck.
func (s *Selector) NextEntry() Entry {
	if len(s.deck) == 0 {
		s.deck = s.rebuildDeck()
	}
	head := s.deck[0]
	s.deck = s.deck[1:]
	return head
}

// Remaining reports how many entries are left in the current cycle.
func (s *Selector) Remaining() int {
	return len(s.deck)
}

// rebuildDeck draws one entry per letter (random picture when a letter has
// several) and Fisher-Yates shuffles the result.
func (s *Selector) rebuildDeck() []Entry {
	deck := make([]Entry, 0, s.catalog.Len())
	for _, letter := range s.catalog.Letters() {
		entries := s.catalog.Entries(letter)
		deck = append(deck, entries[s.rng.IntN(len(entries))])
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// OptionsFor returns OptionCount distinct letters containing correctLetter
// at a uniformly random position, the rest rejection-sampled from the
// alphabet.
func (s *Selector) OptionsFor(correctLetter string) []string {
	options := make([]string, OptionCount)
	options[s.rng.IntN(OptionCount)] = correctLetter

	filled := 1
	for filled < OptionCount {
		candidate := string(Alphabet[s.rng.IntN(len(Alphabet))])
		if candidate == correctLetter || contains(options, candidate) {
			continue
		}
		for i := range options {
			if options[i] == "" {
				options[i] = candidate
				break
			}
		}
		filled++
	}
	return options
}

func contains(options []string, letter string) bool {
	for _, o := range options {
		if o == letter {
			return true
		}
	}
	return false
}
