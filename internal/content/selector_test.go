package content

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T, letters ...string) *Catalog {
	t.Helper()
	var entries []Entry
	for _, l := range letters {
		entries = append(entries, Entry{Letter: l, ImagePath: l + "-pic.png", WordKey: l + "-pic"})
	}
	catalog, err := NewCatalog(entries)
	require.NoError(t, err)
	return catalog
}

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Every letter in the catalog is drawn exactly once per full cycle through
// the deck, for any seed.
func TestNextEntryFullCycleCoverage(t *testing.T) {
	catalog := testCatalog(t, "a", "b", "c")
	for seed := uint64(1); seed <= 20; seed++ {
		s := NewSelector(catalog, testRNG(seed))
		for cycle := 0; cycle < 3; cycle++ {
			seen := make(map[string]bool)
			for i := 0; i < catalog.Len(); i++ {
				e := s.NextEntry()
				assert.False(t, seen[e.Letter], "seed %d cycle %d: letter %s repeated before cycle end", seed, cycle, e.Letter)
				seen[e.Letter] = true
			}
			assert.Len(t, seen, catalog.Len())
		}
	}
}

func TestNextEntryPicksRandomImagePerLetter(t *testing.T) {
	entries := []Entry{
		{Letter: "a", ImagePath: "apple.png", WordKey: "apple"},
		{Letter: "a", ImagePath: "ant.png", WordKey: "ant"},
	}
	catalog, err := NewCatalog(entries)
	require.NoError(t, err)

	s := NewSelector(catalog, testRNG(7))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[s.NextEntry().WordKey] = true
	}
	assert.True(t, seen["apple"] && seen["ant"], "both pictures of a letter should eventually be drawn")
}

func TestOptionsForShape(t *testing.T) {
	catalog := testCatalog(t, "a")
	s := NewSelector(catalog, testRNG(3))

	for i := 0; i < 1000; i++ {
		options := s.OptionsFor("q")
		require.Len(t, options, OptionCount)
		assert.Contains(t, options, "q")
		distinct := make(map[string]bool)
		for _, o := range options {
			require.Len(t, o, 1)
			distinct[o] = true
		}
		assert.Len(t, distinct, OptionCount, "options must be distinct: %v", options)
	}
}

// The correct letter must land in each slot with roughly equal frequency.
func TestOptionsForUniformPosition(t *testing.T) {
	catalog := testCatalog(t, "a")
	s := NewSelector(catalog, testRNG(11))

	const trials = 1500
	counts := make([]int, OptionCount)
	for i := 0; i < trials; i++ {
		options := s.OptionsFor("m")
		for pos, o := range options {
			if o == "m" {
				counts[pos]++
			}
		}
	}

	// Expected 500 per slot; allow a generous band around it.
	for pos, n := range counts {
		assert.Greater(t, n, 380, "position %d starved: %v", pos, counts)
		assert.Less(t, n, 620, "position %d overloaded: %v", pos, counts)
	}
}
