// Package content owns the picture catalog, the shuffled deck the game draws
// from, and multiple-choice letter option generation.
package content

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Alphabet is the full set of answer letters.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

var imageExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".webp": {},
}

// counterSuffix matches trailing "(2)" style duplicate markers in file names.
var counterSuffix = regexp.MustCompile(`\s*\(\d+\)\s*$`)

// Entry is one letter-labelled picture. Immutable once constructed.
type Entry struct {
	Letter    string `json:"letter"`
	ImagePath string `json:"imagePath"`
	WordKey   string `json:"wordKey"`
}

// Catalog maps each letter to the pictures available for it.
type Catalog struct {
	byLetter map[string][]Entry
	letters  []string
}

// NewCatalog builds a catalog from entries, validating that every entry's
// letter is a single lowercase ASCII letter matching its word key.
func NewCatalog(entries []Entry) (*Catalog, error) {
	byLetter := make(map[string][]Entry)
	for _, e := range entries {
		if len(e.Letter) != 1 || !strings.Contains(Alphabet, e.Letter) {
			return nil, fmt.Errorf("invalid catalog letter %q for %q", e.Letter, e.ImagePath)
		}
		if !strings.HasPrefix(e.WordKey, e.Letter) {
			return nil, fmt.Errorf("word key %q does not start with letter %q", e.WordKey, e.Letter)
		}
		byLetter[e.Letter] = append(byLetter[e.Letter], e)
	}
	letters := lo.Keys(byLetter)
	sort.Strings(letters)
	return &Catalog{byLetter: byLetter, letters: letters}, nil
}

// Scan walks an image directory tree and builds a catalog from the file
// names. The word key is the file name stem, lowercased, with duplicate
// counters stripped; the letter is its first character. Files whose stem does
// not start with a letter are skipped.
func Scan(fsys fs.FS) (*Catalog, error) {
	var entries []Entry
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := imageExtensions[strings.ToLower(path.Ext(p))]; !ok {
			return nil
		}
		key := WordKey(p)
		if key == "" || !strings.Contains(Alphabet, key[:1]) {
			return nil
		}
		entries = append(entries, Entry{
			Letter:    key[:1],
			ImagePath: p,
			WordKey:   key,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no usable images found")
	}
	return NewCatalog(entries)
}

// WordKey derives the spoken word for an image path: base name without
// extension, duplicate counters removed, lowercased.
func WordKey(imagePath string) string {
	base := path.Base(imagePath)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = counterSuffix.ReplaceAllString(base, "")
	return strings.ToLower(strings.TrimSpace(base))
}

// Letters returns the sorted letters that have at least one picture.
func (c *Catalog) Letters() []string {
	return c.letters
}

// Entries returns the pictures for a letter, in scan order.
func (c *Catalog) Entries(letter string) []Entry {
	return c.byLetter[letter]
}

// Len is the number of distinct letters in the catalog.
func (c *Catalog) Len() int {
	return len(c.letters)
}

// WordKeys returns every distinct word key in the catalog.
func (c *Catalog) WordKeys() []string {
	keys := make(map[string]struct{})
	for _, entries := range c.byLetter {
		for _, e := range entries {
			keys[e.WordKey] = struct{}{}
		}
	}
	out := lo.Keys(keys)
	sort.Strings(out)
	return out
}
