package main

import (
	"fmt"
	"os"
	"path/filepath"

	"literludo/internal/audio"
	"literludo/internal/content"
)

// loadCatalog scans the image directory and builds the picture catalog.
func loadCatalog(imagesDir string) (*content.Catalog, error) {
	logInfo("Loading picture catalog from %s", imagesDir)
	if !dirExists(imagesDir) {
		return nil, fmt.Errorf("images directory %s does not exist", imagesDir)
	}
	catalog, err := content.Scan(os.DirFS(imagesDir))
	if err != nil {
		return nil, err
	}
	logInfo("Loaded %d letters, %d words from catalog", catalog.Len(), len(catalog.WordKeys()))
	return catalog, nil
}

// verifyAudioClips checks that every clip the round script can request is on
// disk. Missing clips are warnings, never startup failures: the playback
// service degrades to silence for them at runtime.
func verifyAudioClips(catalog *content.Catalog, audioDir string) {
	missing := 0
	check := func(req audio.Request) {
		path := filepath.Join(audioDir, filepath.FromSlash(req.Path()))
		if _, err := os.Stat(path); err != nil {
			logWarn("Missing audio clip: %s", path)
			missing++
		}
	}

	for _, key := range catalog.WordKeys() {
		check(audio.Word(key))
		for v := 1; v <= audio.QuestionVariants; v++ {
			check(audio.Request{Category: audio.CategoryQuestion, Key: key, Variant: v})
		}
	}
	for _, letter := range content.Alphabet {
		check(audio.Letter(string(letter)))
	}
	for v := 1; v <= audio.CongratsVariants; v++ {
		check(audio.Request{Category: audio.CategoryCongrats, Variant: v})
	}
	for v := 1; v <= audio.SupportVariants; v++ {
		check(audio.Request{Category: audio.CategorySupport, Variant: v})
	}
	check(audio.EffectCorrect())
	check(audio.EffectWrong())

	if missing == 0 {
		logInfo("Audio clip set complete")
	} else {
		logWarn("%d audio clips missing; run cmd/audiogen to generate them", missing)
	}
}
