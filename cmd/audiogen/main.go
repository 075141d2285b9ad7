// Command audiogen pre-generates the spoken audio clips the game plays at
// runtime. It scans the image directory for word keys, synthesises each
// missing clip through a text-to-speech HTTP endpoint, and writes the files
// to the conventional paths the playback service resolves
// (words/, questions/, letters/, congrats/, support/).
//
// The correct/wrong chimes under other/ are recorded sound effects, not
// speech, and are not generated here.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"literludo/internal/audio"
	"literludo/internal/content"
)

// Phrases is the YAML file of spoken texts: question templates take the
// word via %s, congrats/support are fixed lines indexed by variant.
type Phrases struct {
	Questions []string `yaml:"questions"`
	Congrats  []string `yaml:"congrats"`
	Support   []string `yaml:"support"`
}

type synthesizer struct {
	url    string
	voice  string
	client *http.Client
}

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

func main() {
	_ = godotenv.Load()

	var (
		imagesDir   = flag.String("images", "static/images", "Image directory to derive word keys from")
		outDir      = flag.String("out", "static/audio", "Audio output directory")
		phrasesFile = flag.String("phrases", "data/phrases.yaml", "YAML file with question/congrats/support texts")
		force       = flag.Bool("force", false, "Regenerate clips that already exist")
	)
	flag.Parse()

	ttsURL := os.Getenv("TTS_URL")
	if ttsURL == "" {
		log.Fatal("TTS_URL must be set (text-to-speech endpoint)")
	}
	synth := &synthesizer{
		url:    ttsURL,
		voice:  os.Getenv("TTS_VOICE"),
		client: &http.Client{Timeout: 30 * time.Second},
	}

	phrases, err := loadPhrases(*phrasesFile)
	if err != nil {
		log.Fatalf("Failed to load phrases: %v", err)
	}

	catalog, err := content.Scan(os.DirFS(*imagesDir))
	if err != nil {
		log.Fatalf("Failed to scan images: %v", err)
	}
	words := catalog.WordKeys()
	log.Printf("Found %d words across %d letters", len(words), catalog.Len())

	generated, failed, skipped := 0, 0, 0
	generate := func(req audio.Request, text string) {
		outPath := filepath.Join(*outDir, filepath.FromSlash(req.Path()))
		if !*force {
			if _, err := os.Stat(outPath); err == nil {
				skipped++
				return
			}
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
		if err := synth.writeClip(text, outPath); err != nil {
			log.Printf("Failed to generate %s: %v", outPath, err)
			failed++
			return
		}
		log.Printf("Generated %s", outPath)
		generated++
	}

	for _, word := range words {
		generate(audio.Word(word), word)
		for i, tmpl := range phrases.Questions {
			generate(
				audio.Request{Category: audio.CategoryQuestion, Key: word, Variant: i + 1},
				fmt.Sprintf(tmpl, word),
			)
		}
	}
	for _, letter := range content.Alphabet {
		generate(audio.Letter(string(letter)), string(letter))
	}
	for i, text := range phrases.Congrats {
		generate(audio.Request{Category: audio.CategoryCongrats, Variant: i + 1}, text)
	}
	for i, text := range phrases.Support {
		generate(audio.Request{Category: audio.CategorySupport, Variant: i + 1}, text)
	}

	log.Printf("Done: %d generated, %d skipped, %d failed", generated, skipped, failed)
}

func loadPhrases(path string) (*Phrases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Phrases
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if len(p.Questions) != audio.QuestionVariants {
		return nil, fmt.Errorf("expected %d question templates, got %d", audio.QuestionVariants, len(p.Questions))
	}
	if len(p.Congrats) != audio.CongratsVariants {
		return nil, fmt.Errorf("expected %d congrats lines, got %d", audio.CongratsVariants, len(p.Congrats))
	}
	if len(p.Support) != audio.SupportVariants {
		return nil, fmt.Errorf("expected %d support lines, got %d", audio.SupportVariants, len(p.Support))
	}
	return &p, nil
}

// writeClip synthesises one text and writes the returned audio bytes.
func (s *synthesizer) writeClip(text, outPath string) error {
	body, err := json.Marshal(ttsRequest{Text: text, Voice: s.voice})
	if err != nil {
		return err
	}
	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tts endpoint returned %s: %s", resp.Status, msg)
	}
	audioBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(audioBytes) == 0 {
		return fmt.Errorf("tts endpoint returned no audio")
	}
	return os.WriteFile(outPath, audioBytes, 0644)
}
