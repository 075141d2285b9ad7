// Package audio sequences clip playback: one primary spoken channel that
// preempts itself, fire-and-forget sound effects, bounded retries on load,
// and a safety timeout so no playback ever hangs a turn.
package audio

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"literludo/internal/clock"
)

// Clip categories.
type Category string

const (
	CategoryWord          Category = "word"
	CategoryQuestion      Category = "question"
	CategoryLetter        Category = "letter"
	CategoryCongrats      Category = "congrats"
	CategorySupport       Category = "support"
	CategoryEffectCorrect Category = "sfx-correct"
	CategoryEffectWrong   Category = "sfx-wrong"
)

// Variant pool sizes for the pre-recorded clip sets.
const (
	CongratsVariants = 20
	SupportVariants  = 20
	QuestionVariants = 5
)

// Effect volumes carried over from the recorded clip levels.
const (
	correctEffectVolume = 0.5
	wrongEffectVolume   = 0.7
)

// Request identifies one clip to play.
type Request struct {
	Category Category
	Key      string  // word key or letter; empty for feedback and effects
	Variant  int     // 1-based; 0 when the category has no variants
	Volume   float64 // 0 means full volume
}

// Path resolves the request to its conventional location under the audio
// asset root.
func (r Request) Path() string {
	switch r.Category {
	case CategoryWord:
		return fmt.Sprintf("words/%s.mp3", r.Key)
	case CategoryQuestion:
		return fmt.Sprintf("questions/%s_question_%d.mp3", r.Key, r.Variant)
	case CategoryLetter:
		return fmt.Sprintf("letters/%s.mp3", r.Key)
	case CategoryCongrats:
		return fmt.Sprintf("congrats/congrats_%d.mp3", r.Variant)
	case CategorySupport:
		return fmt.Sprintf("support/support_%d.mp3", r.Variant)
	case CategoryEffectCorrect:
		return "other/correct.mp3"
	case CategoryEffectWrong:
		return "other/wrong.mp3"
	}
	return ""
}

// Playback is one in-flight clip. Done settles exactly once per playback,
// whether it ends normally, errors, or is stopped.
type Playback interface {
	Done() <-chan error
	Stop()
}

// Transport starts actual playback of a clip and reports completion. The
// websocket layer implements this against the browser's audio element.
type Transport interface {
	Start(ctx context.Context, req Request) (Playback, error)
}

// Config bounds the service's failure handling.
type Config struct {
	LoadAttempts    int           // start attempts per clip
	RetryBackoff    time.Duration // pause between attempts
	PlaybackTimeout time.Duration // forced-resolution ceiling per clip
}

// DefaultConfig matches the documented safeguards: 3 load attempts with a
// one second backoff, and a 5 second playback ceiling.
func DefaultConfig() Config {
	return Config{
		LoadAttempts:    3,
		RetryBackoff:    time.Second,
		PlaybackTimeout: 5 * time.Second,
	}
}

// Service owns the single primary playback slot for one game session.
type Service struct {
	transport Transport
	clk       clock.Clock
	cfg       Config

	mu           sync.Mutex
	current      Playback
	rng          *rand.Rand
	lastCongrats int
	lastSupport  int
}

func NewService(transport Transport, clk clock.Clock, cfg Config, rng *rand.Rand) *Service {
	if cfg.LoadAttempts <= 0 {
		cfg.LoadAttempts = 1
	}
	return &Service{transport: transport, clk: clk, cfg: cfg, rng: rng}
}

// Play runs one primary clip to completion. Any primary clip already in
// flight is stopped first. Play always returns within the configured
// ceiling: on normal end, on playback error, on context cancellation, or
// via the safety timeout (which counts as completed).
func (s *Service) Play(ctx context.Context, req Request) error {
	s.stopCurrent()

	var pb Playback
	err := withRetry(ctx, s.clk, s.cfg.LoadAttempts, s.cfg.RetryBackoff, func() error {
		var startErr error
		pb, startErr = s.transport.Start(ctx, req)
		return startErr
	})
	if err != nil {
		return fmt.Errorf("start %s: %w", req.Path(), err)
	}

	s.mu.Lock()
	s.current = pb
	s.mu.Unlock()

	select {
	case err := <-pb.Done():
		return err
	case <-ctx.Done():
		pb.Stop()
		return ctx.Err()
	case <-s.clk.After(s.cfg.PlaybackTimeout):
		// End event never fired; force the turn to proceed.
		pb.Stop()
		return nil
	}
}

// PlayEffect fires a short sound effect concurrently with primary narration
// and does not report its outcome.
func (s *Service) PlayEffect(req Request) {
	go func() {
		pb, err := s.transport.Start(context.Background(), req)
		if err != nil {
			return
		}
		select {
		case <-pb.Done():
		case <-s.clk.After(s.cfg.PlaybackTimeout):
			pb.Stop()
		}
	}()
}

// Stop halts any in-flight primary playback. Its pending Done still
// settles.
func (s *Service) Stop() {
	s.stopCurrent()
}

func (s *Service) stopCurrent() {
	s.mu.Lock()
	pb := s.current
	s.current = nil
	s.mu.Unlock()
	if pb != nil {
		pb.Stop()
	}
}

// Word returns the spoken-word request for a word key.
func Word(key string) Request {
	return Request{Category: CategoryWord, Key: key}
}

// Letter returns the spoken-letter request for a single letter.
func Letter(letter string) Request {
	return Request{Category: CategoryLetter, Key: letter}
}

// EffectCorrect is the non-blocking correct-answer chime.
func EffectCorrect() Request {
	return Request{Category: CategoryEffectCorrect, Volume: correctEffectVolume}
}

// EffectWrong is the non-blocking wrong-answer chime.
func EffectWrong() Request {
	return Request{Category: CategoryEffectWrong, Volume: wrongEffectVolume}
}

// Question picks a uniformly random question prompt variant for a word.
func (s *Service) Question(key string) Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Request{
		Category: CategoryQuestion,
		Key:      key,
		Variant:  s.rng.IntN(QuestionVariants) + 1,
	}
}

// Congrats picks a congratulatory variant, never repeating the immediately
// previous one.
func (s *Service) Congrats() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCongrats = pickVariant(s.rng, CongratsVariants, s.lastCongrats)
	return Request{Category: CategoryCongrats, Variant: s.lastCongrats}
}

// Support picks a supportive variant, never repeating the immediately
// previous one.
func (s *Service) Support() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSupport = pickVariant(s.rng, SupportVariants, s.lastSupport)
	return Request{Category: CategorySupport, Variant: s.lastSupport}
}

// pickVariant draws uniformly from 1..n excluding last; last == 0 means no
// previous pick. The exclusion is ignored when n <= 1.
func pickVariant(rng *rand.Rand, n, last int) int {
	if n <= 1 {
		return 1
	}
	if last < 1 || last > n {
		return rng.IntN(n) + 1
	}
	v := rng.IntN(n-1) + 1
	if v >= last {
		v++
	}
	return v
}
