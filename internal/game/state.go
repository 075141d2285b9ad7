// Package game holds the pure score/lives state machine. It performs no I/O
// and carries no locking of its own; the engine's orchestrator guards all
// access.
package game

import (
	"fmt"
	"strings"
)

// Game configuration constants
const (
	StartingLives  = 3
	CorrectPoints  = 10
	FeedbackRight  = "Correct!"
	feedbackWrongF = "Wrong! The correct letter was %s"
)

// State is one session's score, lives, and failed-word bookkeeping.
type State struct {
	Score       int
	Lives       int
	IsPlaying   bool
	IsGameOver  bool
	Feedback    string
	FailedWords map[string]int
}

// New returns an idle state; StartGame moves it into play.
func New() *State {
	return &State{FailedWords: make(map[string]int)}
}

// StartGame resets everything and begins play. Valid from idle and from
// game over (restart).
func (s *State) StartGame() {
	s.Score = 0
	s.Lives = StartingLives
	s.IsPlaying = true
	s.IsGameOver = false
	s.Feedback = ""
	s.FailedWords = make(map[string]int)
}

// RecordCorrect awards the flat score increment and sets the affirmative
// feedback marker. Never touches lives or the failed-word tally.
func (s *State) RecordCorrect() {
	s.Score += CorrectPoints
	s.Feedback = FeedbackRight
}

// RecordIncorrect burns a life, tallies the failed word, and sets feedback
// carrying the correct letter. At zero lives the game becomes terminal but
// IsPlaying stays true so the results screen can read the final stats.
func (s *State) RecordIncorrect(wordKey, correctLetter string) {
	s.Lives--
	s.FailedWords[wordKey]++
	s.Feedback = fmt.Sprintf(feedbackWrongF, strings.ToUpper(correctLetter))
	if s.Lives <= 0 {
		s.IsGameOver = true
	}
}

// ClearFeedback resets the pending feedback text and nothing else.
func (s *State) ClearFeedback() {
	s.Feedback = ""
}

// FailedWordsCopy returns a snapshot of the tally safe to hand to other
// goroutines.
func (s *State) FailedWordsCopy() map[string]int {
	out := make(map[string]int, len(s.FailedWords))
	for w, n := range s.FailedWords {
		out[w] = n
	}
	return out
}
