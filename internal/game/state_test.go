package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playingState() *State {
	s := New()
	s.StartGame()
	return s
}

func TestStartGameResets(t *testing.T) {
	s := New()
	s.Score = 120
	s.Lives = 0
	s.IsGameOver = true
	s.Feedback = "Wrong!"
	s.FailedWords = map[string]int{"cat": 3}

	s.StartGame()

	assert.Equal(t, 0, s.Score)
	assert.Equal(t, StartingLives, s.Lives)
	assert.True(t, s.IsPlaying)
	assert.False(t, s.IsGameOver)
	assert.Empty(t, s.Feedback)
	assert.Empty(t, s.FailedWords)
}

func TestRecordCorrect(t *testing.T) {
	s := playingState()
	for i := 1; i <= 5; i++ {
		s.RecordCorrect()
		assert.Equal(t, i*CorrectPoints, s.Score)
		assert.Equal(t, StartingLives, s.Lives, "correct answers never touch lives")
		assert.Empty(t, s.FailedWords)
		assert.False(t, s.IsGameOver, "correct answers never end the game")
		assert.Equal(t, FeedbackRight, s.Feedback)
	}
}

func TestRecordIncorrectDecrementsLives(t *testing.T) {
	s := playingState()
	s.RecordIncorrect("cat", "c")

	assert.Equal(t, 2, s.Lives)
	assert.False(t, s.IsGameOver)
	assert.True(t, s.IsPlaying)
	assert.Equal(t, "Wrong! The correct letter was C", s.Feedback)
	assert.Equal(t, map[string]int{"cat": 1}, s.FailedWords)
}

func TestRecordIncorrectOnLastLife(t *testing.T) {
	s := playingState()
	s.Lives = 1
	s.RecordIncorrect("dog", "d")

	assert.True(t, s.IsGameOver)
	assert.True(t, s.IsPlaying, "terminal state still renders the results screen")
	assert.Equal(t, 0, s.Lives)
}

func TestFailedWordTally(t *testing.T) {
	s := playingState()
	s.RecordIncorrect("cat", "c")
	s.RecordIncorrect("cat", "c")
	assert.Equal(t, 2, s.FailedWords["cat"])

	s.StartGame()
	s.RecordIncorrect("cat", "c")
	s.RecordIncorrect("dog", "d")
	assert.Equal(t, map[string]int{"cat": 1, "dog": 1}, s.FailedWords)
}

func TestClearFeedback(t *testing.T) {
	s := playingState()
	s.RecordCorrect()
	score := s.Score

	s.ClearFeedback()
	assert.Empty(t, s.Feedback)
	assert.Equal(t, score, s.Score, "clearing feedback alters nothing else")
}

func TestFailedWordsCopy(t *testing.T) {
	s := playingState()
	s.RecordIncorrect("cat", "c")

	snapshot := s.FailedWordsCopy()
	require.Equal(t, map[string]int{"cat": 1}, snapshot)

	snapshot["cat"] = 99
	assert.Equal(t, 1, s.FailedWords["cat"], "snapshot must not alias live state")
}
