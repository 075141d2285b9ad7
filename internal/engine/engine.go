// Package engine is the turn orchestrator: it scripts each round's content,
// audio sequence, input window, and state transitions, and publishes
// presentation events for the view layer.
package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"literludo/internal/audio"
	"literludo/internal/clock"
	"literludo/internal/content"
	"literludo/internal/game"
)

// ErrAlreadyRunning is returned by Start while a game loop is active.
var ErrAlreadyRunning = errors.New("game already running")

// Stats is the scoreboard snapshot published to the view layer.
type Stats struct {
	Score       int            `json:"score"`
	Lives       int            `json:"lives"`
	GameOver    bool           `json:"gameOver"`
	FailedWords map[string]int `json:"failedWords"`
}

// Listener receives presentation events. Calls arrive from the orchestrator
// goroutine, one at a time.
type Listener interface {
	EntryChanged(entry content.Entry)
	OptionsChanged(options []string)
	OptionRevealed(index int, letter string)
	FeedbackChanged(text string)
	StatsChanged(stats Stats)
	InputChanged(enabled bool)
	GameOver(stats Stats)
}

// Timings are the named suspension points of the round script.
type Timings struct {
	SettleDelay  time.Duration // image transition before the question prompt
	RevealGap    time.Duration // pause between progressive option reveals
	ResolvePause time.Duration // beat before feedback is cleared
	WrongBeat    time.Duration // gap between wrong chime and supportive message
	Debounce     time.Duration // input dead time after an accepted press
}

func DefaultTimings() Timings {
	return Timings{
		SettleDelay:  500 * time.Millisecond,
		RevealGap:    400 * time.Millisecond,
		ResolvePause: 500 * time.Millisecond,
		WrongBeat:    300 * time.Millisecond,
		Debounce:     500 * time.Millisecond,
	}
}

// Orchestrator drives one session's game. Game state is guarded by stateMu:
// the run goroutine mutates it, Stats reads it from any goroutine. Input
// arrives through Submit, which gates and debounces before handing the
// letter over.
type Orchestrator struct {
	selector *content.Selector
	player   *audio.Service
	clk      clock.Clock
	listener Listener
	timings  Timings

	stateMu sync.Mutex
	state   *game.State

	input chan string

	gate struct {
		mu            sync.Mutex
		enabled       bool
		debounceUntil time.Time
	}

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(selector *content.Selector, player *audio.Service, clk clock.Clock, listener Listener, timings Timings) *Orchestrator {
	return &Orchestrator{
		selector: selector,
		state:    game.New(),
		player:   player,
		clk:      clk,
		listener: listener,
		timings:  timings,
		input:    make(chan string, 1),
	}
}

// Start begins a new game loop. Valid when idle or after game over; a loop
// already in flight is left alone.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	if o.running {
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.running = true
	o.cancel = cancel
	o.done = make(chan struct{})
	go o.run(runCtx)
	return nil
}

// Stop cancels the game loop and waits for it to exit. Safe to call when
// idle.
func (o *Orchestrator) Stop() {
	o.runMu.Lock()
	cancel := o.cancel
	done := o.done
	o.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
}

// Running reports whether a game loop is active.
func (o *Orchestrator) Running() bool {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	return o.running
}

// Submit offers a candidate letter. It is silently dropped when input is
// gated off, inside the debounce window, or not a single a-z letter.
// Returns whether the input was accepted.
func (o *Orchestrator) Submit(letter string) bool {
	letter = strings.ToLower(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
		return false
	}

	o.gate.mu.Lock()
	now := o.clk.Now()
	if !o.gate.enabled || now.Before(o.gate.debounceUntil) {
		o.gate.mu.Unlock()
		return false
	}
	o.gate.debounceUntil = now.Add(o.timings.Debounce)
	o.gate.enabled = false
	o.gate.mu.Unlock()

	select {
	case o.input <- letter:
		return true
	default:
		return false
	}
}

// Stats returns the current scoreboard snapshot. Safe to call from any
// goroutine, including mid-round.
func (o *Orchestrator) Stats() Stats {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return Stats{
		Score:       o.state.Score,
		Lives:       o.state.Lives,
		GameOver:    o.state.IsGameOver,
		FailedWords: o.state.FailedWordsCopy(),
	}
}

func (o *Orchestrator) run(ctx context.Context) {
	defer func() {
		o.setInput(false)
		o.player.Stop()
		o.runMu.Lock()
		o.running = false
		o.cancel = nil
		close(o.done)
		o.runMu.Unlock()
	}()

	o.stateMu.Lock()
	o.state.StartGame()
	o.stateMu.Unlock()
	o.drainInput()
	o.listener.StatsChanged(o.Stats())
	o.listener.FeedbackChanged("")

	for {
		gameOver, err := o.runRound(ctx)
		if err != nil {
			return
		}
		if gameOver {
			o.listener.GameOver(o.Stats())
			return
		}
	}
}

// runRound plays one complete question-and-answer cycle. The returned bool
// reports a terminal state; the error is only ever a cancelled context.
// Audio failures never abort the round: the sequence proceeds as if the
// clip had played.
func (o *Orchestrator) runRound(ctx context.Context) (bool, error) {
	entry := o.selector.NextEntry()
	options := o.selector.OptionsFor(entry.Letter)

	o.listener.EntryChanged(entry)
	o.listener.OptionsChanged(options)

	if err := o.clk.Sleep(ctx, o.timings.SettleDelay); err != nil {
		return false, err
	}
	_ = o.player.Play(ctx, o.player.Question(entry.WordKey))
	if err := ctx.Err(); err != nil {
		return false, err
	}

	// Progressive reveal: each option letter is announced before input
	// opens.
	for i, letter := range options {
		o.listener.OptionRevealed(i, letter)
		_ = o.player.Play(ctx, audio.Letter(letter))
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if err := o.clk.Sleep(ctx, o.timings.RevealGap); err != nil {
			return false, err
		}
	}

	o.setInput(true)
	var letter string
	select {
	case letter = <-o.input:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	o.setInput(false)

	// Echo the pressed letter before resolving the answer.
	_ = o.player.Play(ctx, audio.Letter(letter))
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if letter == entry.Letter {
		return false, o.resolveCorrect(ctx)
	}
	return o.resolveIncorrect(ctx, entry)
}

func (o *Orchestrator) resolveCorrect(ctx context.Context) error {
	o.stateMu.Lock()
	o.state.RecordCorrect()
	feedback := o.state.Feedback
	o.stateMu.Unlock()
	o.listener.FeedbackChanged(feedback)
	o.listener.StatsChanged(o.Stats())

	o.player.PlayEffect(audio.EffectCorrect())
	_ = o.player.Play(ctx, o.player.Congrats())
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := o.clk.Sleep(ctx, o.timings.ResolvePause); err != nil {
		return err
	}
	o.stateMu.Lock()
	o.state.ClearFeedback()
	o.stateMu.Unlock()
	o.listener.FeedbackChanged("")
	return nil
}

func (o *Orchestrator) resolveIncorrect(ctx context.Context, entry content.Entry) (bool, error) {
	o.stateMu.Lock()
	o.state.RecordIncorrect(entry.WordKey, entry.Letter)
	feedback := o.state.Feedback
	o.stateMu.Unlock()
	o.listener.FeedbackChanged(feedback)
	o.listener.StatsChanged(o.Stats())

	o.player.PlayEffect(audio.EffectWrong())
	if err := o.clk.Sleep(ctx, o.timings.WrongBeat); err != nil {
		return false, err
	}
	_ = o.player.Play(ctx, o.player.Support())
	if err := ctx.Err(); err != nil {
		return false, err
	}

	// Reinforcement: say the word once more before moving on.
	_ = o.player.Play(ctx, audio.Word(entry.WordKey))
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if err := o.clk.Sleep(ctx, o.timings.ResolvePause); err != nil {
		return false, err
	}
	o.stateMu.Lock()
	o.state.ClearFeedback()
	gameOver := o.state.IsGameOver
	o.stateMu.Unlock()
	o.listener.FeedbackChanged("")
	return gameOver, nil
}

func (o *Orchestrator) setInput(enabled bool) {
	o.gate.mu.Lock()
	o.gate.enabled = enabled
	o.gate.mu.Unlock()
	o.listener.InputChanged(enabled)
}

// drainInput discards any press that raced a previous round's close.
func (o *Orchestrator) drainInput() {
	select {
	case <-o.input:
	default:
	}
}
