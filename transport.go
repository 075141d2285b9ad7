package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"literludo/internal/audio"
	"literludo/internal/content"
	"literludo/internal/engine"
)

// errConnClosed fails pending playbacks when the websocket goes away.
var errConnClosed = errors.New("websocket closed")

// jsonWriter is the write side of the connection the transport and listener
// share.
type jsonWriter interface {
	WriteJSON(v any) error
}

// safeConn serialises writes to a websocket connection shared between the
// read loop, the engine goroutine, and effect goroutines.
type safeConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (sc *safeConn) WriteJSON(v any) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.conn.WriteJSON(v)
}

func sendMessage(conn jsonWriter, msgType string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = b
	}
	return conn.WriteJSON(WSMessage{Type: msgType, Payload: raw})
}

// wsTransport plays clips by commanding the browser over the websocket and
// treating AUDIO_ENDED / AUDIO_ERROR acks as the end-of-media signal. The
// audio service's safety timeout covers clients that never ack.
type wsTransport struct {
	conn    jsonWriter
	mu      sync.Mutex
	pending map[string]chan error
	closed  bool
}

func newWSTransport(conn jsonWriter) *wsTransport {
	return &wsTransport{conn: conn, pending: make(map[string]chan error)}
}

// Start implements audio.Transport.
func (t *wsTransport) Start(_ context.Context, req audio.Request) (audio.Playback, error) {
	id := uuid.NewString()
	ch := make(chan error, 1)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, errConnClosed
	}
	t.pending[id] = ch
	t.mu.Unlock()

	channel := ChannelPrimary
	switch req.Category {
	case audio.CategoryEffectCorrect, audio.CategoryEffectWrong:
		channel = ChannelEffect
	}
	err := sendMessage(t.conn, MsgPlay, PlayPayload{
		ID:      id,
		Path:    req.Path(),
		Channel: channel,
		Volume:  req.Volume,
	})
	if err != nil {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
		return nil, err
	}
	return &wsPlayback{transport: t, id: id, done: ch}, nil
}

// resolve settles a pending playback exactly once; later calls for the same
// id are ignored.
func (t *wsTransport) resolve(id string, err error) {
	t.mu.Lock()
	ch, ok := t.pending[id]
	delete(t.pending, id)
	t.mu.Unlock()
	if ok {
		ch <- err
	}
}

// Close fails every pending playback so no awaiting turn leaks.
func (t *wsTransport) Close() {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]chan error)
	t.closed = true
	t.mu.Unlock()
	for _, ch := range pending {
		ch <- errConnClosed
	}
}

type wsPlayback struct {
	transport *wsTransport
	id        string
	done      chan error
}

func (p *wsPlayback) Done() <-chan error { return p.done }

// Stop rewinds the clip client-side and settles the pending wait.
func (p *wsPlayback) Stop() {
	if err := sendMessage(p.transport.conn, MsgStop, StopPayload{ID: p.id}); err != nil {
		logWarn("Failed to send stop command for playback %s: %v", p.id, err)
	}
	p.transport.resolve(p.id, nil)
}

// wsListener forwards presentation events to the client. Write failures are
// logged and otherwise ignored; a dead connection tears the session down
// through the read loop.
type wsListener struct {
	conn jsonWriter
}

func (l *wsListener) send(msgType string, payload any) {
	if err := sendMessage(l.conn, msgType, payload); err != nil {
		logWarn("Failed to send %s event: %v", msgType, err)
	}
}

func (l *wsListener) EntryChanged(entry content.Entry) {
	l.send(MsgEntry, entry)
}

func (l *wsListener) OptionsChanged(options []string) {
	l.send(MsgOptions, OptionsPayload{Options: options})
}

func (l *wsListener) OptionRevealed(index int, letter string) {
	l.send(MsgReveal, RevealPayload{Index: index, Letter: letter})
}

func (l *wsListener) FeedbackChanged(text string) {
	l.send(MsgFeedback, FeedbackPayload{Text: text})
}

func (l *wsListener) StatsChanged(stats engine.Stats) {
	l.send(MsgStats, stats)
}

func (l *wsListener) InputChanged(enabled bool) {
	l.send(MsgInput, InputPayload{Enabled: enabled})
}

func (l *wsListener) GameOver(stats engine.Stats) {
	l.send(MsgGameOver, stats)
}

// ackError wraps the client-reported playback error message.
func ackError(p AckPayload) error {
	if p.Message == "" {
		return errors.New("client playback error")
	}
	return fmt.Errorf("client playback error: %s", p.Message)
}
