package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"literludo/internal/audio"
	"literludo/internal/content"
	"literludo/internal/engine"
)

func testApp(t *testing.T) *App {
	t.Helper()
	catalog, err := content.NewCatalog([]content.Entry{
		{Letter: "a", ImagePath: "apple.png", WordKey: "apple"},
		{Letter: "b", ImagePath: "ball.png", WordKey: "ball"},
		{Letter: "c", ImagePath: "cat.png", WordKey: "cat"},
	})
	if err != nil {
		t.Fatalf("failed to build test catalog: %v", err)
	}
	return &App{
		Catalog:    catalog,
		Sessions:   make(map[string]*engine.Orchestrator),
		LimiterMap: make(map[string]*rate.Limiter),
		Timings: engine.Timings{
			SettleDelay:  time.Millisecond,
			RevealGap:    time.Millisecond,
			ResolvePause: time.Millisecond,
			WrongBeat:    time.Millisecond,
			Debounce:     time.Millisecond,
		},
		AudioConfig: audio.Config{
			LoadAttempts:    1,
			RetryBackoff:    time.Millisecond,
			PlaybackTimeout: 2 * time.Second,
		},
		StartTime:      time.Now(),
		CookieMaxAge:   time.Hour,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *App) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app := testApp(t)
	router := gin.New()
	router.GET(RouteSocket, app.wsHandler)
	router.GET(RouteNewGame, app.newGameHandler)
	router.GET(RouteHealthz, app.healthzHandler)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, app
}

// wsClient reads frames synchronously, acking every PLAY command at once so
// the server-side audio sequence keeps moving.
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialWS(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + RouteSocket
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(msgType string, payload any) {
	c.t.Helper()
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatalf("marshal payload: %v", err)
		}
		raw = b
	}
	if err := c.conn.WriteJSON(WSMessage{Type: msgType, Payload: raw}); err != nil {
		c.t.Fatalf("write %s: %v", msgType, err)
	}
}

// next returns the first frame of the wanted type, acking PLAY commands and
// skipping everything else along the way.
func (c *wsClient) next(wantType string) WSMessage {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			c.t.Fatalf("timed out waiting for %s frame", wantType)
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.t.Fatalf("read while waiting for %s: %v", wantType, err)
		}
		if msg.Type == MsgPlay {
			var play PlayPayload
			if err := json.Unmarshal(msg.Payload, &play); err != nil {
				c.t.Fatalf("bad PLAY payload: %v", err)
			}
			c.send(MsgAudioEnded, AckPayload{ID: play.ID})
		}
		if msg.Type == wantType {
			return msg
		}
	}
}

// waitInputEnabled consumes frames until the input window opens, returning
// the letter of the round's entry.
func (c *wsClient) waitInputEnabled(entryLetter *string) {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			c.t.Fatal("timed out waiting for input window")
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.t.Fatalf("read while waiting for input window: %v", err)
		}
		switch msg.Type {
		case MsgPlay:
			var play PlayPayload
			if err := json.Unmarshal(msg.Payload, &play); err != nil {
				c.t.Fatalf("bad PLAY payload: %v", err)
			}
			c.send(MsgAudioEnded, AckPayload{ID: play.ID})
		case MsgEntry:
			var entry content.Entry
			if err := json.Unmarshal(msg.Payload, &entry); err != nil {
				c.t.Fatalf("bad ENTRY payload: %v", err)
			}
			*entryLetter = entry.Letter
		case MsgInput:
			var input InputPayload
			if err := json.Unmarshal(msg.Payload, &input); err != nil {
				c.t.Fatalf("bad INPUT payload: %v", err)
			}
			if input.Enabled {
				return
			}
		}
	}
}

func TestHealthzHandler(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + RouteHealthz)
	if err != nil {
		t.Fatalf("healthz request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("healthz body decode failed: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("healthz status field = %v, want ok", body["status"])
	}
	if body["letters"] != float64(3) {
		t.Errorf("healthz letters = %v, want 3", body["letters"])
	}
}

func TestNewGameHandlerRedirects(t *testing.T) {
	srv, _ := newTestServer(t)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(srv.URL + RouteNewGame)
	if err != nil {
		t.Fatalf("new-game request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("new-game status = %d, want 303", resp.StatusCode)
	}
}

func TestWebsocketInit(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dialWS(t, srv)

	c.send(MsgInit, nil)
	stats := c.next(MsgStats)
	var payload engine.Stats
	if err := json.Unmarshal(stats.Payload, &payload); err != nil {
		t.Fatalf("bad STATS payload: %v", err)
	}
	if payload.Score != 0 || payload.GameOver {
		t.Errorf("unexpected initial stats: %+v", payload)
	}

	input := c.next(MsgInput)
	var inputPayload InputPayload
	if err := json.Unmarshal(input.Payload, &inputPayload); err != nil {
		t.Fatalf("bad INPUT payload: %v", err)
	}
	if inputPayload.Enabled {
		t.Error("input must start disabled")
	}
}

func TestWebsocketCorrectAnswerScores(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dialWS(t, srv)

	c.send(MsgStart, nil)

	var letter string
	c.waitInputEnabled(&letter)
	if letter == "" {
		t.Fatal("no ENTRY frame arrived before the input window opened")
	}

	c.send(MsgKey, KeyPayload{Key: letter})

	// The round resolves and a STATS frame carries the new score.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for score update")
		}
		msg := c.next(MsgStats)
		var stats engine.Stats
		if err := json.Unmarshal(msg.Payload, &stats); err != nil {
			t.Fatalf("bad STATS payload: %v", err)
		}
		if stats.Score == 10 {
			return
		}
	}
}

// INIT may arrive at any time, including mid-round; the stats snapshot it
// triggers must not disturb the game in flight.
func TestWebsocketInitMidGame(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dialWS(t, srv)

	c.send(MsgStart, nil)
	var letter string
	c.waitInputEnabled(&letter)

	for i := 0; i < 5; i++ {
		c.send(MsgInit, nil)
	}
	c.send(MsgKey, KeyPayload{Key: letter})

	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for score update")
		}
		msg := c.next(MsgStats)
		var stats engine.Stats
		if err := json.Unmarshal(msg.Payload, &stats); err != nil {
			t.Fatalf("bad STATS payload: %v", err)
		}
		if stats.Score == 10 {
			return
		}
	}
}

func TestWebsocketGameOver(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dialWS(t, srv)

	c.send(MsgStart, nil)

	for i := 0; i < 3; i++ {
		var letter string
		c.waitInputEnabled(&letter)
		wrong := "z"
		if letter == "z" {
			wrong = "y"
		}
		c.send(MsgKey, KeyPayload{Key: wrong})
	}

	msg := c.next(MsgGameOver)
	var stats engine.Stats
	if err := json.Unmarshal(msg.Payload, &stats); err != nil {
		t.Fatalf("bad GAME_OVER payload: %v", err)
	}
	if !stats.GameOver || stats.Lives != 0 {
		t.Errorf("unexpected terminal stats: %+v", stats)
	}
	total := 0
	for _, n := range stats.FailedWords {
		total += n
	}
	if total != 3 {
		t.Errorf("failed-word tally total = %d, want 3", total)
	}
}
