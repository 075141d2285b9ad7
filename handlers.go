package main

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"literludo/internal/audio"
	"literludo/internal/clock"
	"literludo/internal/content"
	"literludo/internal/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// homeHandler serves the static game page.
func (app *App) homeHandler(c *gin.Context) {
	app.getOrCreateSession(c)
	c.File(filepath.Join(app.StaticDir, "index.html"))
}

// newGameHandler drops the session's engine so the next websocket INIT
// starts from a clean slate.
func (app *App) newGameHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	logInfo("New game requested for session: %s", sessionID)
	app.dropSession(sessionID)
	c.Redirect(http.StatusSeeOther, RouteHome)
}

// wsHandler upgrades the connection and runs one game session over it:
// presentation events and play commands go out, input intents and playback
// acks come in.
func (app *App) wsHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logWarn("Websocket upgrade failed for session %s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	sconn := &safeConn{conn: conn}
	transport := newWSTransport(sconn)
	listener := &wsListener{conn: sconn}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	selector := content.NewSelector(app.Catalog, rng)
	player := audio.NewService(transport, clock.System{}, app.AudioConfig, rng)
	orch := engine.New(selector, player, clock.System{}, listener, app.Timings)

	app.attachSession(sessionID, orch)
	defer app.detachSession(sessionID, orch)
	defer transport.Close()

	logInfo("Websocket connected for session: %s", sessionID)
	ctx := c.Request.Context()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logWarn("Websocket read error for session %s: %v", sessionID, err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logWarn("Malformed websocket message from session %s: %v", sessionID, err)
			continue
		}

		switch msg.Type {
		case MsgInit:
			listener.StatsChanged(orch.Stats())
			listener.InputChanged(false)

		case MsgStart:
			app.startGame(ctx, sessionID, orch)

		case MsgKey:
			var payload KeyPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				logWarn("Malformed key payload from session %s: %v", sessionID, err)
				continue
			}
			if payload.Key == KeyEnter || payload.Key == KeyReturn {
				app.startGame(ctx, sessionID, orch)
				continue
			}
			// Gated or malformed input is dropped silently, no queueing.
			orch.Submit(payload.Key)

		case MsgAudioEnded:
			var payload AckPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			transport.resolve(payload.ID, nil)

		case MsgAudioError:
			var payload AckPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			transport.resolve(payload.ID, ackError(payload))

		default:
			logWarn("Unknown websocket message type from session %s: %s", sessionID, msg.Type)
		}
	}
}

// startGame launches the engine loop; a loop already in flight is left
// alone (a restart is only valid once the previous game ended).
func (app *App) startGame(ctx context.Context, sessionID string, orch *engine.Orchestrator) {
	if err := orch.Start(ctx); err != nil {
		if !errors.Is(err, engine.ErrAlreadyRunning) {
			logWarn("Failed to start game for session %s: %v", sessionID, err)
		}
		return
	}
	logInfo("Game started for session: %s", sessionID)
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"env":       map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"letters":   app.Catalog.Len(),
		"words":     len(app.Catalog.WordKeys()),
		"uptime":    formatUptime(uptime),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
