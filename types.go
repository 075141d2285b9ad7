package main

import (
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"literludo/internal/audio"
	"literludo/internal/content"
	"literludo/internal/engine"
)

type contextKey string

// App carries the shared server state: the picture catalog, the per-session
// game engines, and the runtime configuration.
type App struct {
	Catalog *content.Catalog

	Sessions     map[string]*engine.Orchestrator
	SessionMutex sync.RWMutex

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex

	Timings     engine.Timings
	AudioConfig audio.Config

	IsProduction   bool
	StartTime      time.Time
	StaticDir      string
	AudioDir       string
	CookieMaxAge   time.Duration
	StaticCacheAge time.Duration
	RateLimitRPS   int
	RateLimitBurst int
}

// WSMessage is the envelope for every websocket frame in both directions.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// KeyPayload carries a single key press from the client.
type KeyPayload struct {
	Key string `json:"key"`
}

// AckPayload identifies a playback on AUDIO_ENDED / AUDIO_ERROR messages.
type AckPayload struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// PlayPayload instructs the client to start one clip.
type PlayPayload struct {
	ID      string  `json:"id"`
	Path    string  `json:"path"`
	Channel string  `json:"channel"`
	Volume  float64 `json:"volume,omitempty"`
}

// StopPayload tells the client to halt a clip it was asked to play.
type StopPayload struct {
	ID string `json:"id"`
}

// OptionsPayload publishes the letter choices for the current round.
type OptionsPayload struct {
	Options []string `json:"options"`
}

// RevealPayload publishes one progressive option reveal.
type RevealPayload struct {
	Index  int    `json:"index"`
	Letter string `json:"letter"`
}

// FeedbackPayload publishes the pending feedback text, empty when cleared.
type FeedbackPayload struct {
	Text string `json:"text"`
}

// InputPayload publishes whether the input window is open.
type InputPayload struct {
	Enabled bool `json:"enabled"`
}
