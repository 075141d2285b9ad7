package main

// Session configuration constants
const (
	SessionCookieName = "session_id"
)

// Route constants
const (
	RouteHome    = "/"
	RouteStatic  = "/static"
	RouteSocket  = "/ws"
	RouteNewGame = "/new-game"
	RouteHealthz = "/healthz"
)

// Websocket message types, client to server
const (
	MsgInit       = "INIT"
	MsgStart      = "START"
	MsgKey        = "KEY"
	MsgAudioEnded = "AUDIO_ENDED"
	MsgAudioError = "AUDIO_ERROR"
)

// Websocket message types, server to client
const (
	MsgEntry    = "ENTRY"
	MsgOptions  = "OPTIONS"
	MsgReveal   = "REVEAL"
	MsgFeedback = "FEEDBACK"
	MsgStats    = "STATS"
	MsgInput    = "INPUT"
	MsgPlay     = "PLAY"
	MsgStop     = "STOP"
	MsgGameOver = "GAME_OVER"
)

// Audio channel names on the PLAY command
const (
	ChannelPrimary = "primary"
	ChannelEffect  = "effect"
)

// Start keys accepted alongside letter input
const (
	KeyEnter  = "enter"
	KeyReturn = "return"
)

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)
