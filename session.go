package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"literludo/internal/engine"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		secure := app.IsProduction
		c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", secure, true)
		logInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// attachSession registers the orchestrator for a session, stopping any
// engine a previous connection left behind.
func (app *App) attachSession(sessionID string, orch *engine.Orchestrator) {
	app.SessionMutex.Lock()
	old := app.Sessions[sessionID]
	app.Sessions[sessionID] = orch
	app.SessionMutex.Unlock()
	if old != nil {
		logInfo("Replacing game engine for session: %s", sessionID)
		old.Stop()
	}
}

// detachSession stops and removes the orchestrator for a session, but only
// if it is still the registered one (a newer connection may have replaced it).
func (app *App) detachSession(sessionID string, orch *engine.Orchestrator) {
	app.SessionMutex.Lock()
	if app.Sessions[sessionID] == orch {
		delete(app.Sessions, sessionID)
	}
	app.SessionMutex.Unlock()
	orch.Stop()
}

// dropSession stops and removes whatever engine a session has.
func (app *App) dropSession(sessionID string) {
	app.SessionMutex.Lock()
	orch := app.Sessions[sessionID]
	delete(app.Sessions, sessionID)
	app.SessionMutex.Unlock()
	if orch != nil {
		orch.Stop()
		logInfo("Cleared game engine for session: %s", sessionID)
	}
}
