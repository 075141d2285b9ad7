package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	ginGzip "github.com/gin-contrib/gzip"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"literludo/internal/audio"
	"literludo/internal/engine"
)

func main() {
	_ = godotenv.Load()

	app := &App{
		Sessions:       make(map[string]*engine.Orchestrator),
		LimiterMap:     make(map[string]*rate.Limiter),
		Timings:        engine.DefaultTimings(),
		AudioConfig:    audio.DefaultConfig(),
		IsProduction:   os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production",
		StartTime:      time.Now(),
		StaticDir:      getEnvString("STATIC_DIR", "static"),
		CookieMaxAge:   getEnvDuration("COOKIE_MAX_AGE", 2*time.Hour),
		StaticCacheAge: getEnvDuration("STATIC_CACHE_AGE", 5*time.Minute),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}
	app.AudioDir = filepath.Join(app.StaticDir, "audio")

	logInfo("Starting Literludo in %s mode", map[bool]string{true: "production", false: "development"}[app.IsProduction])

	catalog, err := loadCatalog(filepath.Join(app.StaticDir, "images"))
	if err != nil {
		logFatal("Failed to load picture catalog: %v", err)
	}
	app.Catalog = catalog
	verifyAudioClips(catalog, app.AudioDir)

	router := gin.Default()

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".webp", ".gif", ".mp3"})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(requestIDMiddleware())
	router.Use(func(c *gin.Context) {
		app.applyCacheHeaders(c)
	})

	router.Static(RouteStatic, app.StaticDir)

	router.GET(RouteHome, app.homeHandler)
	router.GET(RouteSocket, app.wsHandler)
	router.GET(RouteNewGame, app.newGameHandler)
	router.POST(RouteNewGame, app.rateLimitMiddleware(), app.newGameHandler)
	router.GET(RouteHealthz, app.healthzHandler)

	startServer(router)
}

// applyCacheHeaders serves static media with long-lived caching in
// production and disables caching everywhere else.
func (app *App) applyCacheHeaders(c *gin.Context) {
	if app.IsProduction && strings.HasPrefix(c.Request.URL.Path, RouteStatic+"/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(app.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}

func startServer(router *gin.Engine) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	// No Read/WriteTimeout: the websocket connection is long-lived.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}
