package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"tvguide/api"
	"tvguide/config"
	"tvguide/handlers"
	"tvguide/services/epg"
	"tvguide/services/scheduler"
	"tvguide/services/session"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("📺 tvguide backend starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("TVGUIDE_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			defer fileWriter.Close()
			// Redirect standard log to both console and file
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}
	slog.SetLogLoggerLevel(parseLogLevel(settings.Log.Level))

	// Apply port override if specified
	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	epgService := epg.NewService(settings.Cache.Directory, cfgManager)
	sessionService := session.NewService(cfgManager, epgService)

	refreshScheduler := scheduler.NewService(cfgManager, epgService, epg.ErrDisabled, epg.ErrRefreshInProgress)
	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()
	if err := refreshScheduler.Start(rootCtx); err != nil {
		log.Fatalf("failed to start refresh scheduler: %v", err)
	}

	settingsHandler := handlers.NewSettingsHandler(cfgManager)
	settingsHandler.AddReloader("refresh scheduler", refreshScheduler)

	r := mux.NewRouter()
	api.Register(r,
		handlers.NewGuideHandler(epgService, sessionService, cfgManager, nil),
		handlers.NewEPGHandler(epgService),
		settingsHandler,
		handlers.NewScheduledTasksHandler(refreshScheduler),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for event streams
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Closing sessions ends their event streams so the server can drain.
	sessionService.CloseAll()

	if err := refreshScheduler.Stop(shutdownCtx); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	// Shutdown HTTP server gracefully
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
