package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"finsight/src/features/config"
	"finsight/src/features/hosting"
	"finsight/src/features/logging"
	"finsight/src/features/recording"
	"finsight/src/features/stats"
	"finsight/src/infra/catalog"
	"finsight/src/infra/identity"
	"finsight/src/infra/store"
	"finsight/src/listening"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Create the session store
	sessionStore, err := store.NewFileStore(cfgManager.Get().DataPath)
	if err != nil {
		log.Fatalf("failed to create session store: %v", err)
	}

	// Open the media catalog read-only
	var mediaCatalog listening.Catalog
	if path := cfgManager.Get().Catalog.DatabasePath; path != "" {
		sqliteCatalog, err := catalog.NewSqliteCatalog(path)
		if err != nil {
			log.Fatalf("failed to open media catalog: %v", err)
		}
		defer sqliteCatalog.Close()
		mediaCatalog = sqliteCatalog
	} else {
		slog.Warn("No catalog database configured; genre stats will be empty")
		mediaCatalog = catalog.Empty{}
	}

	identityClient := identity.NewHostClient(cfgManager.Get().Host.URL)

	// Create the stats and recording services
	statsService := stats.NewService(sessionStore, mediaCatalog)
	recordingService := recording.NewService(sessionStore, cfgManager)

	// Start the spool watcher if enabled
	if cfgManager.Get().Spool.Enabled {
		watcher, err := recording.NewSpoolWatcher(recordingService, cfgManager.Get().Spool.Path)
		if err != nil {
			slog.Error("Failed to initialize spool watcher", "error", err)
		} else if err := watcher.Start(context.Background()); err != nil {
			slog.Error("Failed to start spool watcher", "error", err)
		} else {
			defer watcher.Stop()
			slog.Info("Spool watcher started", "path", cfgManager.Get().Spool.Path)
		}
	}

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	if cfgManager.Get().Telegram.Enabled {
		var err error
		telegramBot, err = hosting.NewTelegramBot(cfgManager, statsService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			slog.Info("Telegram bot started")
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, statsService, recordingService, identityClient)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	// Shutdown the Telegram bot
	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	// Shutdown the server
	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
