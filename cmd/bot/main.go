package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/vanishbox/vanishbot/internal/config"
	"github.com/vanishbox/vanishbot/internal/forwarder"
	"github.com/vanishbox/vanishbot/internal/formatter"
	"github.com/vanishbox/vanishbot/internal/mailserver"
	"github.com/vanishbox/vanishbot/internal/parser"
	"github.com/vanishbox/vanishbot/internal/repository"
	"github.com/vanishbox/vanishbot/internal/storage"
	"github.com/vanishbox/vanishbot/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting disposable-email bot", "domain", cfg.MailDomain)

	// Open storage
	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("storage migrations completed")

	// Create repositories
	users := repository.NewUsers(store)
	boxes := repository.NewMailboxes(store)
	drafts := repository.NewBroadcasts(store, cfg.BroadcastDraftTTL)
	system := repository.NewSystem(store, cfg.StatsCacheTTL)

	// Create components
	htmlParser := parser.NewHTMLParser()
	codeDetector := parser.NewCodeDetector()
	tgFormatter := formatter.NewTelegramFormatter()
	fwd := forwarder.New(cfg.SMTPRelayAddr, cfg.SMTPRelayUsername, cfg.SMTPRelayPassword, logger)
	if fwd.Enabled() {
		logger.Info("mail forwarding enabled", "relay", cfg.SMTPRelayAddr)
	}

	// Create bot
	bot, err := telegram.NewBot(telegram.BotDeps{
		Config:     cfg,
		Users:      users,
		Mailboxes:  boxes,
		Broadcasts: drafts,
		System:     system,
		Forwarder:  fwd,
		HTMLParser: htmlParser,
		Codes:      codeDetector,
		Formatter:  tgFormatter,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Create inbound SMTP server
	mailSrv := mailserver.New(mailserver.Deps{
		Mailboxes:  boxes,
		Users:      users,
		Forwarder:  fwd,
		Notifier:   bot,
		HTMLParser: htmlParser,
		Domain:     cfg.MailDomain,
		Addr:       cfg.SMTPListenAddr,
		Logger:     logger,
	})

	go func() {
		if err := mailSrv.ListenAndServe(); err != nil {
			logger.Error("smtp server stopped", "error", err)
		}
	}()

	// Reclaim expired keys periodically
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := store.PurgeExpired(ctx); err != nil {
				logger.Error("failed to purge expired keys", "error", err)
			} else if n > 0 {
				logger.Debug("purged expired keys", "count", n)
			}
		}
	}()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		mailSrv.Close()
		cancel()
	}()

	// Start bot
	logger.Info("bot is running, press Ctrl+C to stop")
	bot.Start(ctx)

	logger.Info("bot stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
