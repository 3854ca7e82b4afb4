package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"tournament_scheduler/internal/app"
	"tournament_scheduler/internal/domain/notification"
	domaintelegram "tournament_scheduler/internal/domain/telegram"
	"tournament_scheduler/internal/infra/config"
	idb "tournament_scheduler/internal/infra/database"
	"tournament_scheduler/internal/infra/httpapi"
	"tournament_scheduler/internal/infra/lock"
	"tournament_scheduler/internal/infra/logger"
	"tournament_scheduler/internal/infra/mongodb"
	"tournament_scheduler/internal/infra/scheduler"
	"tournament_scheduler/internal/infra/telegram"
)

const shutdownTimeout = 30 * time.Second

func main() {
	fmt.Println("Tournament scheduler starting...")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// MongoDB: tournaments, registrations, notifications, announcements
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MongoDatabase, logger.Component("mongodb"))
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			mainLogger.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()

	tournamentRepo := mongodb.NewTournamentRepository(mongoClient.Collection(cfg.TournamentsCollection))
	registrationRepo := mongodb.NewRegistrationRepository(mongoClient.Collection(cfg.RegistrationsCollection))
	sink := mongodb.NewNotificationSink(
		mongoClient.Collection(cfg.NotificationsCollection),
		mongoClient.Collection(cfg.AnnouncementsCollection),
	)

	// Postgres ledgers are optional; without them there are no retries or stored reports.
	var failureRepo notification.FailureRepository
	var sweepLedger app.SweepLedger
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to database")
		}
		defer db.Close()
		if err := idb.EnsureSchema(ctx, db); err != nil {
			mainLogger.WithError(err).Fatal("Could not prepare ledger schema")
		}
		failureRepo = idb.NewPostgresNotificationFailureRepository(db)
		sweepLedger = idb.NewPostgresSweepReportRepository(db)
		mainLogger.Info("Postgres ledgers initialized")
	} else {
		mainLogger.Warn("DATABASE_URL not set; notification retries and sweep reports are disabled")
	}

	// Sweep lease
	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.RedisAddr != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, "tournament_scheduler:lock:")
		mainLogger.Info("Using Redis sweep lease")
	}

	manager := app.NewStatusManager(tournamentRepo, registrationRepo, sink, failureRepo, app.Policy{
		CompletionWindow:  cfg.CompletionWindow,
		SweepConcurrency:  cfg.SweepConcurrency,
		FanoutConcurrency: cfg.FanoutConcurrency,
		FanoutTimeout:     cfg.FanoutTimeout,
	}, logger.Component("status_manager"))

	// Telegram admin bot
	var bot *telebot.Bot
	var notifier domaintelegram.AdminNotifier
	if cfg.TelegramToken != "" {
		botLogger := logger.Component("telebot")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{"message": c.Text(), "sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		notifier = telegram.NewTelebotAdapter(bot, cfg.AdminTelegramID)
	}

	retrySpec := ""
	if failureRepo != nil {
		retrySpec = cfg.CronSpecNotificationRetry
	}
	sched := scheduler.NewTournamentScheduler(manager, locker, sweepLedger, notifier, scheduler.Config{
		SweepSpec:        cfg.CronSpecSweep,
		RetrySpec:        retrySpec,
		SweepTimeout:     cfg.SweepTimeout,
		RetryMaxAttempts: cfg.NotificationRetryMaxAttempts,
		RetryBatch:       cfg.NotificationRetryBatch,
	}, logrus.NewEntry(logger.Get()))
	if err := sched.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	adminService := app.NewAdminService(manager, sched, sweepLedger, cfg.AdminTelegramID).
		WithManualStartTimeout(cfg.ManualStartTimeout)

	if bot != nil {
		handlerLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, handlerLogger)
		telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, handlerLogger)
		go bot.Start()
		mainLogger.Info("Telegram admin bot started")
	}

	var httpServer *http.Server
	if cfg.AdminAPIToken != "" {
		httpServer = httpapi.NewServer(adminService, cfg.AdminTelegramID, cfg.AdminAPIToken, logrus.NewEntry(logger.Get())).
			HTTPServer(cfg.HTTPListenAddr)
		go func() {
			mainLogger.WithField("addr", cfg.HTTPListenAddr).Info("Admin HTTP API listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLogger.WithError(err).Error("Admin HTTP API stopped unexpectedly")
				stop()
			}
		}()
	} else {
		mainLogger.Info("ADMIN_API_TOKEN not set; admin HTTP API disabled")
	}

	mainLogger.Info("Application setup complete")
	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("Admin HTTP API did not shut down cleanly")
		}
	}
	if bot != nil {
		bot.Stop()
	}
	sched.Stop()
	mainLogger.Info("Application shut down gracefully")
}
