package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/andrewdunn358-dev/Veteran-sub000/cmd/mainconfig"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/api/router"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/audit"
	appconfig "github.com/andrewdunn358-dev/Veteran-sub000/internal/config"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/http/handlers"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/notify"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/observability/metrics"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/session"
	"github.com/andrewdunn358-dev/Veteran-sub000/internal/triage"
	"github.com/andrewdunn358-dev/Veteran-sub000/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting veteran-support triage API",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	triageMetrics := metrics.NewTriageMetrics(prometheus.DefaultRegisterer)

	// Audit sinks: Postgres when a database is configured, SQS when a queue
	// is configured, structured log as the always-on fallback.
	var sinks []audit.Sink
	var auditQuerier handlers.AuditQuerier
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open audit database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		if err := db.PingContext(context.Background()); err != nil {
			logger.Error("failed to ping audit database", "error", err)
			os.Exit(1)
		}
		pgSink := audit.NewPostgresSink(db)
		sinks = append(sinks, pgSink)
		auditQuerier = pgSink
	}
	if cfg.AuditQueueURL != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, audit.NewSQSSink(sqs.NewFromConfig(awsCfg), cfg.AuditQueueURL))
	}
	if len(sinks) == 0 {
		logger.Warn("no durable audit sink configured, records go to the log only")
	}
	sinks = append(sinks, audit.NewLogSink(logger))

	emitter := audit.NewEmitter(logger, sinks...)
	emitter.OnFailure(triageMetrics.ObserveAuditFailure)

	engine, err := triage.NewEngine(triage.EngineConfig{
		LexiconPath:     cfg.LexiconPath,
		ResourcePath:    cfg.ResourcePath,
		ThresholdAmber:  cfg.ThresholdAmber,
		ThresholdRed:    cfg.ThresholdRed,
		EscalationBonus: cfg.EscalationBonus,
		TrendMinDelta:   cfg.TrendMinDelta,
		TrendOnlyFloor:  cfg.TrendOnlyFloor,
		WindowSize:      cfg.WindowSize,
		SessionTTL:      cfg.SessionTTL,
	}, emitter, triageMetrics, logger)
	if err != nil {
		logger.Error("failed to initialize triage engine", "error", err)
		os.Exit(1)
	}

	stopSweeper := engine.Tracker().StartSweeper(cfg.SessionSweepInterval)
	defer stopSweeper()

	// Optional session transcript store.
	var transcripts *session.TranscriptStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		transcripts = session.NewTranscriptStore(redis.NewClient(opts), cfg.TranscriptTTL, nil)
	}

	// Safeguarding email: prefer SendGrid, fall back to SES.
	var emailSender notify.EmailSender
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil {
		emailSender = sender
	} else if cfg.SESFromEmail != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
		if err != nil {
			logger.Error("failed to load AWS config for SES", "error", err)
			os.Exit(1)
		}
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			emailSender = sender
		}
	}
	notifier := notify.NewService(emailSender, cfg.SafeguardingEmail, logger)

	var transcriptAppender handlers.TranscriptAppender
	var transcriptLister handlers.TranscriptLister
	if transcripts != nil {
		transcriptAppender = transcripts
		transcriptLister = transcripts
	}

	triageHandler := handlers.NewTriageHandler(engine, notifier, transcriptAppender, logger)
	adminHandler := handlers.NewAdminHandler(auditQuerier, engine, transcriptLister, logger)

	r := router.New(&router.Config{
		Logger:          logger,
		TriageHandler:   triageHandler,
		AdminHandler:    adminHandler,
		AdminAuthSecret: cfg.AdminJWTSecret,
		MetricsHandler:  promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
