package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atlasai/outbound/internal/config"
	"github.com/atlasai/outbound/internal/infra/database"
	"github.com/atlasai/outbound/internal/infra/discovery"
	"github.com/atlasai/outbound/internal/infra/http/handlers"
	"github.com/atlasai/outbound/internal/infra/http/middleware"
	"github.com/atlasai/outbound/internal/infra/integration/linkedin"
	"github.com/atlasai/outbound/internal/infra/integration/mailgun"
	"github.com/atlasai/outbound/internal/infra/integration/twilio"
	"github.com/atlasai/outbound/internal/infra/mail"
	"github.com/atlasai/outbound/internal/infra/queue"
	"github.com/atlasai/outbound/internal/infra/report"
	"github.com/atlasai/outbound/internal/usecase"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	leadRepo := database.NewLeadRepository(db)
	messageRepo := database.NewMessageRepository(db)
	eventRepo := database.NewTrackingEventRepository(db)
	metricRepo := database.NewMetricRepository(db)

	// Seed the send gate from persisted history so a restart cannot reset
	// the daily budget.
	seed, err := messageRepo.SentTimestampsSince(ctx, time.Now().Add(-25*time.Hour))
	if err != nil {
		logger.Fatal("loading send history failed", zap.Error(err))
	}
	gate := usecase.NewSendGate(cfg.Dispatcher.DailyLimit, cfg.Dispatcher.HourlyLimit, seed)

	var emailProviders []usecase.EmailProvider
	if cfg.SendGrid.APIKey != "" {
		emailProviders = append(emailProviders, mail.NewSendGridSender(cfg.SendGrid))
	}
	if cfg.Mailgun.APIKey != "" {
		emailProviders = append(emailProviders, mailgun.NewClient(cfg.Mailgun))
	}
	if cfg.SMTP.User != "" {
		emailProviders = append(emailProviders, mail.NewSMTPSender(cfg.SMTP))
	}

	var social usecase.SocialProvider
	if cfg.LinkedIn.AccessToken != "" {
		social = linkedin.NewClient(cfg.LinkedIn)
	}
	var sms usecase.MessagingProvider
	if cfg.Twilio.AccountSID != "" {
		sms = twilio.NewClient(cfg.Twilio)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	scorer := usecase.NewScorer(usecase.DefaultScoringRules(), leadRepo, logger)
	composer := usecase.NewComposer(usecase.DefaultTemplates(), messageRepo, rnd, logger)
	dispatcher := usecase.NewDispatcher(messageRepo, leadRepo, metricRepo,
		emailProviders, social, sms, gate, cfg.Dispatcher, cfg.TrackingBaseURL, rnd, logger)
	tracker := usecase.NewTracker(eventRepo, messageRepo, leadRepo, metricRepo, logger)
	reporter := usecase.NewReporter(tracker, leadRepo, messageRepo,
		report.NewFileWriter(cfg.ReportDir), cfg.Composer.Campaigns,
		cfg.Tracking.ReportDays, cfg.Optimization, logger)
	finder := usecase.NewFinder(discovery.NewSyntheticSource(time.Now().UnixNano()),
		leadRepo, cfg.Discovery, logger)

	// With a broker the HTTP layer publishes engagement events and the
	// worker ingests them; without one ingestion is synchronous.
	var sink usecase.EventSink
	if cfg.AMQPURL != "" {
		mq, err := queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			logger.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		defer mq.Close()

		sink = queue.NewProducer(mq.Ch)
		worker := queue.NewWorker(mq.Ch, tracker, logger)
		go func() {
			if err := worker.Start(ctx); err != nil {
				logger.Error("engagement worker stopped", zap.Error(err))
			}
		}()
	} else {
		sink = &usecase.SinkAdapter{Tracker: tracker}
	}

	orchestrator := usecase.NewOrchestrator(finder, scorer, composer,
		dispatcher, tracker, reporter, leadRepo, messageRepo, cfg, logger)
	orchestrator.Start(ctx)
	defer orchestrator.Stop()

	trackingHandler := handlers.NewTrackingHandler(sink, logger)
	webhookHandler := handlers.NewWebhookHandler(sink, logger)
	leadHandler := handlers.NewLeadHandler(leadRepo, tracker, logger)
	opsHandler := handlers.NewOpsHandler(messageRepo, gate, orchestrator, reporter, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/t/o/{trackingID}", trackingHandler.HandleOpen)
	r.Get("/t/c/{trackingID}", trackingHandler.HandleClick)
	r.Post("/webhooks/email", webhookHandler.HandleEmail)
	r.Post("/leads", leadHandler.HandleCreate)
	r.Get("/leads/{leadID}", leadHandler.HandleGet)
	r.Get("/leads/{leadID}/engagement", leadHandler.HandleEngagement)
	r.Get("/status", opsHandler.HandleStatus)
	r.Post("/messages/requeue", opsHandler.HandleRequeue)
	r.Post("/reports/generate", opsHandler.HandleGenerateReport)
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: cfg.Addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
