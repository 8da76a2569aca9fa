package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/vyomfadia/contract-me/internal/app"
	"github.com/vyomfadia/contract-me/internal/authtoken"
	"github.com/vyomfadia/contract-me/internal/config"
	"github.com/vyomfadia/contract-me/internal/enrich"
	"github.com/vyomfadia/contract-me/internal/notify"
	"github.com/vyomfadia/contract-me/internal/ratelimit"
	"github.com/vyomfadia/contract-me/internal/server"
	"github.com/vyomfadia/contract-me/internal/store"
	"github.com/vyomfadia/contract-me/internal/util"
	"github.com/vyomfadia/contract-me/pkg/ai"
	"github.com/vyomfadia/contract-me/pkg/voice"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	tokenVerifier, err := authtoken.NewVerifier(authtoken.Config{
		Secret:   cfg.AuthSecret,
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
	})
	if err != nil {
		log.Fatalf("failed to init token verifier: %v", err)
	}

	var enricher ai.Enricher
	if cfg.AIBaseURL != "" {
		enricher = ai.NewLLMEnricher(ai.NewOpenAICompatGenerator(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel))
	}

	var voiceClient app.VoiceCaller
	if cfg.VoiceBaseURL != "" && cfg.VoiceAPIKey != "" {
		voiceClient = voice.NewClient(voice.Config{
			BaseURL:        cfg.VoiceBaseURL,
			APIKey:         cfg.VoiceAPIKey,
			AssistantID:    cfg.VoiceAssistantID,
			CallerNumberID: cfg.VoiceCallerNumberID,
		})
	}

	notifyQueue, err := notify.NewRedisQueue(notify.RedisQueueConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatalf("failed to init notification queue: %v", err)
	}

	enrichQueue, err := enrich.New(enrich.Config{
		URL:   cfg.AMQPURL,
		Queue: cfg.EnrichQueue,
	})
	if err != nil {
		log.Fatalf("failed to init enrichment queue: %v", err)
	}
	defer enrichQueue.Close()

	appCore := app.New(app.Deps{
		Store:       st,
		Enricher:    enricher,
		Voice:       voiceClient,
		Notifier:    notifyQueue,
		EnrichQueue: enrichQueue,
	}, app.Config{
		MaxOffers:    cfg.MaxOffers,
		OfferStagger: cfg.OfferStagger(),
	})

	// enrichment worker
	concurrency := cfg.EnrichConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	for i := 0; i < concurrency; i++ {
		go func() {
			if err := enrichQueue.Consume(ctx, func(ctx context.Context, task enrich.Task) error {
				return appCore.ProcessEnrichment(ctx, task.IssueID)
			}); err != nil && ctx.Err() == nil {
				slog.Error("enrichment consumer stopped", "error", err)
			}
		}()
	}

	// notification worker
	notifyQueue.Start(ctx, cfg.NotifyConcurrency, func(ctx context.Context, n notify.Notification) error {
		if voiceClient == nil {
			slog.Info("voice disabled, dropping notification", "id", n.ID)
			return nil
		}
		appointmentAt := ""
		if n.AppointmentAt != nil {
			appointmentAt = n.AppointmentAt.Format("Monday, January 2 at 3:04 PM")
		}
		_, err := voiceClient.PlaceNotificationCall(ctx, voice.NotificationParams{
			PhoneNumber:    n.PhoneNumber,
			CustomerName:   n.CustomerName,
			ContractorName: n.ContractorName,
			JobTitle:       n.IssueTitle,
			AppointmentAt:  appointmentAt,
			QuotedPrice:    n.QuotedPrice,
		})
		return err
	})

	var submitLimiter, webhookLimiter *ratelimit.FixedWindowLimiter
	if cfg.RateLimitPerMin > 0 {
		submitLimiter, err = ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "contractme:ratelimit:issues",
			cfg.RateLimitPerMin, time.Minute)
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
		webhookLimiter, err = ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "contractme:ratelimit:webhook",
			cfg.RateLimitPerMin, time.Minute)
		if err != nil {
			log.Fatalf("failed to init webhook rate limiter: %v", err)
		}
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		TokenVerifier:  tokenVerifier,
		WebhookSecret:  cfg.VoiceWebhookSecret,
		InternalToken:  cfg.InternalToken,
		SubmitLimiter:  submitLimiter,
		WebhookLimiter: webhookLimiter,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("contractme server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
