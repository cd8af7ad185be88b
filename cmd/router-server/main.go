// cmd/router-server/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tourism-router/internal/adapters"
	"tourism-router/internal/adapters/community"
	"tourism-router/internal/adapters/genai"
	"tourism-router/internal/adapters/localkb"
	"tourism-router/internal/adapters/officialsites"
	"tourism-router/internal/adapters/partners"
	"tourism-router/internal/adapters/websearch"
	"tourism-router/internal/classify"
	awsclient "tourism-router/internal/common/aws"
	"tourism-router/internal/common/config"
	"tourism-router/internal/common/database"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/common/observability"
	"tourism-router/internal/decide"
	"tourism-router/internal/feedback"
	"tourism-router/internal/orchestrate"
	"tourism-router/internal/router"
	"tourism-router/internal/score"
	"tourism-router/internal/session"
	"tourism-router/internal/synthesize"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting tourism router...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("tourism-router")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Redis with retry (required: sessions cache + community) ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init PostgreSQL (optional: partners adapter degrades without it) ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Warn("postgres unavailable, partners source disabled", zap.Error(err))
		pg = nil
	} else {
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Elasticsearch (optional: official-sites degrades without it) ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Warn("elasticsearch unavailable, official-sites source disabled", zap.Error(err))
		esClient = nil
	} else {
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Knowledge source pool ---
	pool := []adapters.Adapter{
		localkb.New(5),
		websearch.New(cfg.Adapters.WebSearch, log),
		community.New(cfg.Adapters.Community, redisClient.GetClient(), log),
	}
	if pg != nil {
		pool = append(pool, partners.New(cfg.Adapters.Partners, pg.GetDB(), log))
	}
	if esClient != nil {
		pool = append(pool, officialsites.New(cfg.Adapters.OfficialSites, esClient.Client, log))
	}

	generator := genai.New(cfg.Adapters.GenAI, log)

	trust := make(map[string]float64, len(pool)+1)
	for _, a := range pool {
		trust[a.ID()] = a.TrustWeight()
	}
	trust[generator.ID()] = generator.TrustWeight()

	localSources := []string{localkb.SourceID, partners.SourceID, community.SourceID}

	// --- Learning store ---
	store := feedback.NewStore(feedback.DefaultFactShapes(), log)
	defer store.Close()

	if pg != nil {
		if err := store.LoadFromPostgres(ctx, pg); err != nil {
			zapLog.Warn("learning state load failed, starting empty", zap.Error(err))
		}
	}

	go runPatternCleanup(ctx, store, cfg.Feedback, zapLog)
	if pg != nil {
		go runPersistence(ctx, store, pg, zapLog)
	}

	if cfg.Feedback.Report.Enabled {
		sesClient, err := awsclient.NewSESClient(ctx, cfg.Feedback.Report.AWSRegion)
		if err != nil {
			zapLog.Warn("SES init failed, learning reports disabled", zap.Error(err))
		} else {
			reporter := feedback.NewReporter(store, sesClient,
				cfg.Feedback.Report.FromEmail, cfg.Feedback.Report.Recipients, log)
			go reporter.Run(ctx, time.Duration(cfg.Feedback.Report.Interval)*time.Millisecond)
		}
	}

	// --- Pipeline ---
	sessions := session.NewStore(cfg.Session, log)

	rt := router.New(cfg.Router, router.Deps{
		Classifier:   classify.New(),
		Orchestrator: orchestrate.New(time.Duration(cfg.Router.AdapterTimeout)*time.Millisecond, log),
		Adapters:     pool,
		Generator:    generator,
		GenPolicy: adapters.RetryPolicy{
			MaxRetries:     cfg.Adapters.GenAI.MaxRetries,
			InitialBackoff: 100,
		},
		Scorer:        score.New(cfg.Router.Scoring, trust),
		Engine:        decide.New(cfg.Router.Thresholds, localSources),
		Synthesizer:   synthesize.New(cfg.Router.Scoring, store, feedback.DefaultFactShapes(), localSources, log),
		Feedback:      store,
		Sessions:      sessions,
		Cache:         redisClient,
		Observability: obs,
	}, log)

	// --- HTTP server ---
	mux := http.NewServeMux()

	api := &apiServer{router: rt, logger: log}
	api.register(mux)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	if pg != nil {
		if err := store.SaveToPostgres(shutdownCtx, pg); err != nil {
			zapLog.Error("final learning state save failed", zap.Error(err))
		}
	}

	zapLog.Info("Tourism router stopped gracefully")
}

// runPatternCleanup evicts stale, rarely used patterns on a ticker.
func runPatternCleanup(ctx context.Context, store *feedback.Store, cfg config.FeedbackConfig, log *zap.Logger) {
	interval := time.Duration(cfg.CleanupInterval) * time.Millisecond
	if interval <= 0 {
		return
	}
	maxAge := time.Duration(cfg.MaxPatternAge) * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			evicted := store.Cleanup(maxAge, cfg.MinPatternUsage)
			log.Debug("pattern cleanup pass", zap.Int("evicted", evicted))
		case <-ctx.Done():
			return
		}
	}
}

// runPersistence snapshots the learning store to Postgres periodically.
// Failures are logged and retried on the next tick.
func runPersistence(ctx context.Context, store *feedback.Store, pg *database.PostgresClient, log *zap.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := store.SaveToPostgres(ctx, pg); err != nil {
				log.Warn("learning state save failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
