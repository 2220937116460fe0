// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nutrition-workers/internal/combo"
	"nutrition-workers/internal/common/camunda"
	"nutrition-workers/internal/common/config"
	"nutrition-workers/internal/common/database"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/common/nlu"
	"nutrition-workers/internal/common/observability"
	"nutrition-workers/internal/resolver"
	"nutrition-workers/internal/storage/cache"
	"nutrition-workers/internal/storage/catalog"
	"nutrition-workers/internal/storage/combostore"
	"nutrition-workers/internal/storage/orders"
	analyzeorderhistory "nutrition-workers/internal/workers/analytics/analyze-order-history"
	trackcombofrequency "nutrition-workers/internal/workers/ingestion/track-combo-frequency"
	recommendbyingredients "nutrition-workers/internal/workers/recommendation/recommend-by-ingredients"
	recommendbyquery "nutrition-workers/internal/workers/recommendation/recommend-by-query"
	suggestcombos "nutrition-workers/internal/workers/recommendation/suggest-combos"
	"nutrition-workers/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting worker manager",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Broker connection ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var connErr error
		zeebe, connErr = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return connErr
	}, 5, 2*time.Second, zapLog, "connect to zeebe broker")
	if err != nil {
		zapLog.Fatal("could not connect to Zeebe broker", zap.Error(err))
	}
	defer zeebe.Close()

	// --- Data stores ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("could not open postgres", zap.Error(err))
	}
	defer pg.Close()
	err = retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return pg.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "ping postgres")
	if err != nil {
		zapLog.Fatal("postgres is unreachable", zap.Error(err))
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("could not create elasticsearch client", zap.Error(err))
	}
	err = retryWithBackoff(func() error {
		return es.Ping()
	}, 5, 2*time.Second, zapLog, "ping elasticsearch")
	if err != nil {
		zapLog.Fatal("elasticsearch is unreachable", zap.Error(err))
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("could not create redis client", zap.Error(err))
	}
	defer rdb.Close()
	err = retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return rdb.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "ping redis")
	if err != nil {
		// The response cache degrades to pass-through, so Redis being down
		// delays startup but does not block it.
		zapLog.Warn("redis is unreachable, caching disabled", zap.Error(err))
	}

	// --- Activity registry ---
	var activityRegistry *registry.ActivityRegistry
	if cfg.Registry.Path != "" {
		activityRegistry, err = registry.LoadRegistry(cfg.Registry.Path)
		if err != nil {
			zapLog.Warn("activity registry unavailable, schema validation disabled",
				zap.String("path", cfg.Registry.Path),
				zap.Error(err))
			activityRegistry = nil
		}
	}

	// --- Shared collaborators ---
	nluClient := nlu.NewClient(nlu.Config{
		BaseURL:    cfg.APIs.NLU.BaseURL,
		APIKey:     cfg.APIs.NLU.APIKey,
		Timeout:    time.Duration(cfg.APIs.NLU.Timeout) * time.Millisecond,
		MaxRetries: cfg.APIs.NLU.MaxRetries,
	}, log)
	criteriaResolver := resolver.New(nluClient, log)

	catalogStore := catalog.NewStore(es.Client, cfg.Database.Elasticsearch.MenuIndex, log)
	orderStore := orders.NewStore(pg.DB, log)
	comboStore := combostore.NewStore(pg.DB, log)
	responseCache := cache.New(rdb.Client,
		time.Duration(cfg.Recommendation.CacheTTLSeconds)*time.Second, log)
	comboRecommender := combo.NewRecommender(comboStore, catalogStore, log)

	// --- Worker registration ---
	var workers []*camunda.Worker
	register := func(taskType string, handler camunda.JobHandler) {
		handler = &observedHandler{inner: handler, obs: obs}
		wcfg, ok := cfg.Workers[taskType]
		if ok && !wcfg.Enabled {
			zapLog.Info("worker disabled by configuration", zap.String("taskType", taskType))
			return
		}
		maxJobs := wcfg.MaxJobsActive
		if maxJobs <= 0 {
			maxJobs = cfg.Camunda.MaxJobsActive
		}
		timeout := time.Duration(wcfg.Timeout) * time.Millisecond
		if timeout <= 0 {
			timeout = time.Duration(cfg.Camunda.Timeout) * time.Millisecond
		}
		workers = append(workers, camunda.NewWorker(
			zeebe.GetClient(), taskType, maxJobs, timeout, handler, activityRegistry, zapLog))
	}

	queryCfg := recommendbyquery.LoadConfig()
	register(recommendbyquery.TaskType,
		recommendbyquery.NewHandler(queryCfg, criteriaResolver, catalogStore, log))

	ingredientsCfg := recommendbyingredients.LoadConfig()
	if cfg.Recommendation.DefaultLimit > 0 {
		ingredientsCfg.DefaultLimit = cfg.Recommendation.DefaultLimit
	}
	if cfg.Recommendation.MaxLimit > 0 {
		ingredientsCfg.MaxLimit = cfg.Recommendation.MaxLimit
	}
	register(recommendbyingredients.TaskType,
		recommendbyingredients.NewHandler(ingredientsCfg, catalogStore, log))

	combosCfg := suggestcombos.LoadConfig()
	if cfg.Recommendation.ComboSuggestions > 0 {
		combosCfg.DefaultSuggestions = cfg.Recommendation.ComboSuggestions
	}
	register(suggestcombos.TaskType,
		suggestcombos.NewHandler(combosCfg, comboRecommender, responseCache, log))

	historyCfg := analyzeorderhistory.LoadConfig()
	register(analyzeorderhistory.TaskType,
		analyzeorderhistory.NewHandler(historyCfg, orderStore, log))

	frequencyCfg := trackcombofrequency.LoadConfig()
	register(trackcombofrequency.TaskType,
		trackcombofrequency.NewHandler(frequencyCfg, comboStore, log))

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health and metrics endpoints ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := zeebe.HealthCheck(ctx); err != nil {
			http.Error(w, "zeebe unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := pg.Ping(ctx); err != nil {
			http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		zapLog.Info("health server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("health server stopped", zap.Error(err))
		}
	}()

	// --- Wait for shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))

	for _, w := range workers {
		w.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("health server shutdown failed", zap.Error(err))
	}

	zapLog.Info("worker manager stopped")
}

// observedHandler records per-job OTel measurements around the wrapped
// handler.
type observedHandler struct {
	inner camunda.JobHandler
	obs   *observability.Observability
}

func (o *observedHandler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	o.inner.Handle(client, job)
	o.obs.RecordJobProcessed(context.Background(), "handled")
	o.obs.RecordJobDuration(context.Background(), time.Since(start), "handled")
}

// retryWithBackoff runs an operation with exponential backoff between
// attempts. Startup dependencies come up in arbitrary order under compose, so
// every external connection goes through here.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var lastErr error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if lastErr = operation(); lastErr == nil {
			if attempt > 1 {
				log.Info("operation succeeded after retry",
					zap.String("operation", operationName),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		log.Warn("operation failed, will retry",
			zap.String("operation", operationName),
			zap.Int("attempt", attempt),
			zap.Int("maxRetries", maxRetries),
			zap.Duration("nextDelay", delay),
			zap.Error(lastErr))

		if attempt < maxRetries {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, lastErr)
}
