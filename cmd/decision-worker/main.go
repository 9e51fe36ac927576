// cmd/decision-worker/main.go
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

	"dealsense/internal/common/camunda"
	"dealsense/internal/common/config"
	"dealsense/internal/common/database"
	"dealsense/internal/common/logger"
	"dealsense/internal/common/observability"
	"dealsense/internal/decision/chain"
	"dealsense/internal/decision/engine"
	"dealsense/internal/decision/intent"
	entreg "dealsense/internal/entities"
	"dealsense/internal/llm"

	bcc "dealsense/internal/workers/decision/build-contract-chain"
	di "dealsense/internal/workers/decision/decide-intent"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting decision worker...")

	obs := observability.New("decision-worker")
	defer obs.Shutdown()

	ctx, cancelRefresher := context.WithCancel(context.Background())
	defer cancelRefresher()

	// --- Init Zeebe Client with retry ---
	var camClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         30 * time.Second,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init entity registry source per configuration ---
	var source entreg.Source
	switch cfg.Entities.Source {
	case "elasticsearch":
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		source = entreg.NewElasticSource(esClient.Client, cfg.Entities.SearchIndex, log)

	default:
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
		source = entreg.NewPostgresSource(pg.DB, log)
	}

	// --- Optional read-through cache in front of the source ---
	if cfg.Entities.CacheTTL > 0 {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
		source = entreg.NewCachedSource(source, redis.Client, time.Duration(cfg.Entities.CacheTTL)*time.Second, log)
	}

	refresher := entreg.NewRefresher(source, time.Duration(cfg.Entities.RefreshInterval)*time.Second, log)
	refresher.Start(ctx)
	zapLog.Info("Entity registry refresher started",
		zap.String("source", cfg.Entities.Source),
		zap.Int("refreshIntervalSec", cfg.Entities.RefreshInterval),
	)

	// --- Build the decision engine ---
	llmClient := llm.NewClient(cfg.LLM, log)
	classifier := intent.NewClassifier(llmClient, cfg.LLM.LowConfidenceThreshold, log)
	builder := chain.NewBuilder(log)
	eng := engine.New(classifier, builder, llmClient, refresher, log)

	// --- Register workers ---
	diLogAdapter := &decideIntentLoggerAdapter{log}
	bccLogAdapter := &buildContractChainLoggerAdapter{log}

	var activeWorkers []*camunda.CamundaWorker

	if wcfg := cfg.Workers[di.TaskType]; wcfg.Enabled {
		handler := di.NewHandler(
			&di.Config{
				Timeout: 30 * time.Second,
			},
			eng,
			diLogAdapter,
		)
		activeWorkers = append(activeWorkers, camunda.NewWorker(
			camClient.GetClient(),
			di.TaskType,
			workerOptions(wcfg),
			handler.Handle,
			zapLog,
		))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", di.TaskType))
	}

	if wcfg := cfg.Workers[bcc.TaskType]; wcfg.Enabled {
		handler := bcc.NewHandler(
			&bcc.Config{
				Timeout: 15 * time.Second,
			},
			eng,
			bccLogAdapter,
		)
		activeWorkers = append(activeWorkers, camunda.NewWorker(
			camClient.GetClient(),
			bcc.TaskType,
			workerOptions(wcfg),
			handler.Handle,
			zapLog,
		))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", bcc.TaskType))
	}

	zapLog.Info("All decision workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "broker unreachable",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":    "ready",
				"companies": len(refresher.Current().Companies),
				"time":      time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	cancelRefresher()

	for _, w := range activeWorkers {
		w.Stop()
	}

	if err := camClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Decision worker stopped gracefully")
}

func workerOptions(wcfg config.WorkerConfig) camunda.WorkerOptions {
	return camunda.WorkerOptions{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
	}
}

// Logger adapters for workers that declare their own Logger interfaces
type decideIntentLoggerAdapter struct {
	logger.Logger
}

func (a *decideIntentLoggerAdapter) With(fields map[string]interface{}) di.Logger {
	return &decideIntentLoggerAdapter{a.Logger.With(fields)}
}

type buildContractChainLoggerAdapter struct {
	logger.Logger
}

func (a *buildContractChainLoggerAdapter) With(fields map[string]interface{}) bcc.Logger {
	return &buildContractChainLoggerAdapter{a.Logger.With(fields)}
}
