// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclient "operator-assessment-workers/internal/common/aws"
	"operator-assessment-workers/internal/common/camunda"
	"operator-assessment-workers/internal/common/config"
	"operator-assessment-workers/internal/common/database"
	"operator-assessment-workers/internal/common/logger"
	"operator-assessment-workers/internal/common/observability"
	"operator-assessment-workers/internal/common/validation"
	"operator-assessment-workers/pkg/registry"

	coa "operator-assessment-workers/internal/workers/assessment/compute-operator-assessment"
	iar "operator-assessment-workers/internal/workers/assessment/index-assessment-result"
	lai "operator-assessment-workers/internal/workers/assessment/load-assessment-input"
	nar "operator-assessment-workers/internal/workers/assessment/notify-assessment-result"
	rac "operator-assessment-workers/internal/workers/assessment/rank-assessment-candidates"
	sar "operator-assessment-workers/internal/workers/assessment/store-assessment-result"
)

var connectRetry = &camunda.RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

func main() {
	boot := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLog.Sync() }()

	if err := run(cfg, logger.NewZapAdapter(zapLog)); err != nil {
		zapLog.Fatal("worker manager stopped", zap.Error(err))
	}
}

type deps struct {
	zeebe *camunda.Client
	pg    *database.PostgresClient
	redis *database.RedisClient
	es    *database.ElasticsearchClient
	obs   *observability.Observability
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting worker manager", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"scale":       cfg.Assessment.Scale,
	})

	d, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.close(log)

	if err := d.pg.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	reg, err := registry.LoadRegistry(cfg.Assessment.RegistryPath)
	if err != nil {
		return fmt.Errorf("load activity registry: %w", err)
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		return err
	}

	handlers, err := buildHandlers(ctx, cfg, d, validator, log)
	if err != nil {
		return err
	}

	var workers []*camunda.Worker
	for _, taskType := range reg.TaskTypes() {
		h, ok := handlers[taskType]
		if !ok {
			log.Warn("registry task type has no handler", map[string]interface{}{"taskType": taskType})
			continue
		}
		if !config.IsWorkerEnabled(cfg, taskType) {
			log.Info("worker disabled by configuration", map[string]interface{}{"taskType": taskType})
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.NewWorker(d.zeebe.GetClient(), taskType, h, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, log))
	}
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newMux(d),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping workers", nil)
	case err := <-srvErr:
		log.Error("http server failed", map[string]interface{}{"error": err.Error()})
	}

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("worker manager stopped", nil)
	return nil
}

func connect(ctx context.Context, cfg *config.Config, log logger.Logger) (*deps, error) {
	d := &deps{}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}
	d.obs = obs

	d.zeebe, err = camunda.NewClient(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig:            connectRetry,
	})
	if err != nil {
		d.close(log)
		return nil, err
	}
	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	d.pg, err = database.NewPostgres(cfg.Database.Postgres)
	if err == nil {
		_, err = camunda.Retry(ctx, connectRetry, "postgres ping", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, d.pg.Ping(ctx)
		})
	}
	if err != nil {
		d.close(log)
		return nil, fmt.Errorf("postgres: %w", err)
	}
	log.Info("postgres connected", nil)

	d.redis = database.NewRedis(cfg.Database.Redis)
	if _, err = camunda.Retry(ctx, connectRetry, "redis ping", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.redis.Ping(ctx)
	}); err != nil {
		d.close(log)
		return nil, fmt.Errorf("redis: %w", err)
	}
	log.Info("redis connected", nil)

	d.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err == nil {
		_, err = camunda.Retry(ctx, connectRetry, "elasticsearch ping", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, d.es.Ping(ctx)
		})
	}
	if err != nil {
		d.close(log)
		return nil, fmt.Errorf("elasticsearch: %w", err)
	}
	log.Info("elasticsearch connected", nil)

	return d, nil
}

func (d *deps) close(log logger.Logger) {
	if d.pg != nil {
		_ = d.pg.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.zeebe != nil {
		_ = d.zeebe.Close()
	}
	if err := d.obs.Shutdown(context.Background()); err != nil {
		log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}

func buildHandlers(ctx context.Context, cfg *config.Config, d *deps, validator *validation.Validator, log logger.Logger) (map[string]camunda.JobHandler, error) {
	compute, err := coa.NewHandler(coa.LoadConfig(cfg), validator, d.obs, log)
	if err != nil {
		return nil, err
	}

	notifyCfg := nar.LoadConfig(cfg)
	var sesClient awsclient.SESAPI
	var snsClient awsclient.SNSAPI
	if notifyCfg.EmailEnabled || notifyCfg.SMSEnabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		if notifyCfg.EmailEnabled {
			sesClient = awsclient.NewSESClient(awsCfg)
		}
		if notifyCfg.SMSEnabled {
			snsClient = awsclient.NewSNSClient(awsCfg)
		}
	}
	notify, err := nar.NewHandler(notifyCfg, sesClient, snsClient, log)
	if err != nil {
		return nil, err
	}

	return map[string]camunda.JobHandler{
		lai.TaskType: lai.NewHandler(lai.LoadConfig(cfg), d.pg.DB, d.redis.Client, log),
		coa.TaskType: compute,
		rac.TaskType: rac.NewHandler(rac.LoadConfig(cfg), d.pg.DB, d.redis.Client, log),
		sar.TaskType: sar.NewHandler(sar.LoadConfig(cfg), d.pg.DB, d.redis.Client, log),
		iar.TaskType: iar.NewHandler(iar.LoadConfig(cfg), d.es, log),
		nar.TaskType: notify,
	}, nil
}

func newMux(d *deps) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		for name, ping := range map[string]func(context.Context) error{
			"zeebe":         d.zeebe.HealthCheck,
			"postgres":      d.pg.Ping,
			"redis":         d.redis.Ping,
			"elasticsearch": d.es.Ping,
		} {
			if err := ping(ctx); err != nil {
				checks[name] = err.Error()
				ready = false
				continue
			}
			checks[name] = "ok"
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not ready", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{"status": status, "checks": checks})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
