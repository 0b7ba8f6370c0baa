// cmd/dispatcher/main.go
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

	"email-dispatch/internal/common/config"
	"email-dispatch/internal/common/logger"
	"email-dispatch/internal/dispatch"
	"email-dispatch/internal/request"
	"email-dispatch/internal/retry"
	"email-dispatch/internal/store"
	"email-dispatch/internal/template"
	"email-dispatch/internal/transport"
	"email-dispatch/internal/trigger"
	"email-dispatch/pkg/registry"
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

// timeoutHandler bounds each record's processing time so one slow delivery
// cannot stall the whole consumer batch.
type timeoutHandler struct {
	inner   trigger.Handler
	timeout time.Duration
}

func (h *timeoutHandler) Process(ctx context.Context, collection, id string, doc store.Document) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	return h.inner.Process(ctx, collection, id, doc)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting email dispatcher...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// --- Init Redis document store with retry ---
	var docs *store.RedisStore
	err = retryWithBackoff(func() error {
		docs = store.NewRedis(cfg.Redis)
		// Test the connection with context
		return docs.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer docs.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init mail transport ---
	var mailer transport.Mailer
	switch cfg.Transport.Provider {
	case "ses":
		mailer, err = transport.NewSESMailer(ctx, cfg.Transport.SES.Region)
		if err != nil {
			zapLog.Fatal("ses client initialization failed", zap.Error(err))
		}
	default:
		mailer = transport.NewSMTPMailer(cfg.Transport.SMTP, cfg.Transport.FromName)
	}
	zapLog.Info("Mail transport initialized", zap.String("provider", cfg.Transport.Provider))

	// --- Load templates ---
	templates := template.Builtin()
	if cfg.Templates.RegistryPath != "" {
		templates, err = registry.LoadTemplates(cfg.Templates.RegistryPath)
		if err != nil {
			zapLog.Fatal("template registry load failed", zap.Error(err))
		}
		zapLog.Info("Template registry loaded", zap.String("path", cfg.Templates.RegistryPath))
	}

	// --- Build the dispatch pipeline ---
	service := dispatch.NewService(dispatch.ServiceDependencies{
		Store:     docs,
		Mailer:    mailer,
		Templates: templates,
		Logger:    log,
	}, &dispatch.Config{
		FromAddress:     cfg.Transport.FromAddress,
		AppName:         cfg.App.Name,
		DefaultLanguage: cfg.Dispatch.DefaultLanguage,
		DefaultEngine:   cfg.Dispatch.DefaultEngine,
		UserCollection:  cfg.Trigger.UserCollection,
		Limits: request.Limits{
			MaxRecipients:     cfg.Dispatch.MaxRecipients,
			MaxDocumentSizeKB: cfg.Dispatch.MaxDocumentSizeKB,
		},
		Retry: retry.Options{
			MaxAttempts:   cfg.Dispatch.MaxRetries,
			InitialDelay:  cfg.Dispatch.RetryDelay(),
			BackoffFactor: cfg.Dispatch.BackoffFactor,
		},
	})

	handler := &timeoutHandler{
		inner:   service,
		timeout: time.Duration(cfg.Dispatch.InvocationTimeout) * time.Millisecond,
	}

	consumer := trigger.NewConsumer(docs.Client(), docs, handler, cfg.Trigger, log)

	// --- Health & Metrics Server ---
	if cfg.Metrics.Enabled {
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
				if err := docs.Ping(r.Context()); err != nil {
					w.WriteHeader(http.StatusServiceUnavailable)
					json.NewEncoder(w).Encode(map[string]string{
						"status": "not ready",
						"error":  err.Error(),
					})
					return
				}
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "ready",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Run the consumer until a shutdown signal arrives ---
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- consumer.Run(runCtx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, stopping consumer...", zap.String("signal", sig.String()))
		stop()
		select {
		case <-done:
		case <-time.After(30 * time.Second):
			zapLog.Warn("Consumer did not stop within the shutdown deadline")
		}
	case err := <-done:
		stop()
		if err != nil && err != context.Canceled {
			zapLog.Fatal("consumer stopped unexpectedly", zap.Error(err))
		}
	}

	zapLog.Info("Email dispatcher stopped gracefully")
}
