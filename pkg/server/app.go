package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Resona/internal/usecase"
	pkgch "Resona/pkg/clickhouse"
	"Resona/pkg/config"
	xhttp "Resona/pkg/http"
	pkgkafka "Resona/pkg/kafka"
	applogger "Resona/pkg/logger"
	"Resona/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	collector   *usecase.RealmCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	digestQueue *queue.RedisQueue
	Recorder    *usecase.MatchRecorder
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.RealmCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetDigestQueue allows DI to inject the background digest queue.
func (a *App) SetDigestQueue(q *queue.RedisQueue) { a.digestQueue = q }

// SetLogPublisher attaches the log collector so repeated errors are
// aggregated and shipped to Kafka alongside the match stream.
func (a *App) SetLogPublisher(producer *pkgkafka.Producer) {
	if producer == nil || len(a.cfg.Kafka.Brokers) == 0 {
		return
	}
	a.logger.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          "resona.logs",
		Publisher:      &kafkaLogPublisher{producer: producer},
	})
}

// kafkaLogPublisher adapts the Kafka producer to the collector's interface.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (p *kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.String("stream", a.cfg.Biometric.WebSocketURL))

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start digest worker if configured
	if a.digestQueue != nil {
		if err := a.digestQueue.Start(); err != nil {
			l.Error("digest queue start error", applogger.Error(err))
		} else {
			a.digestQueue.StartRetryProcessor()
			go a.digestTicker(ctx)
			l.Info("digest worker started", applogger.Duration("interval_ms", a.digestInterval()))
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

func (a *App) digestInterval() time.Duration {
	if a.cfg.Digest.Interval > 0 {
		return a.cfg.Digest.Interval
	}
	return time.Hour
}

// digestTicker enqueues a recompute on startup and then on every interval.
// Stops when the run context is cancelled.
func (a *App) digestTicker(ctx context.Context) {
	enqueue := func() {
		eqCtx, eqCancel := context.WithTimeout(ctx, 10*time.Second)
		defer eqCancel()
		if err := a.digestQueue.Enqueue(eqCtx, usecase.DigestType, map[string]interface{}{
			"requested_at": time.Now().Unix(),
		}); err != nil {
			a.logger.Warn("digest enqueue error", applogger.Error(err))
		}
	}

	enqueue()
	ticker := time.NewTicker(a.digestInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop digest worker
	if a.digestQueue != nil {
		if err := a.digestQueue.Stop(shutdownCtx); err != nil {
			l.Warn("digest queue stop error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close recorder resources (publisher/storage)
	if a.Recorder != nil {
		a.Recorder.Close()
	}

	// Flush aggregated logs
	l.RemoveCollector()

	l.Info("shutdown complete")
	return nil
}
