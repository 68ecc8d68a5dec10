package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"Resona/internal/domain/repository"
	"Resona/internal/handler/api"
	mid "Resona/internal/middleware"
	internalrepo "Resona/internal/repository"
	"Resona/internal/service/biometric"
	icache "Resona/internal/service/cache"
	"Resona/internal/services/narrative"
	"Resona/internal/services/realm"
	"Resona/internal/usecase"
	pkgcache "Resona/pkg/cache"
	pkgch "Resona/pkg/clickhouse"
	"Resona/pkg/config"
	pkgkafka "Resona/pkg/kafka"
	applogger "Resona/pkg/logger"
	"Resona/pkg/metrics"
	"Resona/pkg/queue"
	"Resona/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	l, err := applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS resona",
		"CREATE TABLE IF NOT EXISTS resona.match_events (ts DateTime, chosen UInt8, matched UInt8, event_id String) ENGINE=ReplacingMergeTree ORDER BY (ts, event_id)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMatchStorage creates ClickHouse storage repository.
func ProvideMatchStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".match_events")
}

// ProvideMatchPublisher creates Kafka publisher repository.
func ProvideMatchPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaMatchesHandler registers handler for the matches topic.
func ProvideKafkaMatchesHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaMatchesHandler {
	return usecase.NewKafkaMatchesHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideBiometricStream creates the heart rate WebSocket stream.
func ProvideBiometricStream(cfg *config.Config) repository.BiometricStream {
	return biometric.New(
		cfg.Biometric.WebSocketURL,
		cfg.Biometric.ReconnectDelay,
		cfg.Biometric.PingInterval,
	)
}

// ProvideFocusSource creates the focus number holder seeded from config.
func ProvideFocusSource(cfg *config.Config) (*usecase.FocusSource, error) {
	return usecase.NewFocusSource(cfg.Focus.Number)
}

// ProvideRealmCalculator creates the realm number calculator.
func ProvideRealmCalculator() *realm.Calculator {
	return realm.NewCalculator(time.Local)
}

// ProvideMatchRecorder creates the match recorder use case.
func ProvideMatchRecorder(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.MatchRecorder {
	return usecase.NewMatchRecorder(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideRealmCollector creates the realm collector use case.
func ProvideRealmCollector(
	stream repository.BiometricStream,
	rec *usecase.MatchRecorder,
	metrics repository.Metrics,
	calc *realm.Calculator,
	focus *usecase.FocusSource,
) *usecase.RealmCollector {
	// Build middleware pipeline between the stream and the backend
	pipe := mid.NewMatchPipeline(rec, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewRealmCollector(stream, rec, metrics, pipe, calc, focus)
}

// ProvideMatchSource creates the ClickHouse read model for insights.
func ProvideMatchSource(chClient *pkgch.Client, l *applogger.Logger) repository.MatchSource {
	source := internalrepo.NewCHMatchSource(chClient)
	source.SetLogger(l)
	return source
}

// ProvideInsightsUseCase creates the insights use case.
func ProvideInsightsUseCase(source repository.MatchSource, cfg *config.Config) *usecase.InsightsUseCase {
	uc := usecase.NewInsightsUseCase(source, time.Local)
	if cfg.Insights.NarrativeURL != "" {
		uc.SetNarrative(narrative.NewClient(cfg.Insights.NarrativeURL, cfg.Insights.NarrativeTimeout))
	}
	return uc
}

// ProvideMatchesUseCase creates the raw matches use case.
func ProvideMatchesUseCase(source repository.MatchSource) *usecase.MatchesUseCase {
	return usecase.NewMatchesUseCase(source)
}

// ProvideCacheService creates the digest cache. Layered (memory + Redis)
// when Redis is enabled, plain memory otherwise.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Insights.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	host, port := splitAddr(cfg.Insights.Redis.Addr)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Insights.Redis.Password),
		pkgcache.WithRedisDB(cfg.Insights.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideDigestJob creates the digest recompute job.
func ProvideDigestJob(
	insights *usecase.InsightsUseCase,
	cache pkgcache.Service,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.DigestJob {
	return usecase.NewDigestJob(insights, cache, l, cfg.Digest.TTL)
}

// ProvideDigestQueue creates the Redis-backed digest queue. Returns nil when
// the digest worker is disabled or Redis is not configured.
func ProvideDigestQueue(cfg *config.Config, l *applogger.Logger, job *usecase.DigestJob) *queue.RedisQueue {
	if !cfg.Digest.Enabled || !cfg.Insights.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Insights.Redis.Addr,
		Password: cfg.Insights.Redis.Password,
		DB:       cfg.Insights.Redis.DB,
	})
	workers := cfg.Digest.Workers
	if workers <= 0 {
		workers = 1
	}
	return queue.NewRedisConsumer(l, &queue.QueueConfig{
		Workers:    workers,
		QueueSize:  100,
		RetryLimit: 3,
		RetryDelay: 5 * time.Second,
	}, client, []queue.Job{job})
}

// ProvideInsightsHandler creates the Echo HTTP handler.
func ProvideInsightsHandler(
	l *applogger.Logger,
	insights *usecase.InsightsUseCase,
	matches *usecase.MatchesUseCase,
	rec *usecase.MatchRecorder,
	focus *usecase.FocusSource,
	cache pkgcache.Service,
	respCache icache.BytesCache,
) *api.InsightsEchoHandler {
	h := api.NewInsightsEchoHandler(l, insights, matches, rec, focus)
	h.SetDigestCache(cache)
	h.SetResponseCache(respCache)
	return h
}

// ProvideResponseCache picks the rendered-response cache tier. Redis when
// configured so replicas share entries, in-process TTL cache otherwise.
func ProvideResponseCache(cfg *config.Config) icache.BytesCache {
	if cfg.Insights.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Insights.Redis.Addr,
			Password: cfg.Insights.Redis.Password,
			DB:       cfg.Insights.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.RealmCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaMatchesHandler,
	chClient *pkgch.Client,
	handler *api.InsightsEchoHandler,
	digestQueue *queue.RedisQueue,
	producer *pkgkafka.Producer,
) *server.App {
	// Attach hook to consumer: example NoopHook for now; can be replaced via config
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, l, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	app.SetDigestQueue(digestQueue)
	app.SetLogPublisher(producer)
	if collector != nil {
		app.Recorder = collector.Recorder()
	}
	return app
}

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 6379
	}
	return host, port
}
