package di

import (
	"fmt"

	"CryptoIntel/internal/domain/repository"
	"CryptoIntel/internal/handler/api"
	"CryptoIntel/internal/handler/ws"
	internalrepo "CryptoIntel/internal/repository"
	"CryptoIntel/internal/service/chains"
	"CryptoIntel/internal/service/market"
	"CryptoIntel/internal/service/news"
	"CryptoIntel/internal/service/ratelimit"
	"CryptoIntel/internal/service/sentiment"
	"CryptoIntel/internal/service/whales"
	"CryptoIntel/internal/usecase"
	"CryptoIntel/pkg/cache"
	"CryptoIntel/pkg/config"
	xhttp "CryptoIntel/pkg/http"
	pkgkafka "CryptoIntel/pkg/kafka"
	xlogger "CryptoIntel/pkg/logger"
	"CryptoIntel/pkg/metrics"
	"CryptoIntel/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	return xlogger.New(&xlogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the configured cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(), nil

	case "redis":
		return newRedisCache(cfg)

	case "layered":
		redisCache, err := newRedisCache(cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(redisCache), nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func newRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	r := cfg.Cache.Redis
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(r.Host),
		cache.WithRedisPort(r.Port),
		cache.WithRedisPassword(r.Password),
		cache.WithRedisDB(r.DB),
		cache.WithRedisPool(r.PoolSize, r.MinIdleConns, r.PoolTimeout),
		cache.WithRedisPrefix(r.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideRateLimiter creates the shared upstream rate limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideMarketService creates the CoinGecko market adapter.
func ProvideMarketService(cfg *config.Config, backend cache.Service, limiter *ratelimit.Limiter, logger *xlogger.Logger, m repository.Metrics) *market.Service {
	return market.New(
		market.Config{
			BaseURL: cfg.Sources.Market.BaseURL,
			TTL:     cfg.Sources.Market.TTL,
			TopN:    cfg.Sources.Market.TopN,
		},
		backend,
		xhttp.NewClient(xhttp.WithTimeout(cfg.Sources.Market.FetchTimeout)),
		limiter, logger, m,
	)
}

// ProvideSentimentService creates the Fear & Greed adapter.
func ProvideSentimentService(cfg *config.Config, backend cache.Service, logger *xlogger.Logger, m repository.Metrics) *sentiment.Service {
	return sentiment.New(
		sentiment.Config{
			BaseURL: cfg.Sources.Sentiment.BaseURL,
			TTL:     cfg.Sources.Sentiment.TTL,
		},
		backend,
		xhttp.NewClient(xhttp.WithTimeout(cfg.Sources.Sentiment.FetchTimeout)),
		logger, m,
	)
}

// ProvideWhaleTracker creates the whale transfer tracker.
func ProvideWhaleTracker(cfg *config.Config, backend cache.Service, logger *xlogger.Logger, m repository.Metrics) *whales.Tracker {
	return whales.New(
		whales.Config{
			TTL:       cfg.Sources.Whales.TTL,
			BatchSize: cfg.Sources.Whales.BatchSize,
		},
		backend, logger, m,
	)
}

// ProvideChainService creates the DefiLlama chain adapter.
func ProvideChainService(cfg *config.Config, backend cache.Service, logger *xlogger.Logger, m repository.Metrics) *chains.Service {
	return chains.New(
		chains.Config{
			BaseURL: cfg.Sources.Chains.BaseURL,
			TTL:     cfg.Sources.Chains.TTL,
			TopN:    cfg.Sources.Chains.TopN,
		},
		backend,
		xhttp.NewClient(xhttp.WithTimeout(cfg.Sources.Chains.FetchTimeout)),
		logger, m,
	)
}

// ProvideNewsService creates the headline adapter.
func ProvideNewsService(cfg *config.Config, backend cache.Service, logger *xlogger.Logger, m repository.Metrics) *news.Service {
	return news.New(
		news.Config{
			BaseURL: cfg.Sources.News.BaseURL,
			APIKey:  cfg.Sources.News.APIKey,
			TTL:     cfg.Sources.News.TTL,
			Limit:   cfg.Sources.News.Limit,
		},
		backend,
		xhttp.NewClient(xhttp.WithTimeout(cfg.Sources.News.FetchTimeout)),
		logger, m,
	)
}

// ProvideSignalPublisher creates the Kafka signal publisher, or nil
// when Kafka is disabled.
func ProvideSignalPublisher(cfg *config.Config, logger *xlogger.Logger) (repository.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic, logger), nil
}

// ProvideTerminal creates the aggregation use case.
func ProvideTerminal(
	marketSvc *market.Service,
	sentimentSvc *sentiment.Service,
	tracker *whales.Tracker,
	chainSvc *chains.Service,
	newsSvc *news.Service,
	publisher repository.SignalPublisher,
	logger *xlogger.Logger,
	m repository.Metrics,
) *usecase.Terminal {
	return usecase.NewTerminal(marketSvc, sentimentSvc, tracker, chainSvc, newsSvc, publisher, logger, m)
}

// ProvideHub creates the subscriber registry.
func ProvideHub(logger *xlogger.Logger, m repository.Metrics) *ws.Hub {
	return ws.NewHub(logger, m)
}

// ProvideBroadcaster creates the periodic update broadcaster.
func ProvideBroadcaster(terminal *usecase.Terminal, hub *ws.Hub, cfg *config.Config, logger *xlogger.Logger, m repository.Metrics) *usecase.Broadcaster {
	return usecase.NewBroadcaster(terminal, hub, cfg.Broadcast.Interval, logger, m)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *xlogger.Logger,
	backend cache.Service,
	hub *ws.Hub,
	terminal *usecase.Terminal,
	broadcaster *usecase.Broadcaster,
	publisher repository.SignalPublisher,
	m repository.Metrics,
) *server.App {
	handlers := []xhttp.Handler{
		api.NewTerminalEchoHandler(logger, terminal),
		ws.NewHandler(hub, terminal, logger, m),
	}
	return server.New(cfg, logger, backend, hub, broadcaster, publisher, handlers)
}
