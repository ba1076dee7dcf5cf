package sentiment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/domain/repository"
	"CryptoIntel/pkg/cache"
	xhttp "CryptoIntel/pkg/http"
	xlogger "CryptoIntel/pkg/logger"
)

// Config holds the sentiment adapter's upstream settings.
type Config struct {
	BaseURL string
	TTL     time.Duration
}

// Service is the Fear & Greed index adapter (alternative.me).
type Service struct {
	cfg     Config
	client  *xhttp.Client
	store   *cache.Store[models.SentimentReading]
	logger  *xlogger.Logger
	metrics repository.Metrics
}

func New(cfg Config, backend cache.Service, client *xhttp.Client, logger *xlogger.Logger, metrics repository.Metrics) *Service {
	return &Service{
		cfg:     cfg,
		client:  client,
		store:   cache.NewStore[models.SentimentReading](backend, "sentiment"),
		logger:  logger.With("sentiment"),
		metrics: metrics,
	}
}

// Current returns the latest Fear & Greed reading. An unreachable
// upstream with an empty cache degrades to a neutral 50 seeded as the
// cache baseline.
func (s *Service) Current(ctx context.Context) (models.SentimentReading, error) {
	reading, err := s.store.GetOrRefresh(ctx, "fng", s.cfg.TTL, s.fetch)
	if err != nil {
		s.logger.Warn("upstream unavailable with empty cache, seeding neutral reading", xlogger.Error(err))
		fb := models.SentimentReading{
			Value:          50,
			Classification: "Neutral",
			Timestamp:      time.Now().UnixMilli(),
		}
		if serr := s.store.Seed(ctx, "fng", fb); serr != nil {
			s.logger.Error("seed fallback failed", xlogger.Error(serr))
		}
		return fb, nil
	}
	return reading, nil
}

// The index API returns numbers as strings.
type fngResponse struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
		Timestamp      string `json:"timestamp"`
	} `json:"data"`
}

func (s *Service) fetch(ctx context.Context) (models.SentimentReading, error) {
	var raw fngResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.cfg.BaseURL + "/fng/",
	}, &raw)
	if err != nil {
		s.metrics.RecordFetch("sentiment", "error")
		return models.SentimentReading{}, fmt.Errorf("fear greed index: %w", err)
	}
	if len(raw.Data) == 0 {
		s.metrics.RecordFetch("sentiment", "error")
		return models.SentimentReading{}, fmt.Errorf("fear greed index: empty data")
	}
	s.metrics.RecordFetch("sentiment", "ok")

	d := raw.Data[0]
	value, err := strconv.Atoi(d.Value)
	if err != nil {
		return models.SentimentReading{}, fmt.Errorf("fear greed index: bad value %q: %w", d.Value, err)
	}
	ts, err := strconv.ParseInt(d.Timestamp, 10, 64)
	if err != nil {
		return models.SentimentReading{}, fmt.Errorf("fear greed index: bad timestamp %q: %w", d.Timestamp, err)
	}

	return models.SentimentReading{
		Value:          value,
		Classification: d.Classification,
		Timestamp:      ts * 1000,
		LastUpdate:     time.Now().Format(time.RFC3339),
	}, nil
}
