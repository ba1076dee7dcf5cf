package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/domain/repository"
	"CryptoIntel/pkg/cache"
	xhttp "CryptoIntel/pkg/http"
	xlogger "CryptoIntel/pkg/logger"
)

var (
	positiveWords = []string{"surge", "rally", "gain", "bullish", "breakthrough", "soar", "pump"}
	negativeWords = []string{"crash", "plunge", "drop", "bearish", "dump", "fall", "decline"}
)

// Config holds the news adapter's upstream settings.
type Config struct {
	BaseURL string
	APIKey  string
	TTL     time.Duration
	Limit   int
}

// Service is the CryptoPanic-backed headline adapter.
type Service struct {
	cfg     Config
	client  *xhttp.Client
	store   *cache.Store[[]models.NewsItem]
	logger  *xlogger.Logger
	metrics repository.Metrics
}

func New(cfg Config, backend cache.Service, client *xhttp.Client, logger *xlogger.Logger, metrics repository.Metrics) *Service {
	return &Service{
		cfg:     cfg,
		client:  client,
		store:   cache.NewStore[[]models.NewsItem](backend, "news"),
		logger:  logger.With("news"),
		metrics: metrics,
	}
}

// Latest returns recent headlines with classified sentiment. A dead
// upstream with an empty cache degrades to static mock headlines.
func (s *Service) Latest(ctx context.Context) ([]models.NewsItem, error) {
	items, err := s.store.GetOrRefresh(ctx, "latest", s.cfg.TTL, s.fetch)
	if err != nil {
		s.logger.Warn("upstream unavailable with empty cache, seeding mock headlines", xlogger.Error(err))
		fb := fallbackNews(time.Now())
		if serr := s.store.Seed(ctx, "latest", fb); serr != nil {
			s.logger.Error("seed fallback failed", xlogger.Error(serr))
		}
		return fb, nil
	}
	return items, nil
}

type panicResponse struct {
	Results []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
		Source      struct {
			Title string `json:"title"`
		} `json:"source"`
		Metadata struct {
			Description string `json:"description"`
		} `json:"metadata"`
	} `json:"results"`
}

func (s *Service) fetch(ctx context.Context) ([]models.NewsItem, error) {
	params := map[string][]string{
		"public":     {"true"},
		"currencies": {"BTC,ETH"},
	}
	if s.cfg.APIKey != "" {
		params["auth_token"] = []string{s.cfg.APIKey}
	}

	var raw panicResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         s.cfg.BaseURL + "/posts/",
		QueryParams: params,
	}, &raw)
	if err != nil {
		s.metrics.RecordFetch("news", "error")
		return nil, fmt.Errorf("cryptopanic posts: %w", err)
	}
	s.metrics.RecordFetch("news", "ok")

	items := make([]models.NewsItem, 0, s.cfg.Limit)
	for _, r := range raw.Results {
		if len(items) >= s.cfg.Limit {
			break
		}
		var published int64
		if t, perr := time.Parse(time.RFC3339, r.PublishedAt); perr == nil {
			published = t.UnixMilli()
		}
		items = append(items, models.NewsItem{
			Title:       r.Title,
			Description: r.Metadata.Description,
			URL:         r.URL,
			Source:      r.Source.Title,
			PublishedAt: published,
			Sentiment:   Classify(r.Title),
		})
	}
	return items, nil
}

// Classify derives headline sentiment from keyword hits. A headline
// matching both classes, or neither, is neutral.
func Classify(title string) models.NewsSentiment {
	lower := strings.ToLower(title)
	positive := containsAny(lower, positiveWords)
	negative := containsAny(lower, negativeWords)
	switch {
	case positive && !negative:
		return models.NewsPositive
	case negative && !positive:
		return models.NewsNegative
	default:
		return models.NewsNeutral
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func fallbackNews(now time.Time) []models.NewsItem {
	titles := []string{
		"Bitcoin holds steady as institutional interest grows",
		"Ethereum staking rally continues after upgrade",
		"Altcoin market sees sharp decline amid profit taking",
		"Stablecoin supply reaches new milestone",
		"DeFi protocols report record locked value surge",
	}
	items := make([]models.NewsItem, 0, len(titles))
	for i, title := range titles {
		items = append(items, models.NewsItem{
			Title:       title,
			URL:         "https://example.com/news",
			Source:      "CryptoIntel",
			PublishedAt: now.Add(-time.Duration(i) * 30 * time.Minute).UnixMilli(),
			Sentiment:   Classify(title),
		})
	}
	return items
}
