package market

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/domain/repository"
	"CryptoIntel/internal/service/ratelimit"
	"CryptoIntel/pkg/cache"
	xhttp "CryptoIntel/pkg/http"
	xlogger "CryptoIntel/pkg/logger"
)

const (
	// detailsUniverse is the lookup window for symbol details.
	detailsUniverse = 250
	// volumeUniverse feeds the volume view before re-sorting.
	volumeUniverse = 50
	// volumeViewSize truncates the volume view.
	volumeViewSize = 20
	// moversFloor excludes small caps from the movers lists.
	moversFloor = 100_000_000
	moversSize  = 10
)

// Config holds the market adapter's upstream settings.
type Config struct {
	BaseURL string
	TTL     time.Duration
	TopN    int
}

// Service is the CoinGecko-backed market data adapter.
type Service struct {
	cfg     Config
	client  *xhttp.Client
	assets  *cache.Store[[]models.MarketAsset]
	global  *cache.Store[models.GlobalMarket]
	limiter *ratelimit.Limiter
	logger  *xlogger.Logger
	metrics repository.Metrics
}

// New creates the market adapter over the given cache backend.
func New(cfg Config, backend cache.Service, client *xhttp.Client, limiter *ratelimit.Limiter, logger *xlogger.Logger, metrics repository.Metrics) *Service {
	return &Service{
		cfg:     cfg,
		client:  client,
		assets:  cache.NewStore[[]models.MarketAsset](backend, "market"),
		global:  cache.NewStore[models.GlobalMarket](backend, "market-global"),
		limiter: limiter,
		logger:  logger.With("market"),
		metrics: metrics,
	}
}

// TopAssets returns the current top assets by market capitalization.
// It never fails: a dead upstream with an empty cache degrades to a
// synthetic asset list seeded as the new cache baseline.
func (s *Service) TopAssets(ctx context.Context, limit int) ([]models.MarketAsset, error) {
	if limit <= 0 {
		limit = s.cfg.TopN
	}
	key := fmt.Sprintf("top-%d", limit)

	assets, err := s.assets.GetOrRefresh(ctx, key, s.cfg.TTL, func(ctx context.Context) ([]models.MarketAsset, error) {
		return s.fetchTop(ctx, limit)
	})
	if err != nil {
		s.logger.Warn("upstream unavailable with empty cache, seeding synthetic assets", xlogger.Error(err))
		fb := fallbackAssets(limit)
		if serr := s.assets.Seed(ctx, key, fb); serr != nil {
			s.logger.Error("seed fallback failed", xlogger.Error(serr))
		}
		return fb, nil
	}
	return assets, nil
}

// Details looks up one asset by case-insensitive symbol within the top
// 250. A missing symbol yields (nil, nil): not found is a result here.
func (s *Service) Details(ctx context.Context, symbol string) (*models.MarketAsset, error) {
	assets, err := s.TopAssets(ctx, detailsUniverse)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		if strings.EqualFold(assets[i].Symbol, symbol) {
			a := assets[i]
			return &a, nil
		}
	}
	return nil, nil
}

// VolumeView returns the top assets re-sorted by trading volume.
// VolumeChange reuses the 24h price change percentage: the upstream has
// no volume delta, and downstream signal semantics are defined against
// this proxy.
func (s *Service) VolumeView(ctx context.Context) ([]models.VolumeEntry, error) {
	assets, err := s.TopAssets(ctx, volumeUniverse)
	if err != nil {
		return nil, err
	}

	sorted := make([]models.MarketAsset, len(assets))
	copy(sorted, assets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Volume > sorted[j].Volume
	})
	if len(sorted) > volumeViewSize {
		sorted = sorted[:volumeViewSize]
	}

	view := make([]models.VolumeEntry, 0, len(sorted))
	for _, a := range sorted {
		view = append(view, models.VolumeEntry{
			Symbol:       strings.ToUpper(a.Symbol),
			Volume:       a.Volume,
			VolumeChange: a.Change24h,
		})
	}
	return view, nil
}

// Movers returns the best and worst 24h performers above the market-cap floor.
func (s *Service) Movers(ctx context.Context) (models.MarketMovers, error) {
	assets, err := s.TopAssets(ctx, s.cfg.TopN)
	if err != nil {
		return models.MarketMovers{}, err
	}

	filtered := make([]models.MarketAsset, 0, len(assets))
	for _, a := range assets {
		if a.MarketCap > moversFloor {
			filtered = append(filtered, a)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Change24h > filtered[j].Change24h
	})

	n := len(filtered)
	gainers := filtered[:min(moversSize, n)]
	losers := make([]models.MarketAsset, 0, moversSize)
	for i := n - 1; i >= 0 && len(losers) < moversSize; i-- {
		losers = append(losers, filtered[i])
	}

	return models.MarketMovers{Gainers: gainers, Losers: losers}, nil
}

// Global returns BTC dominance and total market capitalization.
func (s *Service) Global(ctx context.Context) (models.GlobalMarket, error) {
	g, err := s.global.GetOrRefresh(ctx, "global", s.cfg.TTL, s.fetchGlobal)
	if err != nil {
		s.logger.Warn("global upstream unavailable with empty cache, seeding synthetic values", xlogger.Error(err))
		fb := models.GlobalMarket{BTCDominance: 50, TotalMarketCap: 1_500_000_000_000}
		if serr := s.global.Seed(ctx, "global", fb); serr != nil {
			s.logger.Error("seed fallback failed", xlogger.Error(serr))
		}
		return fb, nil
	}
	return g, nil
}

type geckoAsset struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	CurrentPrice      float64 `json:"current_price"`
	MarketCap         float64 `json:"market_cap"`
	MarketCapRank     int     `json:"market_cap_rank"`
	TotalVolume       float64 `json:"total_volume"`
	Change24h         float64 `json:"price_change_percentage_24h"`
	Change7d          float64 `json:"price_change_percentage_7d_in_currency"`
	CirculatingSupply float64 `json:"circulating_supply"`
	ATH               float64 `json:"ath"`
	ATHChangePct      float64 `json:"ath_change_percentage"`
	Image             string  `json:"image"`
}

type geckoGlobal struct {
	Data struct {
		TotalMarketCap      map[string]float64 `json:"total_market_cap"`
		MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
	} `json:"data"`
}

func (s *Service) fetchTop(ctx context.Context, limit int) ([]models.MarketAsset, error) {
	if !s.limiter.Allow("coingecko", 2, 0.5) {
		s.metrics.RecordFetch("market", "throttled")
		return nil, fmt.Errorf("coingecko rate limit budget exhausted")
	}

	var raw []geckoAsset
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.cfg.BaseURL + "/coins/markets",
		QueryParams: map[string][]string{
			"vs_currency":             {"usd"},
			"order":                   {"market_cap_desc"},
			"per_page":                {strconv.Itoa(limit)},
			"page":                    {"1"},
			"sparkline":               {"false"},
			"price_change_percentage": {"24h,7d"},
		},
	}, &raw)
	if err != nil {
		s.metrics.RecordFetch("market", "error")
		return nil, fmt.Errorf("coingecko markets: %w", err)
	}
	s.metrics.RecordFetch("market", "ok")

	assets := make([]models.MarketAsset, 0, len(raw))
	for _, g := range raw {
		assets = append(assets, models.MarketAsset{
			ID:                g.ID,
			Symbol:            g.Symbol,
			Name:              g.Name,
			Price:             g.CurrentPrice,
			MarketCap:         g.MarketCap,
			Rank:              g.MarketCapRank,
			Volume:            g.TotalVolume,
			Change24h:         g.Change24h,
			Change7d:          g.Change7d,
			CirculatingSupply: g.CirculatingSupply,
			ATH:               g.ATH,
			ATHChangePct:      g.ATHChangePct,
			Image:             g.Image,
		})
	}
	return assets, nil
}

func (s *Service) fetchGlobal(ctx context.Context) (models.GlobalMarket, error) {
	if !s.limiter.Allow("coingecko", 2, 0.5) {
		s.metrics.RecordFetch("market", "throttled")
		return models.GlobalMarket{}, fmt.Errorf("coingecko rate limit budget exhausted")
	}

	var raw geckoGlobal
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.cfg.BaseURL + "/global",
	}, &raw)
	if err != nil {
		s.metrics.RecordFetch("market", "error")
		return models.GlobalMarket{}, fmt.Errorf("coingecko global: %w", err)
	}
	s.metrics.RecordFetch("market", "ok")

	return models.GlobalMarket{
		BTCDominance:   raw.Data.MarketCapPercentage["btc"],
		TotalMarketCap: raw.Data.TotalMarketCap["usd"],
	}, nil
}

// fallbackAssets is the documented synthetic baseline used when every
// fetch since process start has failed. Static values, majors only.
func fallbackAssets(limit int) []models.MarketAsset {
	all := []models.MarketAsset{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Price: 97000, MarketCap: 1_900_000_000_000, Rank: 1, Volume: 45_000_000_000, Change24h: 1.2, Change7d: 3.4, CirculatingSupply: 19_700_000, ATH: 108000, ATHChangePct: -10.2},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", Price: 3400, MarketCap: 410_000_000_000, Rank: 2, Volume: 21_000_000_000, Change24h: 0.8, Change7d: -1.1, CirculatingSupply: 120_000_000, ATH: 4878, ATHChangePct: -30.3},
		{ID: "tether", Symbol: "usdt", Name: "Tether", Price: 1, MarketCap: 120_000_000_000, Rank: 3, Volume: 60_000_000_000, Change24h: 0.01, Change7d: 0.02, CirculatingSupply: 120_000_000_000, ATH: 1.32, ATHChangePct: -24.4},
		{ID: "binancecoin", Symbol: "bnb", Name: "BNB", Price: 620, MarketCap: 90_000_000_000, Rank: 4, Volume: 1_800_000_000, Change24h: -0.5, Change7d: 2.1, CirculatingSupply: 145_000_000, ATH: 720, ATHChangePct: -13.9},
		{ID: "solana", Symbol: "sol", Name: "Solana", Price: 180, MarketCap: 85_000_000_000, Rank: 5, Volume: 3_500_000_000, Change24h: 2.4, Change7d: 5.6, CirculatingSupply: 470_000_000, ATH: 260, ATHChangePct: -30.8},
		{ID: "usd-coin", Symbol: "usdc", Name: "USDC", Price: 1, MarketCap: 35_000_000_000, Rank: 6, Volume: 7_000_000_000, Change24h: 0, Change7d: 0.01, CirculatingSupply: 35_000_000_000, ATH: 1.17, ATHChangePct: -14.5},
		{ID: "ripple", Symbol: "xrp", Name: "XRP", Price: 0.62, MarketCap: 34_000_000_000, Rank: 7, Volume: 1_400_000_000, Change24h: -1.4, Change7d: -3.2, CirculatingSupply: 55_000_000_000, ATH: 3.4, ATHChangePct: -81.8},
		{ID: "cardano", Symbol: "ada", Name: "Cardano", Price: 0.45, MarketCap: 16_000_000_000, Rank: 8, Volume: 420_000_000, Change24h: 0.3, Change7d: 1.5, CirculatingSupply: 35_000_000_000, ATH: 3.09, ATHChangePct: -85.4},
	}
	if limit > 0 && limit < len(all) {
		return all[:limit]
	}
	return all
}
