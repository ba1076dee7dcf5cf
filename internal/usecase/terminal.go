package usecase

import (
	"context"
	"sync"
	"time"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/domain/repository"
	"CryptoIntel/internal/service/signals"
	xlogger "CryptoIntel/pkg/logger"
)

// MarketSource feeds asset-level market data.
type MarketSource interface {
	TopAssets(ctx context.Context, limit int) ([]models.MarketAsset, error)
	Details(ctx context.Context, symbol string) (*models.MarketAsset, error)
	VolumeView(ctx context.Context) ([]models.VolumeEntry, error)
	Movers(ctx context.Context) (models.MarketMovers, error)
	Global(ctx context.Context) (models.GlobalMarket, error)
}

// SentimentSource feeds the Fear & Greed index.
type SentimentSource interface {
	Current(ctx context.Context) (models.SentimentReading, error)
}

// WhaleSource feeds large-transfer batches.
type WhaleSource interface {
	Recent(ctx context.Context) ([]models.WhaleTransfer, error)
	Flow(ctx context.Context) (models.WhaleFlow, error)
}

// ChainSource feeds per-chain TVL metrics.
type ChainSource interface {
	Top(ctx context.Context) ([]models.ChainMetric, error)
	Trend(ctx context.Context) (models.TVLTrend, error)
}

// NewsSource feeds classified headlines.
type NewsSource interface {
	Latest(ctx context.Context) ([]models.NewsItem, error)
}

// Terminal aggregates every source into the views subscribers consume.
// A failing source degrades its own section to a zero value; it never
// fails the aggregate.
type Terminal struct {
	market    MarketSource
	sentiment SentimentSource
	whales    WhaleSource
	chains    ChainSource
	news      NewsSource
	publisher repository.SignalPublisher
	logger    *xlogger.Logger
	metrics   repository.Metrics
}

func NewTerminal(
	market MarketSource,
	sentiment SentimentSource,
	whales WhaleSource,
	chains ChainSource,
	news NewsSource,
	publisher repository.SignalPublisher,
	logger *xlogger.Logger,
	metrics repository.Metrics,
) *Terminal {
	return &Terminal{
		market:    market,
		sentiment: sentiment,
		whales:    whales,
		chains:    chains,
		news:      news,
		publisher: publisher,
		logger:    logger.With("terminal"),
		metrics:   metrics,
	}
}

// Snapshot assembles the full view sent to a newly connected
// subscriber. Sources are fetched concurrently.
func (t *Terminal) Snapshot(ctx context.Context) *models.Snapshot {
	snap := &models.Snapshot{}

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		snap.Market = t.assets(ctx)
	}()
	go func() {
		defer wg.Done()
		reading, err := t.sentiment.Current(ctx)
		if err != nil {
			t.logger.Error("sentiment fetch failed", xlogger.Error(err))
			return
		}
		snap.Sentiment = reading
	}()
	go func() {
		defer wg.Done()
		batch, err := t.whales.Recent(ctx)
		if err != nil {
			t.logger.Error("whales fetch failed", xlogger.Error(err))
			return
		}
		snap.Whales = batch
	}()
	go func() {
		defer wg.Done()
		top, err := t.chains.Top(ctx)
		if err != nil {
			t.logger.Error("chains fetch failed", xlogger.Error(err))
			return
		}
		snap.Chains = top
	}()
	go func() {
		defer wg.Done()
		items, err := t.news.Latest(ctx)
		if err != nil {
			t.logger.Error("news fetch failed", xlogger.Error(err))
			return
		}
		snap.News = items
	}()
	wg.Wait()

	snap.Signals = t.detect(ctx, snap.Market)
	return snap
}

// Update assembles the per-tick delta.
func (t *Terminal) Update(ctx context.Context) *models.Update {
	update := &models.Update{Timestamp: time.Now().UnixMilli()}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		update.Market = t.assets(ctx)
	}()
	go func() {
		defer wg.Done()
		reading, err := t.sentiment.Current(ctx)
		if err != nil {
			t.logger.Error("sentiment fetch failed", xlogger.Error(err))
			return
		}
		update.Sentiment = reading
	}()
	wg.Wait()

	update.Signals = t.detect(ctx, update.Market)
	return update
}

// Details resolves one asset by symbol; nil means not listed.
func (t *Terminal) Details(ctx context.Context, symbol string) (*models.MarketAsset, error) {
	return t.market.Details(ctx, symbol)
}

// Market returns the top asset list. A non-positive limit falls back
// to the configured default.
func (t *Terminal) Market(ctx context.Context, limit int) ([]models.MarketAsset, error) {
	return t.market.TopAssets(ctx, limit)
}

// Movers returns the gainer and loser boards.
func (t *Terminal) Movers(ctx context.Context) (models.MarketMovers, error) {
	return t.market.Movers(ctx)
}

// Global returns market-wide aggregates.
func (t *Terminal) Global(ctx context.Context) (models.GlobalMarket, error) {
	return t.market.Global(ctx)
}

// Sentiment returns the current Fear & Greed reading.
func (t *Terminal) Sentiment(ctx context.Context) (models.SentimentReading, error) {
	return t.sentiment.Current(ctx)
}

// Whales returns the current transfer batch.
func (t *Terminal) Whales(ctx context.Context) ([]models.WhaleTransfer, error) {
	return t.whales.Recent(ctx)
}

// WhaleFlow returns the accumulation/distribution aggregate.
func (t *Terminal) WhaleFlow(ctx context.Context) (models.WhaleFlow, error) {
	return t.whales.Flow(ctx)
}

// Chains returns the top chains by TVL.
func (t *Terminal) Chains(ctx context.Context) ([]models.ChainMetric, error) {
	return t.chains.Top(ctx)
}

// ChainTrend returns the rising/falling chain counts.
func (t *Terminal) ChainTrend(ctx context.Context) (models.TVLTrend, error) {
	return t.chains.Trend(ctx)
}

// News returns the latest classified headlines.
func (t *Terminal) News(ctx context.Context) ([]models.NewsItem, error) {
	return t.news.Latest(ctx)
}

// Signals runs a detection pass over the current market snapshot.
func (t *Terminal) Signals(ctx context.Context) []models.Signal {
	return t.detect(ctx, t.assets(ctx))
}

func (t *Terminal) assets(ctx context.Context) []models.MarketAsset {
	assets, err := t.market.TopAssets(ctx, 0)
	if err != nil {
		t.logger.Error("market fetch failed", xlogger.Error(err))
		return nil
	}
	return assets
}

// detect runs the heuristics over the given assets. A detection pass
// over a degraded (empty) snapshot yields an empty list.
func (t *Terminal) detect(ctx context.Context, assets []models.MarketAsset) []models.Signal {
	if len(assets) == 0 {
		return []models.Signal{}
	}
	view, err := t.market.VolumeView(ctx)
	if err != nil {
		t.logger.Error("volume view failed", xlogger.Error(err))
		view = nil
	}

	detected := signals.Detect(assets, view)

	counts := map[string]int{}
	for _, s := range detected {
		counts[string(s.Kind)]++
	}
	for kind, n := range counts {
		t.metrics.RecordSignals(kind, n)
	}

	if t.publisher != nil && len(detected) > 0 {
		if err := t.publisher.PublishSignals(ctx, detected); err != nil {
			t.logger.Error("signal publish failed", xlogger.Error(err))
		}
	}
	return detected
}
