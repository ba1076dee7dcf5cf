package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoIntel/internal/domain/models"
	xlogger "CryptoIntel/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)      {}
func (nopMetrics) RecordCommand(string)            {}
func (nopMetrics) SetSubscribers(int)              {}
func (nopMetrics) RecordSignals(string, int)       {}
func (nopMetrics) RecordBroadcastDuration(float64) {}

type stubMarket struct {
	calls  int32
	assets []models.MarketAsset
	view   []models.VolumeEntry
	err    error
}

func (m *stubMarket) TopAssets(context.Context, int) ([]models.MarketAsset, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.assets, m.err
}

func (m *stubMarket) Details(_ context.Context, symbol string) (*models.MarketAsset, error) {
	for i := range m.assets {
		if m.assets[i].Symbol == symbol {
			return &m.assets[i], nil
		}
	}
	return nil, nil
}

func (m *stubMarket) VolumeView(context.Context) ([]models.VolumeEntry, error) {
	return m.view, m.err
}

func (m *stubMarket) Movers(context.Context) (models.MarketMovers, error) {
	return models.MarketMovers{}, m.err
}

func (m *stubMarket) Global(context.Context) (models.GlobalMarket, error) {
	return models.GlobalMarket{BTCDominance: 50}, m.err
}

type stubSentiment struct {
	reading models.SentimentReading
	err     error
}

func (s *stubSentiment) Current(context.Context) (models.SentimentReading, error) {
	return s.reading, s.err
}

type stubWhales struct {
	batch []models.WhaleTransfer
	err   error
}

func (w *stubWhales) Recent(context.Context) ([]models.WhaleTransfer, error) {
	return w.batch, w.err
}

func (w *stubWhales) Flow(context.Context) (models.WhaleFlow, error) {
	return models.WhaleFlow{}, w.err
}

type stubChains struct {
	top []models.ChainMetric
	err error
}

func (c *stubChains) Top(context.Context) ([]models.ChainMetric, error) { return c.top, c.err }
func (c *stubChains) Trend(context.Context) (models.TVLTrend, error) {
	return models.TVLTrend{}, c.err
}

type stubNews struct {
	items []models.NewsItem
	err   error
}

func (n *stubNews) Latest(context.Context) ([]models.NewsItem, error) { return n.items, n.err }

type stubPublisher struct {
	published [][]models.Signal
}

func (p *stubPublisher) PublishSignals(_ context.Context, ss []models.Signal) error {
	p.published = append(p.published, ss)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func healthySources() (*stubMarket, *stubSentiment, *stubWhales, *stubChains, *stubNews) {
	market := &stubMarket{
		assets: []models.MarketAsset{
			{Symbol: "btc", Price: 97000, MarketCap: 1.9e12, Change24h: 1.0, Change7d: 2.0, ATHChangePct: -10},
			{Symbol: "run", Price: 10, MarketCap: 2e9, Change24h: 20, Change7d: 5, ATHChangePct: -20},
		},
		view: []models.VolumeEntry{{Symbol: "BTC", Volume: 4.5e10, VolumeChange: 1.0}},
	}
	sentiment := &stubSentiment{reading: models.SentimentReading{Value: 61, Classification: "Greed"}}
	whales := &stubWhales{batch: []models.WhaleTransfer{{Symbol: "BTC", AmountUSD: 2e6}}}
	chains := &stubChains{top: []models.ChainMetric{{Name: "Ethereum", TVL: 6e10}}}
	news := &stubNews{items: []models.NewsItem{{Title: "headline", Sentiment: models.NewsNeutral}}}
	return market, sentiment, whales, chains, news
}

func newTestTerminal(m MarketSource, s SentimentSource, w WhaleSource, c ChainSource, n NewsSource, p *stubPublisher) *Terminal {
	if p == nil {
		return NewTerminal(m, s, w, c, n, nil, xlogger.Nop(), nopMetrics{})
	}
	return NewTerminal(m, s, w, c, n, p, xlogger.Nop(), nopMetrics{})
}

func TestSnapshotAggregatesAllSources(t *testing.T) {
	m, s, w, c, n := healthySources()
	term := newTestTerminal(m, s, w, c, n, nil)

	snap := term.Snapshot(context.Background())
	require.NotNil(t, snap)
	assert.Len(t, snap.Market, 2)
	assert.Equal(t, 61, snap.Sentiment.Value)
	assert.Len(t, snap.Whales, 1)
	assert.Len(t, snap.Chains, 1)
	assert.Len(t, snap.News, 1)

	// The "run" asset carries strong large-cap momentum.
	require.NotEmpty(t, snap.Signals)
	assert.Equal(t, models.SignalMomentum, snap.Signals[0].Kind)
}

func TestSnapshotDegradesFailedSourcesOnly(t *testing.T) {
	m, s, w, c, n := healthySources()
	w.err = errors.New("feed down")
	n.err = errors.New("feed down")
	term := newTestTerminal(m, s, w, c, n, nil)

	snap := term.Snapshot(context.Background())
	assert.Empty(t, snap.Whales)
	assert.Empty(t, snap.News)
	assert.Len(t, snap.Market, 2, "healthy sections survive a sibling failure")
	assert.Len(t, snap.Chains, 1)
}

func TestUpdateCarriesMarketSentimentAndSignals(t *testing.T) {
	m, s, w, c, n := healthySources()
	term := newTestTerminal(m, s, w, c, n, nil)

	update := term.Update(context.Background())
	require.NotNil(t, update)
	assert.Len(t, update.Market, 2)
	assert.Equal(t, 61, update.Sentiment.Value)
	assert.NotEmpty(t, update.Signals)
	assert.Positive(t, update.Timestamp)
}

func TestSignalsEmptyWhenMarketDown(t *testing.T) {
	m, s, w, c, n := healthySources()
	m.err = errors.New("everything down")
	m.assets = nil
	term := newTestTerminal(m, s, w, c, n, nil)

	out := term.Signals(context.Background())
	assert.Empty(t, out)
}

func TestDetectionPublishesSignals(t *testing.T) {
	m, s, w, c, n := healthySources()
	pub := &stubPublisher{}
	term := newTestTerminal(m, s, w, c, n, pub)

	out := term.Signals(context.Background())
	require.NotEmpty(t, out)
	require.Len(t, pub.published, 1)
	assert.Equal(t, out, pub.published[0])
}

func TestDetailsPassthrough(t *testing.T) {
	m, s, w, c, n := healthySources()
	term := newTestTerminal(m, s, w, c, n, nil)

	a, err := term.Details(context.Background(), "btc")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 97000.0, a.Price)

	a, err = term.Details(context.Background(), "none")
	require.NoError(t, err)
	assert.Nil(t, a)
}
