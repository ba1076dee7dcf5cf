package whales

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/pkg/cache"
	xlogger "CryptoIntel/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)      {}
func (nopMetrics) RecordCommand(string)            {}
func (nopMetrics) SetSubscribers(int)              {}
func (nopMetrics) RecordSignals(string, int)       {}
func (nopMetrics) RecordBroadcastDuration(float64) {}

func newTestTracker(opts ...Option) *Tracker {
	return New(
		Config{TTL: time.Minute, BatchSize: 15},
		cache.NewMemoryCache(),
		xlogger.Nop(),
		nopMetrics{},
		opts...,
	)
}

func TestRecentBatchShape(t *testing.T) {
	tr := newTestTracker(WithRand(rand.New(rand.NewSource(1))))
	batch, err := tr.Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 15)

	now := time.Now()
	for _, transfer := range batch {
		assert.GreaterOrEqual(t, transfer.AmountUSD, float64(minTransferUSD))
		assert.LessOrEqual(t, transfer.AmountUSD, float64(minTransferUSD+usdSpread))
		assert.Contains(t, chains, transfer.Blockchain)
		assert.Contains(t, symbols, transfer.Symbol)
		assert.Len(t, transfer.From, 42)
		assert.Len(t, transfer.To, 42)
		assert.Len(t, transfer.Hash, 66)
		assert.Positive(t, transfer.Amount)

		age := now.Sub(time.UnixMilli(transfer.Timestamp))
		assert.GreaterOrEqual(t, age, -time.Second)
		assert.LessOrEqual(t, age, time.Hour+time.Second)
	}

	for i := 1; i < len(batch); i++ {
		assert.GreaterOrEqual(t, batch[i-1].Timestamp, batch[i].Timestamp, "batch is newest first")
	}
}

func TestRecentServesCachedBatchWithinTTL(t *testing.T) {
	tr := newTestTracker(WithRand(rand.New(rand.NewSource(7))))
	ctx := context.Background()

	first, err := tr.Recent(ctx)
	require.NoError(t, err)
	second, err := tr.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second, "a second call within TTL must not regenerate")
}

func TestFlowSplitsDirections(t *testing.T) {
	tr := newTestTracker(WithRand(rand.New(rand.NewSource(42))))
	ctx := context.Background()

	batch, err := tr.Recent(ctx)
	require.NoError(t, err)
	flow, err := tr.Flow(ctx)
	require.NoError(t, err)

	var acc, dist float64
	for _, transfer := range batch {
		switch transfer.Direction {
		case models.WhaleAccumulation:
			acc += transfer.AmountUSD
		case models.WhaleDistribution:
			dist += transfer.AmountUSD
		}
	}
	assert.InDelta(t, acc, flow.Accumulation, 1e-6)
	assert.InDelta(t, dist, flow.Distribution, 1e-6)
	assert.InDelta(t, acc-dist, flow.NetFlow, 1e-6)
}
