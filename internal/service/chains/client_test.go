package chains

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoIntel/pkg/cache"
	xhttp "CryptoIntel/pkg/http"
	xlogger "CryptoIntel/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)      {}
func (nopMetrics) RecordCommand(string)            {}
func (nopMetrics) SetSubscribers(int)              {}
func (nopMetrics) RecordSignals(string, int)       {}
func (nopMetrics) RecordBroadcastDuration(float64) {}

func newTestService(baseURL string, topN int) *Service {
	return New(
		Config{BaseURL: baseURL, TTL: 5 * time.Minute, TopN: topN},
		cache.NewMemoryCache(),
		xhttp.NewClient(xhttp.WithTimeout(2*time.Second)),
		xlogger.Nop(),
		nopMetrics{},
	)
}

const chainsPayload = `[
	{"name":"Ethereum","tvl":60000000000,"change_1d":1.5,"protocols":1100},
	{"name":"Solana","tvl":30000000000,"change_1d":-2.0,"protocols":200},
	{"name":"Dust","tvl":50000000,"change_1d":90.0,"protocols":3},
	{"name":"Tron","tvl":10000000000,"change_1d":0.0,"protocols":40}
]`

func TestTopFiltersAndComputesDominance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chainsPayload))
	}))
	defer srv.Close()

	s := newTestService(srv.URL, 15)
	top, err := s.Top(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 3, "chains at or below the TVL floor are dropped")

	assert.Equal(t, "Ethereum", top[0].Name)
	assert.Equal(t, "Solana", top[1].Name)
	assert.Equal(t, "Tron", top[2].Name)

	// Dominance is the share of the filtered total (100B), not the raw total.
	assert.InDelta(t, 60.0, top[0].Dominance, 1e-9)
	assert.InDelta(t, 30.0, top[1].Dominance, 1e-9)
	assert.InDelta(t, 10.0, top[2].Dominance, 1e-9)

	var sum float64
	for _, c := range top {
		sum += c.Dominance
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestTopTruncatesToTopN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chainsPayload))
	}))
	defer srv.Close()

	s := newTestService(srv.URL, 2)
	top, err := s.Top(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 2)
	// Dominance still reflects the full filtered cohort.
	assert.InDelta(t, 60.0, top[0].Dominance, 1e-9)
}

func TestTopSeedsFallbackWhenUpstreamDead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newTestService(srv.URL, 15)
	top, err := s.Top(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, top)
	assert.Equal(t, "Ethereum", top[0].Name)
}

func TestTrendCountsDirections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chainsPayload))
	}))
	defer srv.Close()

	s := newTestService(srv.URL, 15)
	trend, err := s.Trend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, trend.Increasing)
	assert.Equal(t, 1, trend.Decreasing, "flat chains count toward neither side")
}
