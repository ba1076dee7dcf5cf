package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
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

func newTestService(baseURL string) *Service {
	return New(
		Config{BaseURL: baseURL, TTL: 5 * time.Minute},
		cache.NewMemoryCache(),
		xhttp.NewClient(xhttp.WithTimeout(2*time.Second)),
		xlogger.Nop(),
		nopMetrics{},
	)
}

func TestCurrentParsesStringNumbers(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"data":[{"value":"72","value_classification":"Greed","timestamp":"1756600000"}]}`))
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	reading, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 72, reading.Value)
	assert.Equal(t, "Greed", reading.Classification)
	assert.Equal(t, int64(1756600000000), reading.Timestamp, "upstream seconds become milliseconds")

	_, err = s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCurrentFallsBackToNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	reading, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, reading.Value)
	assert.Equal(t, "Neutral", reading.Classification)
}

func TestCurrentRejectsEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	s := newTestService(srv.URL)
	reading, err := s.Current(context.Background())
	require.NoError(t, err, "empty payload degrades to the neutral fallback")
	assert.Equal(t, 50, reading.Value)
}
