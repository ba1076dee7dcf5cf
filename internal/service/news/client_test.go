package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoIntel/internal/domain/models"
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

func newTestService(baseURL string, limit int) *Service {
	return New(
		Config{BaseURL: baseURL, TTL: 5 * time.Minute, Limit: limit},
		cache.NewMemoryCache(),
		xhttp.NewClient(xhttp.WithTimeout(2*time.Second)),
		xlogger.Nop(),
		nopMetrics{},
	)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		title string
		want  models.NewsSentiment
	}{
		{"Bitcoin SURGES past resistance", models.NewsPositive},
		{"Markets rally on ETF inflows", models.NewsPositive},
		{"Ethereum plunges amid liquidations", models.NewsNegative},
		{"Token dump triggers cascade", models.NewsNegative},
		{"Exchange announces new listing", models.NewsNeutral},
		{"Bullish crash incoming", models.NewsNeutral}, // both classes cancel out
		{"Rally stalls as prices fall", models.NewsNeutral},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.title), c.title)
	}
}

func TestLatestParsesAndClassifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"title":"Bitcoin rally extends to fifth day","url":"https://example.com/1","published_at":"2026-08-31T10:00:00Z","source":{"title":"Example Wire"}},
			{"title":"Altcoins decline as volume dries up","url":"https://example.com/2","published_at":"2026-08-31T09:00:00Z","source":{"title":"Example Wire"}},
			{"title":"Regulator schedules hearing","url":"https://example.com/3","published_at":"2026-08-31T08:00:00Z","source":{"title":"Example Wire"}}
		]}`))
	}))
	defer srv.Close()

	s := newTestService(srv.URL, 20)
	items, err := s.Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, models.NewsPositive, items[0].Sentiment)
	assert.Equal(t, models.NewsNegative, items[1].Sentiment)
	assert.Equal(t, models.NewsNeutral, items[2].Sentiment)
	assert.Equal(t, "Example Wire", items[0].Source)

	want, _ := time.Parse(time.RFC3339, "2026-08-31T10:00:00Z")
	assert.Equal(t, want.UnixMilli(), items[0].PublishedAt)
}

func TestLatestHonorsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"title":"one","url":"u","published_at":"2026-08-31T10:00:00Z","source":{"title":"s"}},
			{"title":"two","url":"u","published_at":"2026-08-31T10:00:00Z","source":{"title":"s"}},
			{"title":"three","url":"u","published_at":"2026-08-31T10:00:00Z","source":{"title":"s"}}
		]}`))
	}))
	defer srv.Close()

	s := newTestService(srv.URL, 2)
	items, err := s.Latest(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestLatestSeedsMockWhenUpstreamDead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := newTestService(srv.URL, 20)
	items, err := s.Latest(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for _, it := range items {
		assert.NotEmpty(t, it.Title)
		assert.NotEmpty(t, it.Sentiment)
	}
}
