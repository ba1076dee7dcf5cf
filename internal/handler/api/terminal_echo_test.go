package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/usecase"
	xlogger "CryptoIntel/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)      {}
func (nopMetrics) RecordCommand(string)            {}
func (nopMetrics) SetSubscribers(int)              {}
func (nopMetrics) RecordSignals(string, int)       {}
func (nopMetrics) RecordBroadcastDuration(float64) {}

type stubMarket struct{ assets []models.MarketAsset }

func (m *stubMarket) TopAssets(context.Context, int) ([]models.MarketAsset, error) {
	return m.assets, nil
}

func (m *stubMarket) Details(_ context.Context, symbol string) (*models.MarketAsset, error) {
	for i := range m.assets {
		if m.assets[i].Symbol == symbol {
			return &m.assets[i], nil
		}
	}
	return nil, nil
}

func (m *stubMarket) VolumeView(context.Context) ([]models.VolumeEntry, error) { return nil, nil }
func (m *stubMarket) Movers(context.Context) (models.MarketMovers, error) {
	return models.MarketMovers{}, nil
}
func (m *stubMarket) Global(context.Context) (models.GlobalMarket, error) {
	return models.GlobalMarket{BTCDominance: 54.3, TotalMarketCap: 3.2e12}, nil
}

type stubSentiment struct{}

func (stubSentiment) Current(context.Context) (models.SentimentReading, error) {
	return models.SentimentReading{Value: 61, Classification: "Greed"}, nil
}

type stubWhales struct{}

func (stubWhales) Recent(context.Context) ([]models.WhaleTransfer, error) {
	return []models.WhaleTransfer{{Symbol: "BTC", AmountUSD: 2e6}}, nil
}
func (stubWhales) Flow(context.Context) (models.WhaleFlow, error) {
	return models.WhaleFlow{Accumulation: 3e6, Distribution: 1e6, NetFlow: 2e6}, nil
}

type stubChains struct{}

func (stubChains) Top(context.Context) ([]models.ChainMetric, error) {
	return []models.ChainMetric{{Name: "Ethereum", TVL: 6e10, Dominance: 60}}, nil
}
func (stubChains) Trend(context.Context) (models.TVLTrend, error) {
	return models.TVLTrend{Increasing: 9, Decreasing: 6}, nil
}

type stubNews struct{}

func (stubNews) Latest(context.Context) ([]models.NewsItem, error) {
	return []models.NewsItem{{Title: "headline"}}, nil
}

func newTestHandler() *TerminalEchoHandler {
	market := &stubMarket{assets: []models.MarketAsset{
		{Symbol: "btc", Name: "Bitcoin", Price: 97000},
	}}
	terminal := usecase.NewTerminal(
		market, stubSentiment{}, stubWhales{}, stubChains{}, stubNews{},
		nil, xlogger.Nop(), nopMetrics{},
	)
	return NewTerminalEchoHandler(xlogger.Nop(), terminal)
}

func do(t *testing.T, h *TerminalEchoHandler, target string) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthEndpoint(t *testing.T) {
	code, body := do(t, newTestHandler(), "/api/health")
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestMarketEndpoint(t *testing.T) {
	_, body := do(t, newTestHandler(), "/api/market")
	assert.Equal(t, float64(http.StatusOK), body["status"])
	assets := body["data"].([]interface{})
	require.Len(t, assets, 1)
	assert.Equal(t, "Bitcoin", assets[0].(map[string]interface{})["name"])
}

func TestGlobalEndpoint(t *testing.T) {
	_, body := do(t, newTestHandler(), "/api/market/global")
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 54.3, data["btc_dominance"])
}

func TestDetailsEndpointRequiresSymbol(t *testing.T) {
	_, body := do(t, newTestHandler(), "/api/details")
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
}

func TestDetailsEndpointNotFound(t *testing.T) {
	_, body := do(t, newTestHandler(), "/api/details?symbol=nosuch")
	assert.Equal(t, float64(http.StatusNotFound), body["status"])
}

func TestDetailsEndpointFound(t *testing.T) {
	_, body := do(t, newTestHandler(), "/api/details?symbol=btc")
	assert.Equal(t, float64(http.StatusOK), body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Bitcoin", data["name"])
}

func TestWhaleFlowEndpoint(t *testing.T) {
	_, body := do(t, newTestHandler(), "/api/whales/flow")
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 2e6, data["netFlow"])
}

func TestChainTrendEndpoint(t *testing.T) {
	_, body := do(t, newTestHandler(), "/api/chains/trend")
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(9), data["increasing"])
}

func TestSignalsEndpointAlwaysArray(t *testing.T) {
	_, body := do(t, newTestHandler(), "/api/signals")
	assert.Equal(t, float64(http.StatusOK), body["status"])
	_, ok := body["data"].([]interface{})
	assert.True(t, ok, "signals payload must be an array even when empty")
}
