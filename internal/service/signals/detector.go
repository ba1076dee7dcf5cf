package signals

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"CryptoIntel/internal/domain/models"
)

const (
	volumeSpikeFloor  = 50
	volumeSpikeHigh   = 100
	divergenceFloor   = 10
	momentumCapFloor  = 1_000_000_000
	momentumFloor     = 15
	athProximityFloor = -5
	deepCorrectionCap = -50
)

// Detect runs every heuristic over one market snapshot and returns the
// merged signal list sorted by severity, high first. Rules are
// independent; within a severity tier the emission order is volume
// anomalies, divergences, momentum, then support/resistance. A nil or
// empty snapshot yields an empty list, never an error.
func Detect(assets []models.MarketAsset, volumeView []models.VolumeEntry) []models.Signal {
	return DetectAt(assets, volumeView, time.Now())
}

// DetectAt is Detect with an explicit timestamp, so two passes over the
// same snapshot are byte-for-byte identical.
func DetectAt(assets []models.MarketAsset, volumeView []models.VolumeEntry, now time.Time) []models.Signal {
	ts := now.UnixMilli()

	signals := volumeAnomalies(volumeView, ts)
	signals = append(signals, divergences(assets, ts)...)
	signals = append(signals, momentumShifts(assets, ts)...)
	signals = append(signals, supportResistance(assets, ts)...)

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Severity.Rank() > signals[j].Severity.Rank()
	})
	return signals
}

func volumeAnomalies(view []models.VolumeEntry, ts int64) []models.Signal {
	signals := []models.Signal{}
	for _, entry := range view {
		if math.Abs(entry.VolumeChange) <= volumeSpikeFloor {
			continue
		}
		severity := models.SeverityMedium
		if math.Abs(entry.VolumeChange) > volumeSpikeHigh {
			severity = models.SeverityHigh
		}
		signals = append(signals, models.Signal{
			Kind:      models.SignalVolumeAnomaly,
			Severity:  severity,
			Symbol:    entry.Symbol,
			Message:   fmt.Sprintf("Unusual volume spike detected: %+.2f%%", entry.VolumeChange),
			Timestamp: ts,
			Data: map[string]float64{
				"volume": entry.Volume,
				"change": entry.VolumeChange,
			},
		})
	}
	return signals
}

func divergences(assets []models.MarketAsset, ts int64) []models.Signal {
	signals := []models.Signal{}
	for _, a := range assets {
		var message string
		switch {
		case a.Change24h > divergenceFloor && a.Change7d < 0:
			message = fmt.Sprintf("Bullish divergence: Strong 24h gain (%+.2f%%) but 7d trend is negative", a.Change24h)
		case a.Change24h < -divergenceFloor && a.Change7d > 0:
			message = fmt.Sprintf("Bearish divergence: Sharp 24h drop (%.2f%%) but 7d trend is positive", a.Change24h)
		default:
			continue
		}
		signals = append(signals, models.Signal{
			Kind:      models.SignalDivergence,
			Severity:  models.SeverityMedium,
			Symbol:    strings.ToUpper(a.Symbol),
			Message:   message,
			Timestamp: ts,
			Data: map[string]float64{
				"price24h": a.Change24h,
				"price7d":  a.Change7d,
			},
		})
	}
	return signals
}

func momentumShifts(assets []models.MarketAsset, ts int64) []models.Signal {
	signals := []models.Signal{}
	for _, a := range assets {
		if a.MarketCap <= momentumCapFloor || math.Abs(a.Change24h) <= momentumFloor {
			continue
		}
		direction := "upward"
		if a.Change24h < 0 {
			direction = "downward"
		}
		signals = append(signals, models.Signal{
			Kind:      models.SignalMomentum,
			Severity:  models.SeverityHigh,
			Symbol:    strings.ToUpper(a.Symbol),
			Message:   fmt.Sprintf("Strong %s momentum: %+.2f%% in 24h", direction, a.Change24h),
			Timestamp: ts,
			Data: map[string]float64{
				"change24h": a.Change24h,
				"marketCap": a.MarketCap,
			},
		})
	}
	return signals
}

func supportResistance(assets []models.MarketAsset, ts int64) []models.Signal {
	signals := []models.Signal{}
	for _, a := range assets {
		var (
			severity models.Severity
			message  string
		)
		switch {
		case a.ATHChangePct > athProximityFloor:
			severity = models.SeverityHigh
			message = fmt.Sprintf("Approaching ATH: Only %.2f%% away from all-time high", math.Abs(a.ATHChangePct))
		case a.ATHChangePct < deepCorrectionCap:
			severity = models.SeverityMedium
			message = fmt.Sprintf("Deep correction: %.2f%% below ATH", math.Abs(a.ATHChangePct))
		default:
			continue
		}
		signals = append(signals, models.Signal{
			Kind:      models.SignalSupportResistance,
			Severity:  severity,
			Symbol:    strings.ToUpper(a.Symbol),
			Message:   message,
			Timestamp: ts,
			Data: map[string]float64{
				"currentPrice": a.Price,
				"ath":          a.ATH,
				"distance":     a.ATHChangePct,
			},
		})
	}
	return signals
}
