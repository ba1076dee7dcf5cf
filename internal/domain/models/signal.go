package models

// SignalKind enumerates the detectable market conditions.
type SignalKind string

const (
	SignalDivergence        SignalKind = "divergence"
	SignalVolumeAnomaly     SignalKind = "volume_anomaly"
	SignalWhalePattern      SignalKind = "whale_pattern"
	SignalMomentum          SignalKind = "momentum"
	SignalSupportResistance SignalKind = "support_resistance"
)

// Severity grades a signal.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank maps severity to its sort weight (high > medium > low).
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Signal is one detected market condition. Signals are recomputed on
// every detection pass and never persisted.
type Signal struct {
	Kind      SignalKind         `json:"type"`
	Severity  Severity           `json:"severity"`
	Symbol    string             `json:"symbol"`
	Message   string             `json:"message"`
	Timestamp int64              `json:"timestamp"` // unix milliseconds
	Data      map[string]float64 `json:"data,omitempty"`
}
