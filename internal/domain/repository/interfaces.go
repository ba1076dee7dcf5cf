package repository

import (
	"context"

	"CryptoIntel/internal/domain/models"
)

// Metrics records operational measurements.
type Metrics interface {
	RecordFetch(source, result string)
	RecordCommand(command string)
	SetSubscribers(n int)
	RecordSignals(kind string, count int)
	RecordBroadcastDuration(seconds float64)
}

// SignalPublisher forwards detection-pass output to an external bus.
type SignalPublisher interface {
	PublishSignals(ctx context.Context, signals []models.Signal) error
	Close() error
}
