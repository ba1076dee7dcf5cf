package usecase

import (
	"context"
	"time"

	"CryptoIntel/internal/domain/models"
	"CryptoIntel/internal/domain/repository"
	xlogger "CryptoIntel/pkg/logger"
)

// Audience is the subscriber set a broadcast pass writes to.
type Audience interface {
	SubscriberCount() int
	Broadcast(msg models.Outbound)
}

// Broadcaster pushes periodic market updates to every subscriber.
type Broadcaster struct {
	terminal *Terminal
	audience Audience
	interval time.Duration
	logger   *xlogger.Logger
	metrics  repository.Metrics
}

func NewBroadcaster(terminal *Terminal, audience Audience, interval time.Duration, logger *xlogger.Logger, metrics repository.Metrics) *Broadcaster {
	return &Broadcaster{
		terminal: terminal,
		audience: audience,
		interval: interval,
		logger:   logger.With("broadcaster"),
		metrics:  metrics,
	}
}

// Run ticks until ctx is cancelled. Each tick with at least one
// subscriber assembles one update and broadcasts it; a tick with an
// empty audience performs no fetches at all.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	b.logger.Info("broadcast loop started", xlogger.Duration("interval", b.interval))
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("broadcast loop stopped")
			return
		case <-ticker.C:
			b.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single broadcast pass.
func (b *Broadcaster) RunOnce(ctx context.Context) {
	n := b.audience.SubscriberCount()
	if n == 0 {
		return
	}

	start := time.Now()
	update := b.terminal.Update(ctx)
	b.audience.Broadcast(models.UpdateMessage(update))
	b.metrics.RecordBroadcastDuration(time.Since(start).Seconds())

	b.logger.Debug("broadcast pass complete",
		xlogger.Int("subscribers", n),
		xlogger.Int("signals", len(update.Signals)),
		xlogger.Duration("elapsed", time.Since(start)))
}
