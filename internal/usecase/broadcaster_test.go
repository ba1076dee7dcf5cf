package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoIntel/internal/domain/models"
	xlogger "CryptoIntel/pkg/logger"
)

type stubAudience struct {
	subscribers int
	sent        []models.Outbound
}

func (a *stubAudience) SubscriberCount() int          { return a.subscribers }
func (a *stubAudience) Broadcast(msg models.Outbound) { a.sent = append(a.sent, msg) }

func TestRunOnceSkipsEmptyAudience(t *testing.T) {
	m, s, w, c, n := healthySources()
	term := newTestTerminal(m, s, w, c, n, nil)
	audience := &stubAudience{subscribers: 0}
	b := NewBroadcaster(term, audience, time.Second, xlogger.Nop(), nopMetrics{})

	b.RunOnce(context.Background())

	assert.Empty(t, audience.sent)
	assert.Zero(t, atomic.LoadInt32(&m.calls), "an empty audience must trigger no fetches")
}

func TestRunOnceBroadcastsUpdate(t *testing.T) {
	m, s, w, c, n := healthySources()
	term := newTestTerminal(m, s, w, c, n, nil)
	audience := &stubAudience{subscribers: 2}
	b := NewBroadcaster(term, audience, time.Second, xlogger.Nop(), nopMetrics{})

	b.RunOnce(context.Background())

	require.Len(t, audience.sent, 1)
	assert.Equal(t, models.MessageUpdate, audience.sent[0].Type)
	update, ok := audience.sent[0].Data.(*models.Update)
	require.True(t, ok)
	assert.Len(t, update.Market, 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	m, s, w, c, n := healthySources()
	term := newTestTerminal(m, s, w, c, n, nil)
	b := NewBroadcaster(term, &stubAudience{}, 5*time.Millisecond, xlogger.Nop(), nopMetrics{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast loop did not stop on cancel")
	}
}
