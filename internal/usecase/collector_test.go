package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/alert"
	"PairScope/internal/analytics"
	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	"PairScope/internal/store"
	applogger "PairScope/pkg/logger"
)

type stubStream struct {
	ticks     []*models.Tick
	connected bool
}

func (s *stubStream) Connect(context.Context) error   { s.connected = true; return nil }
func (s *stubStream) Subscribe(context.Context) error { return nil }
func (s *stubStream) Reconnect(context.Context) error { return nil }
func (s *stubStream) Close() error                    { s.connected = false; return nil }
func (s *stubStream) IsConnected() bool               { return s.connected }

func (s *stubStream) Read(context.Context) (<-chan *models.Tick, <-chan error) {
	tickCh := make(chan *models.Tick, len(s.ticks))
	errCh := make(chan error, 1)
	for _, t := range s.ticks {
		tickCh <- t
	}
	return tickCh, errCh
}

type capturingSink struct {
	mu     sync.Mutex
	ticks  []models.Tick
	bars   map[drepo.Timeframe][]models.Bar
	closed bool
}

func newCapturingSink() *capturingSink {
	return &capturingSink{bars: make(map[drepo.Timeframe][]models.Bar)}
}

func (s *capturingSink) WriteTicks(_ context.Context, ticks []models.Tick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = append(s.ticks, ticks...)
	return nil
}

func (s *capturingSink) WriteBars(_ context.Context, tf drepo.Timeframe, bars []models.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bars[tf] = append(s.bars[tf], bars...)
	return nil
}

func (s *capturingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordTickIngested(string)       {}
func (noopMetrics) RecordBarsResampled(string, int) {}
func (noopMetrics) RecordAlertTriggered(string)     {}
func (noopMetrics) RecordError(string)              {}
func (noopMetrics) RecordLastPrice(string, float64) {}
func (noopMetrics) RecordLatency(string, float64)   {}

func newPipeline(t *testing.T, stream drepo.MarketStream, sink drepo.Sink) (*Collector, *store.Store, *alert.Engine) {
	t.Helper()

	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	st := store.New(store.DefaultConfig(), drepo.Timeframes(), log, noopMetrics{})
	pair := NewPairAnalyzer(st, analytics.New())
	alerts := alert.New(log, noopMetrics{})

	c := NewCollector(stream, st, pair, alerts, sink, noopMetrics{}, log, CollectorConfig{
		ResampleEvery: time.Hour, // cycles driven manually in tests
		SymbolA:       "BTCUSDT",
		SymbolB:       "ETHUSDT",
		Window:        5,
	})
	return c, st, alerts
}

func streamTicks(n int) []*models.Tick {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	out := make([]*models.Tick, 0, 2*n)
	for i := 0; i < n; i++ {
		ts := t0.Add(time.Duration(i) * time.Second)
		out = append(out,
			&models.Tick{Timestamp: ts, Symbol: "BTCUSDT", Price: 100 + float64(i%3), Quantity: 1},
			&models.Tick{Timestamp: ts, Symbol: "ETHUSDT", Price: 50 + float64(i%3), Quantity: 2},
		)
	}
	return out
}

func TestCollectorIngestsAndPersists(t *testing.T) {
	stream := &stubStream{ticks: streamTicks(30)}
	sink := newCapturingSink()
	c, st, _ := newPipeline(t, stream, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Start(ctx))
	require.Eventually(t, func() bool { return st.RawSize() == 60 }, time.Second, 5*time.Millisecond)

	c.runCycle(ctx)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Len(t, sink.ticks, 60)
	assert.Len(t, sink.bars[drepo.TF1s], 60)
	assert.Len(t, sink.bars[drepo.TF1m], 2)
	assert.Len(t, sink.bars[drepo.TF5m], 2)
}

func TestCollectorFlushesPendingOnce(t *testing.T) {
	stream := &stubStream{ticks: streamTicks(5)}
	sink := newCapturingSink()
	c, st, _ := newPipeline(t, stream, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Start(ctx))
	require.Eventually(t, func() bool { return st.RawSize() == 10 }, time.Second, 5*time.Millisecond)

	c.runCycle(ctx)
	c.runCycle(ctx)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Len(t, sink.ticks, 10, "ticks must not be re-sent on the next cycle")
}

func TestCollectorEvaluatesAlerts(t *testing.T) {
	stream := &stubStream{ticks: streamTicks(30)}
	c, st, alerts := newPipeline(t, stream, nil)

	fired := false
	alerts.Register("any-data", func(xs []float64) bool {
		fired = len(xs) > 0
		return fired
	}, "BTCUSDT")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Start(ctx))
	require.Eventually(t, func() bool { return st.RawSize() == 60 }, time.Second, 5*time.Millisecond)

	c.runCycle(ctx)

	assert.True(t, fired)
	assert.NotEmpty(t, alerts.History())
}

func TestCollectorShutdownClosesStreamAndSink(t *testing.T) {
	stream := &stubStream{}
	sink := newCapturingSink()
	c, _, _ := newPipeline(t, stream, sink)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Shutdown(ctx))

	assert.False(t, stream.IsConnected())
	assert.True(t, sink.closed)
}
