package store

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/domain/models"
	"PairScope/internal/domain/repository"
	"PairScope/pkg/logger"
)

type noopMetrics struct{}

func (noopMetrics) RecordTickIngested(string)           {}
func (noopMetrics) RecordBarsResampled(string, int)     {}
func (noopMetrics) RecordAlertTriggered(string)         {}
func (noopMetrics) RecordError(string)                  {}
func (noopMetrics) RecordLastPrice(string, float64)     {}
func (noopMetrics) RecordLatency(string, float64)       {}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	return New(DefaultConfig(), repository.Timeframes(), l, noopMetrics{})
}

func tick(tsMillis int64, symbol string, price, qty float64) models.Tick {
	return models.Tick{
		Timestamp: time.UnixMilli(tsMillis).UTC(),
		Symbol:    symbol,
		Price:     price,
		Quantity:  qty,
	}
}

func TestResampleSingleBucket(t *testing.T) {
	s := newTestStore(t)
	s.Ingest(tick(0, "BTCUSDT", 100, 1))
	s.Ingest(tick(500, "BTCUSDT", 101, 2))
	s.Ingest(tick(900, "BTCUSDT", 99, 1))

	fresh := s.Resample()
	require.Len(t, fresh[repository.TF1s], 1)

	b := fresh[repository.TF1s][0]
	assert.Equal(t, 100.0, b.Open)
	assert.Equal(t, 101.0, b.High)
	assert.Equal(t, 99.0, b.Low)
	assert.Equal(t, 99.0, b.Close)
	assert.Equal(t, 4.0, b.Volume)
	assert.Equal(t, time.UnixMilli(0).UTC(), b.Bucket)
}

func TestResampleInsertionOrderIndependent(t *testing.T) {
	ticks := []models.Tick{
		tick(100, "ETHUSDT", 3000, 1),
		tick(300, "ETHUSDT", 3010, 2),
		tick(600, "ETHUSDT", 2990, 3),
		tick(900, "ETHUSDT", 3005, 1),
	}

	var want models.Bar
	for i := 0; i < 10; i++ {
		shuffled := make([]models.Tick, len(ticks))
		copy(shuffled, ticks)
		rand.New(rand.NewSource(int64(i))).Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		s := newTestStore(t)
		for _, tk := range shuffled {
			s.Ingest(tk)
		}
		fresh := s.Resample()
		require.Len(t, fresh[repository.TF1s], 1)
		got := fresh[repository.TF1s][0]
		if i == 0 {
			want = got
		}
		// open/close follow chronological order, high/low/volume are
		// order independent, so the whole bar must match.
		assert.Equal(t, want, got, "insertion order %d", i)
		assert.Equal(t, 3000.0, got.Open)
		assert.Equal(t, 3005.0, got.Close)
	}
}

func TestResampleIdempotent(t *testing.T) {
	s := newTestStore(t)
	for i := int64(0); i < 100; i++ {
		s.Ingest(tick(i*100, "BTCUSDT", 100+float64(i%7), 1))
	}
	s.Resample()
	first, err := s.GetSeries(repository.TF1s, "")
	require.NoError(t, err)

	s.Resample()
	second, err := s.GetSeries(repository.TF1s, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResampleLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	s.Ingest(tick(0, "BTCUSDT", 100, 1))
	s.Resample()

	s.Ingest(tick(200, "BTCUSDT", 105, 2))
	s.Resample()

	bars, err := s.GetSeries(repository.TF1s, "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 105.0, bars[0].High)
	assert.Equal(t, 105.0, bars[0].Close)
	assert.Equal(t, 3.0, bars[0].Volume)
}

func TestRawBufferEviction(t *testing.T) {
	s := newTestStore(t)
	for i := int64(0); i <= 10000; i++ {
		s.Ingest(tick(i, "BTCUSDT", 100, 1))
	}
	assert.Equal(t, 5000, s.RawSize())

	// most recent ticks survive
	ticks := s.GetRawTicks("", 1)
	require.Len(t, ticks, 1)
	assert.Equal(t, time.UnixMilli(10000).UTC(), ticks[0].Timestamp)
}

func TestBarRetentionCap(t *testing.T) {
	s := New(Config{RawHighWater: 100000, RawLowWater: 50000, BarCap: 20, BarRetain: 10},
		repository.Timeframes(), nil, nil)
	for i := int64(0); i < 30; i++ {
		s.Ingest(tick(i*1000, "BTCUSDT", 100, 1))
	}
	s.Resample()
	bars, err := s.GetSeries(repository.TF1s, "")
	require.NoError(t, err)
	assert.Len(t, bars, 10)
	// the retained tail is the most recent
	assert.Equal(t, time.UnixMilli(29000).UTC(), bars[len(bars)-1].Bucket)
}

func TestGetSeriesInvalidTimeframe(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSeries(repository.Timeframe("2h"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidTimeframe)
}

func TestGetSeriesEmpty(t *testing.T) {
	s := newTestStore(t)
	bars, err := s.GetSeries(repository.TF5m, "BTCUSDT")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestGetSeriesSymbolFilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	s.Ingest(tick(2000, "ETHUSDT", 3000, 1))
	s.Ingest(tick(0, "BTCUSDT", 100, 1))
	s.Ingest(tick(1000, "BTCUSDT", 101, 1))
	s.Resample()

	bars, err := s.GetSeries(repository.TF1s, "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Bucket.Before(bars[1].Bucket))

	all, err := s.GetSeries(repository.TF1s, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetRawTicksLimit(t *testing.T) {
	s := newTestStore(t)
	for i := int64(0); i < 50; i++ {
		sym := "BTCUSDT"
		if i%2 == 0 {
			sym = "ETHUSDT"
		}
		s.Ingest(tick(i, sym, float64(i), 1))
	}

	got := s.GetRawTicks("BTCUSDT", 5)
	require.Len(t, got, 5)
	assert.Equal(t, 49.0, got[len(got)-1].Price)
	for _, tk := range got {
		assert.Equal(t, "BTCUSDT", tk.Symbol)
	}
}
