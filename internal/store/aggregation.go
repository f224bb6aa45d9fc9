package store

import (
	"fmt"
	"sort"
	"sync"

	"PairScope/internal/domain/models"
	"PairScope/internal/domain/repository"
	"PairScope/pkg/logger"
)

// Config bounds the in-memory window.
type Config struct {
	RawHighWater int // trim trigger for the raw tick buffer
	RawLowWater  int // size kept after a trim
	BarCap       int // trim trigger per timeframe series
	BarRetain    int // bars kept after a trim
}

// DefaultConfig returns the reference retention caps.
func DefaultConfig() Config {
	return Config{RawHighWater: 10000, RawLowWater: 5000, BarCap: 2000, BarRetain: 1000}
}

// Store owns the raw tick buffer and the per-timeframe bar series.
// All mutation happens under a single mutex; the lock is never held
// across I/O. Bars are idempotently rebuilt from the retained raw ticks,
// so last-write-wins merging is safe under concurrent resample calls.
type Store struct {
	mu      sync.Mutex
	cfg     Config
	frames  []repository.Timeframe
	ticks   []models.Tick
	bars    map[repository.Timeframe][]models.Bar
	log     *logger.Logger
	metrics repository.Metrics
}

// New creates a Store for the given timeframe set.
func New(cfg Config, frames []repository.Timeframe, log *logger.Logger, m repository.Metrics) *Store {
	if cfg.RawHighWater <= 0 {
		cfg = DefaultConfig()
	}
	bars := make(map[repository.Timeframe][]models.Bar, len(frames))
	for _, tf := range frames {
		bars[tf] = nil
	}
	return &Store{cfg: cfg, frames: frames, bars: bars, log: log, metrics: m}
}

// Ingest appends one tick to the raw buffer. Once the buffer exceeds the
// high-water mark it is trimmed to the low-water mark, oldest first.
// Malformed ticks are the ingestion collaborator's problem; no validation
// happens here.
func (s *Store) Ingest(t models.Tick) {
	s.mu.Lock()
	s.ticks = append(s.ticks, t)
	if len(s.ticks) > s.cfg.RawHighWater {
		keep := s.ticks[len(s.ticks)-s.cfg.RawLowWater:]
		s.ticks = append(make([]models.Tick, 0, s.cfg.RawHighWater), keep...)
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordTickIngested(t.Symbol)
		s.metrics.RecordLastPrice(t.Symbol, t.Price)
	}
}

// Resample rebuilds OHLCV bars from the retained raw ticks for every
// configured timeframe and merges them into the stored series,
// last-write-wins per (bucket, symbol). It returns the freshly computed
// bars per timeframe so the caller can forward them to a durable sink
// after the lock is released. One timeframe failing never aborts the
// others.
func (s *Store) Resample() map[repository.Timeframe][]models.Bar {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[repository.Timeframe][]models.Bar, len(s.frames))
	if len(s.ticks) == 0 {
		return out
	}

	for _, tf := range s.frames {
		fresh, err := s.resampleLocked(tf)
		if err != nil {
			if s.log != nil {
				s.log.Error("resample failed", logger.String("timeframe", string(tf)), logger.Error(err))
			}
			if s.metrics != nil {
				s.metrics.RecordError("resample_" + string(tf))
			}
			continue
		}
		out[tf] = fresh
		if s.metrics != nil {
			s.metrics.RecordBarsResampled(string(tf), len(fresh))
		}
	}
	return out
}

// resampleLocked buckets the raw ticks for one timeframe and merges the
// result into the stored series. Caller holds the lock. A panic in the
// bucketing math is recovered into an error so sibling timeframes keep
// processing.
func (s *Store) resampleLocked(tf repository.Timeframe) (fresh []models.Bar, err error) {
	defer func() {
		if r := recover(); r != nil {
			fresh, err = nil, fmt.Errorf("timeframe %s: %v", tf, r)
		}
	}()

	d := tf.Duration()
	if d <= 0 {
		return nil, fmt.Errorf("timeframe %s: non-positive bucket duration", tf)
	}

	// Stable sort by timestamp keeps ingestion order for equal timestamps,
	// so open/close are well defined inside a bucket.
	ordered := make([]models.Tick, len(s.ticks))
	copy(ordered, s.ticks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	type bucketKey struct {
		bucket int64
		symbol string
	}
	acc := make(map[bucketKey]*models.Bar)
	var order []bucketKey
	for _, t := range ordered {
		k := bucketKey{bucket: t.Timestamp.Truncate(d).UnixNano(), symbol: t.Symbol}
		b, ok := acc[k]
		if !ok {
			acc[k] = &models.Bar{
				Bucket: t.Timestamp.Truncate(d),
				Symbol: t.Symbol,
				Open:   t.Price,
				High:   t.Price,
				Low:    t.Price,
				Close:  t.Price,
				Volume: t.Quantity,
			}
			order = append(order, k)
			continue
		}
		if t.Price > b.High {
			b.High = t.Price
		}
		if t.Price < b.Low {
			b.Low = t.Price
		}
		b.Close = t.Price
		b.Volume += t.Quantity
	}

	fresh = make([]models.Bar, 0, len(order))
	for _, k := range order {
		fresh = append(fresh, *acc[k])
	}

	s.mergeLocked(tf, fresh)
	return fresh, nil
}

// mergeLocked applies last-write-wins merge semantics and enforces the
// retention cap. Caller holds the lock.
func (s *Store) mergeLocked(tf repository.Timeframe, fresh []models.Bar) {
	stored := s.bars[tf]

	type barKey struct {
		bucket int64
		symbol string
	}
	idx := make(map[barKey]int, len(stored))
	for i, b := range stored {
		idx[barKey{b.Bucket.UnixNano(), b.Symbol}] = i
	}

	for _, b := range fresh {
		k := barKey{b.Bucket.UnixNano(), b.Symbol}
		if i, ok := idx[k]; ok {
			stored[i] = b
			continue
		}
		idx[k] = len(stored)
		stored = append(stored, b)
	}

	sort.SliceStable(stored, func(i, j int) bool {
		if !stored[i].Bucket.Equal(stored[j].Bucket) {
			return stored[i].Bucket.Before(stored[j].Bucket)
		}
		return stored[i].Symbol < stored[j].Symbol
	})

	if len(stored) > s.cfg.BarCap {
		keep := stored[len(stored)-s.cfg.BarRetain:]
		stored = append(make([]models.Bar, 0, s.cfg.BarCap), keep...)
	}
	s.bars[tf] = stored
}

// GetSeries returns a sorted snapshot of the stored bars for tf,
// optionally filtered by symbol. No data yields an empty slice, not an
// error; an unconfigured timeframe yields ErrInvalidTimeframe.
func (s *Store) GetSeries(tf repository.Timeframe, symbol string) ([]models.Bar, error) {
	s.mu.Lock()
	stored, ok := s.bars[tf]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("timeframe %q: %w", tf, models.ErrInvalidTimeframe)
	}
	out := make([]models.Bar, 0, len(stored))
	for _, b := range stored {
		if symbol != "" && b.Symbol != symbol {
			continue
		}
		out = append(out, b)
	}
	s.mu.Unlock()
	return out, nil
}

// GetRawTicks returns the most recent limit raw ticks, optionally
// filtered by symbol.
func (s *Store) GetRawTicks(symbol string, limit int) []models.Tick {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Tick, 0, limit)
	for _, t := range s.ticks {
		if symbol != "" && t.Symbol != symbol {
			continue
		}
		out = append(out, t)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// RawSize reports the current raw buffer length.
func (s *Store) RawSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ticks)
}
