package usecase

import (
	"context"
	"sync"
	"time"

	"PairScope/internal/alert"
	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	"PairScope/internal/store"
	"PairScope/pkg/logger"
)

// Collector drives the ingestion loop: it consumes ticks from the market
// stream into the store, resamples on a fixed cadence, evaluates pair
// alerts over the fresh z-score series and forwards new data to the
// durable sink. Sink writes happen outside the store lock and are
// best-effort: a failed write is logged and never rolls back in-memory
// state.
type Collector struct {
	stream  drepo.MarketStream
	store   *store.Store
	pair    *PairAnalyzer
	alerts  *alert.Engine
	sink    drepo.Sink // nil when persistence is disabled
	metrics drepo.Metrics
	log     *logger.Logger

	resampleEvery time.Duration
	symbolA       string
	symbolB       string
	window        int

	mu      sync.Mutex
	pending []models.Tick // ticks not yet forwarded to the sink
}

type CollectorConfig struct {
	ResampleEvery time.Duration
	SymbolA       string
	SymbolB       string
	Window        int
}

func NewCollector(
	stream drepo.MarketStream,
	st *store.Store,
	pair *PairAnalyzer,
	alerts *alert.Engine,
	sink drepo.Sink,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg CollectorConfig,
) *Collector {
	if cfg.ResampleEvery <= 0 {
		cfg.ResampleEvery = time.Second
	}
	return &Collector{
		stream:        stream,
		store:         st,
		pair:          pair,
		alerts:        alerts,
		sink:          sink,
		metrics:       metrics,
		log:           log,
		resampleEvery: cfg.ResampleEvery,
		symbolA:       cfg.SymbolA,
		symbolB:       cfg.SymbolB,
		window:        cfg.Window,
	}
}

// IsConnected reports the market stream status.
func (c *Collector) IsConnected() bool { return c.stream.IsConnected() }

// Start connects the stream and launches the consume and resample loops.
func (c *Collector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	go c.resampleLoop(ctx)
	return nil
}

func (c *Collector) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.log.Warn("stream error, reconnecting", logger.Error(err))
				c.metrics.RecordError("stream")
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.log.Error("reconnect failed", logger.Error(rerr))
				} else {
					tickCh, errCh = c.stream.Read(ctx)
				}
			}
		case t := <-tickCh:
			if t == nil {
				continue
			}
			c.store.Ingest(*t)
			if c.sink != nil {
				c.mu.Lock()
				c.pending = append(c.pending, *t)
				c.mu.Unlock()
			}
		}
	}
}

func (c *Collector) resampleLoop(ctx context.Context) {
	ticker := time.NewTicker(c.resampleEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runCycle(ctx)
		}
	}
}

// runCycle performs one resample + evaluate + persist pass.
func (c *Collector) runCycle(ctx context.Context) {
	start := time.Now()
	fresh := c.store.Resample()
	c.evaluateAlerts()
	c.flushSink(ctx, fresh)
	c.metrics.RecordLatency("cycle", time.Since(start).Seconds())
}

// evaluateAlerts runs the registered predicates over the latest pair
// z-score series.
func (c *Collector) evaluateAlerts() {
	if c.symbolA == "" || c.symbolB == "" {
		return
	}
	res, err := c.pair.Analyze(drepo.DefaultTimeframe(), c.symbolA, c.symbolB, c.window, 0)
	if err != nil {
		c.log.Error("pair analysis failed", logger.Error(err))
		c.metrics.RecordError("pair_analysis")
		return
	}
	triggered := c.alerts.Evaluate(res.ZScore, c.symbolA)
	for _, ta := range triggered {
		c.log.Info("alert triggered",
			logger.String("alert", ta.Name),
			logger.String("symbol", ta.Symbol))
	}
}

// flushSink forwards pending ticks and freshly resampled bars. Holds no
// store lock; failures are logged only.
func (c *Collector) flushSink(ctx context.Context, fresh map[drepo.Timeframe][]models.Bar) {
	if c.sink == nil {
		return
	}

	c.mu.Lock()
	ticks := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(ticks) > 0 {
		if err := c.sink.WriteTicks(ctx, ticks); err != nil {
			c.log.Warn("sink tick write failed", logger.Int("count", len(ticks)), logger.Error(err))
			c.metrics.RecordError("sink_ticks")
		}
	}
	for tf, bars := range fresh {
		if err := c.sink.WriteBars(ctx, tf, bars); err != nil {
			c.log.Warn("sink bar write failed",
				logger.String("timeframe", string(tf)),
				logger.Int("count", len(bars)),
				logger.Error(err))
			c.metrics.RecordError("sink_bars")
		}
	}
}

// Shutdown closes the stream and the sink.
func (c *Collector) Shutdown(ctx context.Context) error {
	err := c.stream.Close()
	if c.sink != nil {
		if serr := c.sink.Close(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}
