package di

import (
	"context"
	"fmt"
	"math"
	"time"

	"PairScope/internal/alert"
	"PairScope/internal/analytics"
	drepo "PairScope/internal/domain/repository"
	"PairScope/internal/handler/api"
	internalrepo "PairScope/internal/repository"
	"PairScope/internal/service/binance"
	"PairScope/internal/store"
	"PairScope/internal/usecase"
	"PairScope/pkg/cache"
	pkgch "PairScope/pkg/clickhouse"
	"PairScope/pkg/config"
	pkgkafka "PairScope/pkg/kafka"
	applogger "PairScope/pkg/logger"
	"PairScope/pkg/metrics"
	"PairScope/pkg/server"
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideStore creates the in-memory aggregation store.
func ProvideStore(cfg *config.Config, log *applogger.Logger, m drepo.Metrics) *store.Store {
	return store.New(store.Config{
		RawHighWater: cfg.Store.RawHighWater,
		RawLowWater:  cfg.Store.RawLowWater,
		BarCap:       cfg.Store.BarCap,
		BarRetain:    cfg.Store.BarRetain,
	}, drepo.Timeframes(), log, m)
}

// ProvideAnalyticsEngine creates the statistics engine.
func ProvideAnalyticsEngine() *analytics.Engine {
	return analytics.New()
}

// ProvideAlertEngine creates the alert engine with the default z-score
// alerts for the configured pair.
func ProvideAlertEngine(cfg *config.Config, log *applogger.Logger, m drepo.Metrics) *alert.Engine {
	e := alert.New(log, m)

	e.Register("zscore-above-2", lastAbove(2.0), cfg.Pair.SymbolA)
	e.Register("zscore-below-neg2", lastBelow(-2.0), cfg.Pair.SymbolA)
	return e
}

// lastAbove fires when the most recent finite value exceeds the threshold.
func lastAbove(threshold float64) alert.Predicate {
	return func(xs []float64) bool {
		if v, ok := lastFinite(xs); ok {
			return v > threshold
		}
		return false
	}
}

func lastBelow(threshold float64) alert.Predicate {
	return func(xs []float64) bool {
		if v, ok := lastFinite(xs); ok {
			return v < threshold
		}
		return false
	}
}

func lastFinite(xs []float64) (float64, bool) {
	for i := len(xs) - 1; i >= 0; i-- {
		if !math.IsNaN(xs[i]) && !math.IsInf(xs[i], 0) {
			return xs[i], true
		}
	}
	return 0, false
}

// ProvidePairAnalyzer creates the pair analytics use case.
func ProvidePairAnalyzer(st *store.Store, engine *analytics.Engine) *usecase.PairAnalyzer {
	return usecase.NewPairAnalyzer(st, engine)
}

// ProvideMarketQuery creates the market query use case.
func ProvideMarketQuery(st *store.Store) *usecase.MarketQuery {
	return usecase.NewMarketQuery(st)
}

// ProvideMarketStream creates the Binance WebSocket stream.
func ProvideMarketStream(cfg *config.Config, log *applogger.Logger) drepo.MarketStream {
	return binance.New(
		cfg.Binance.WebSocketURL,
		cfg.Binance.Symbols,
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
		log,
	)
}

// ProvideSink builds the persistence sink selected by config. Returns a
// nil sink for the "none" backend; the collector treats nil as disabled.
func ProvideSink(cfg *config.Config) (drepo.Sink, error) {
	switch cfg.Sink.Backend {
	case "none", "":
		return nil, nil

	case "clickhouse":
		ch := cfg.Sink.ClickHouse
		client, err := pkgch.NewClient(
			pkgch.WithHost(ch.Host),
			pkgch.WithPort(ch.Port),
			pkgch.WithDatabase(ch.Database),
			pkgch.WithCredentials(ch.User, ch.Password),
			pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, internalrepo.SchemaStatements(ch.Database)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return internalrepo.NewClickHouseSink(client.DB(), ch.Database), nil

	case "kafka":
		k := cfg.Sink.Kafka
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(k.Brokers),
			pkgkafka.WithCompression(k.Compression),
			pkgkafka.WithRequiredAcks(k.RequiredAcks),
			pkgkafka.WithBatchSize(k.BatchSize),
			pkgkafka.WithBatchTimeout(k.Linger),
			pkgkafka.WithWriteTimeout(k.WriteTimeout),
			pkgkafka.WithMaxAttempts(k.MaxAttempts),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaSink(producer, k.TickTopic, k.BarTopic), nil

	default:
		return nil, fmt.Errorf("unknown sink backend %q", cfg.Sink.Backend)
	}
}

// ProvideCache builds the response cache: Redis when enabled, otherwise
// an in-process TTL cache.
func ProvideCache(cfg *config.Config, log *applogger.Logger) cache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithAddr(cfg.Cache.Redis.Addr),
			cache.WithPassword(cfg.Cache.Redis.Password),
			cache.WithDB(cfg.Cache.Redis.DB),
		)
		if err == nil {
			return rc
		}
		log.Warn("redis unavailable, falling back to memory cache", applogger.Error(err))
	}
	return cache.NewMemoryCache()
}

// ProvideCollector creates the ingest/resample/alert pipeline.
func ProvideCollector(
	stream drepo.MarketStream,
	st *store.Store,
	pair *usecase.PairAnalyzer,
	alerts *alert.Engine,
	sink drepo.Sink,
	m drepo.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.Collector {
	return usecase.NewCollector(stream, st, pair, alerts, sink, m, log, usecase.CollectorConfig{
		ResampleEvery: cfg.Resample.Interval,
		SymbolA:       cfg.Pair.SymbolA,
		SymbolB:       cfg.Pair.SymbolB,
		Window:        cfg.Pair.Window,
	})
}

// ProvideHandler creates the HTTP handler with the response cache wired.
func ProvideHandler(
	log *applogger.Logger,
	market *usecase.MarketQuery,
	pair *usecase.PairAnalyzer,
	alerts *alert.Engine,
	c cache.BytesCache,
	cfg *config.Config,
) *api.MarketHandler {
	h := api.NewMarketHandler(log, market, pair, alerts)
	h.SetCache(c, cfg.Cache.TTL)
	return h
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.Collector,
	handler *api.MarketHandler,
) *server.App {
	return server.New(cfg, log, collector, handler)
}
