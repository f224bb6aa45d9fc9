package repository

import (
	"context"

	"PairScope/internal/domain/models"
)

// MarketStream is the tick source collaborator. It owns connection
// handshake, reconnect and message parsing; the core only consumes the
// tick channel.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Sink is the optional durable persistence collaborator. Writes are
// append-only and best-effort: failures are logged and never affect
// in-memory state.
type Sink interface {
	WriteTicks(ctx context.Context, ticks []models.Tick) error
	WriteBars(ctx context.Context, tf Timeframe, bars []models.Bar) error
	Close() error
}

type Metrics interface {
	RecordTickIngested(symbol string)
	RecordBarsResampled(tf string, n int)
	RecordAlertTriggered(name string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
