package repository

import (
	"context"
	"fmt"
	"time"

	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	pkgkafka "PairScope/pkg/kafka"
)

// KafkaSink publishes ticks and bars as JSON messages keyed by symbol,
// so per-symbol ordering survives partitioning.
type KafkaSink struct {
	producer  *pkgkafka.Producer
	tickTopic string
	barTopic  string
}

// NewKafkaSink creates a Kafka-backed Sink.
func NewKafkaSink(producer *pkgkafka.Producer, tickTopic, barTopic string) drepo.Sink {
	return &KafkaSink{producer: producer, tickTopic: tickTopic, barTopic: barTopic}
}

type tickMessage struct {
	Timestamp int64   `json:"ts"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
}

type barMessage struct {
	Bucket    int64   `json:"bucket"`
	Symbol    string  `json:"symbol"`
	Timeframe string  `json:"tf"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (s *KafkaSink) WriteTicks(ctx context.Context, ticks []models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(ticks))
	for _, t := range ticks {
		msgs = append(msgs, pkgkafka.Message{
			Key: []byte(t.Symbol),
			Value: tickMessage{
				Timestamp: t.Timestamp.UnixMilli(),
				Symbol:    t.Symbol,
				Price:     t.Price,
				Quantity:  t.Quantity,
			},
		})
	}
	if err := s.producer.PublishBatch(ctx, s.tickTopic, msgs); err != nil {
		return fmt.Errorf("publish ticks: %w", err)
	}
	return nil
}

func (s *KafkaSink) WriteBars(ctx context.Context, tf drepo.Timeframe, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(bars))
	for _, b := range bars {
		msgs = append(msgs, pkgkafka.Message{
			Key: []byte(b.Symbol),
			Value: barMessage{
				Bucket:    b.Bucket.UnixMilli(),
				Symbol:    b.Symbol,
				Timeframe: string(tf),
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
			},
		})
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.producer.PublishBatch(ctx, s.barTopic, msgs); err != nil {
		return fmt.Errorf("publish bars: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error { return s.producer.Close() }
