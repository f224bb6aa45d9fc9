package repository

import (
	"context"
	"database/sql"
	"fmt"

	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
)

// ClickHouseSink persists ticks and bars to ClickHouse, append-only.
type ClickHouseSink struct {
	db       *sql.DB
	database string
}

// SchemaStatements returns the idempotent DDL for the sink tables.
func SchemaStatements(database string) []string {
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.ticks (
			ts DateTime64(3), symbol String, price Float64, quantity Float64
		) ENGINE=MergeTree ORDER BY (symbol, ts)`, database),
	}
	for _, tf := range drepo.Timeframes() {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
			bucket DateTime64(3), symbol String,
			open Float64, high Float64, low Float64, close Float64, volume Float64
		) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`, database, barTable(tf)))
	}
	return stmts
}

func barTable(tf drepo.Timeframe) string {
	return "bars_" + string(tf)
}

// NewClickHouseSink creates a ClickHouse-backed Sink.
func NewClickHouseSink(db *sql.DB, database string) drepo.Sink {
	return &ClickHouseSink{db: db, database: database}
}

func (s *ClickHouseSink) WriteTicks(ctx context.Context, ticks []models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s.ticks (ts, symbol, price, quantity) VALUES (?, ?, ?, ?)", s.database)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	for _, t := range ticks {
		if _, err := stmt.ExecContext(ctx, t.Timestamp, t.Symbol, t.Price, t.Quantity); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert tick: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) WriteBars(ctx context.Context, tf drepo.Timeframe, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s.%s (bucket, symbol, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.database, barTable(tf))
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Bucket, b.Symbol, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) Close() error { return nil } // pool owned by pkg/clickhouse client
