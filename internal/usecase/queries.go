package usecase

import (
	"fmt"
	"time"

	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	"PairScope/internal/store"
	"PairScope/pkg/util"
)

// MarketQuery provides read access to the stored bars and raw ticks for
// the presentation layer.
type MarketQuery struct {
	store *store.Store
}

func NewMarketQuery(s *store.Store) *MarketQuery {
	return &MarketQuery{store: s}
}

type GetCandlesParams struct {
	Symbol    string
	Timeframe drepo.Timeframe
	From      string // RFC3339 or unix seconds, optional
	To        string
	Limit     int
}

type GetCandlesResult struct {
	Symbol    string       `json:"symbol"`
	Timeframe string       `json:"timeframe"`
	Count     int          `json:"count"`
	Candles   []models.Bar `json:"candles"`
}

// GetCandles returns a bounded, optionally time-filtered bar snapshot.
func (q *MarketQuery) GetCandles(p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	bars, err := q.store.GetSeries(p.Timeframe, p.Symbol)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}

	from := util.ParseTimeDefault(p.From, time.Time{})
	to := util.ParseTimeDefault(p.To, time.Time{})
	if !from.IsZero() || !to.IsZero() {
		from, to = util.TruncateRange(from, to, p.Timeframe.Duration())
		filtered := bars[:0]
		for _, b := range bars {
			if !from.IsZero() && b.Bucket.Before(from) {
				continue
			}
			if !to.IsZero() && b.Bucket.After(to) {
				continue
			}
			filtered = append(filtered, b)
		}
		bars = filtered
	}

	if len(bars) > p.Limit {
		bars = bars[len(bars)-p.Limit:]
	}

	return &GetCandlesResult{
		Symbol:    p.Symbol,
		Timeframe: string(p.Timeframe),
		Count:     len(bars),
		Candles:   bars,
	}, nil
}

// GetTicks returns the most recent raw ticks.
func (q *MarketQuery) GetTicks(symbol string, limit int) []models.Tick {
	if limit <= 0 {
		limit = 1000
	}
	if limit > 10000 {
		limit = 10000
	}
	return q.store.GetRawTicks(symbol, limit)
}
