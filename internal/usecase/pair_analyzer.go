package usecase

import (
	"fmt"

	"PairScope/internal/analytics"
	"PairScope/internal/domain/models"
	drepo "PairScope/internal/domain/repository"
	"PairScope/internal/store"
)

// PairAnalyzer derives pairs-trading statistics from the stored bar
// series: hedge ratio, spread, rolling z-score and rolling correlation.
type PairAnalyzer struct {
	store  *store.Store
	engine *analytics.Engine
}

func NewPairAnalyzer(s *store.Store, e *analytics.Engine) *PairAnalyzer {
	return &PairAnalyzer{store: s, engine: e}
}

// closes pulls the close-price series of one symbol for a timeframe.
func (p *PairAnalyzer) closes(tf drepo.Timeframe, symbol string) (models.Series, error) {
	bars, err := p.store.GetSeries(tf, symbol)
	if err != nil {
		return nil, err
	}
	return models.CloseSeries(bars), nil
}

// Analyze computes the consolidated pair view. Series outputs are
// truncated to the trailing tail entries when tail > 0.
func (p *PairAnalyzer) Analyze(tf drepo.Timeframe, symbolA, symbolB string, window, tail int) (*models.PairAnalysis, error) {
	a, err := p.closes(tf, symbolA)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", symbolA, err)
	}
	b, err := p.closes(tf, symbolB)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", symbolB, err)
	}

	hedge := p.engine.HedgeRatio(a, b)
	spread := p.engine.Spread(a, b, hedge)
	zscore := p.engine.RollingZScore(spread.Values(), window)
	corr := p.engine.RollingCorrelation(a, b, window)

	return &models.PairAnalysis{
		SymbolA:     symbolA,
		SymbolB:     symbolB,
		Timeframe:   string(tf),
		Window:      window,
		HedgeRatio:  hedge,
		Spread:      tailOf(spread.Values(), tail),
		ZScore:      tailOf(zscore, tail),
		Correlation: tailOf(corr, tail),
	}, nil
}

// SpreadADF runs the stationarity test on the hedge-scaled spread.
func (p *PairAnalyzer) SpreadADF(tf drepo.Timeframe, symbolA, symbolB string) (models.ADFResult, error) {
	a, err := p.closes(tf, symbolA)
	if err != nil {
		return models.ADFResult{}, fmt.Errorf("series %s: %w", symbolA, err)
	}
	b, err := p.closes(tf, symbolB)
	if err != nil {
		return models.ADFResult{}, fmt.Errorf("series %s: %w", symbolB, err)
	}

	hedge := p.engine.HedgeRatio(a, b)
	spread := p.engine.Spread(a, b, hedge)
	return p.engine.ADFTest(spread.Values())
}

// Stats summarizes the close prices of one symbol.
func (p *PairAnalyzer) Stats(tf drepo.Timeframe, symbol string) (models.PriceStats, error) {
	s, err := p.closes(tf, symbol)
	if err != nil {
		return models.PriceStats{}, err
	}
	return p.engine.PriceStatistics(s.Values()), nil
}

func tailOf(xs []float64, tail int) []float64 {
	if tail > 0 && len(xs) > tail {
		return xs[len(xs)-tail:]
	}
	return xs
}
