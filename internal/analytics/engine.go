package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"PairScope/internal/domain/models"
)

// Engine computes pairs-trading statistics over price series pulled from
// the store. It is stateless: every method takes input series and returns
// a result or an explicit error, never a panic for expected edge cases.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Align intersects two series on shared timestamps and drops rows where
// either value is missing. The returned vectors are index-aligned.
func Align(a, b models.Series) (av, bv []float64, times []int64) {
	bByTime := make(map[int64]float64, len(b))
	for _, p := range b {
		bByTime[p.Time.UnixNano()] = p.Value
	}
	for _, p := range a {
		q, ok := bByTime[p.Time.UnixNano()]
		if !ok || math.IsNaN(p.Value) || math.IsNaN(q) {
			continue
		}
		av = append(av, p.Value)
		bv = append(bv, q)
		times = append(times, p.Time.UnixNano())
	}
	return av, bv, times
}

// PriceStatistics summarizes a price vector: mean, std, min, max, count,
// plus mean and std of simple percentage returns. Empty input yields a
// zero-valued result.
func (e *Engine) PriceStatistics(prices []float64) models.PriceStats {
	clean := dropNaN(prices)
	if len(clean) == 0 {
		return models.PriceStats{}
	}

	st := models.PriceStats{
		MeanPrice: stat.Mean(clean, nil),
		MinPrice:  clean[0],
		MaxPrice:  clean[0],
		Count:     len(clean),
	}
	for _, p := range clean {
		if p < st.MinPrice {
			st.MinPrice = p
		}
		if p > st.MaxPrice {
			st.MaxPrice = p
		}
	}
	if len(clean) >= 2 {
		st.StdPrice = stat.StdDev(clean, nil)
	}

	rets := simpleReturns(clean)
	if len(rets) > 0 {
		st.MeanReturn = stat.Mean(rets, nil)
	}
	if len(rets) >= 2 {
		st.StdReturn = stat.StdDev(rets, nil)
	}
	return st
}

// HedgeRatio fits A = alpha + beta*B by ordinary least squares over the
// aligned rows and returns beta. Fewer than two aligned points yields 0.
// A singular regression falls back to Cov(A,B)/Var(B) exactly; zero
// variance in B yields 0.
func (e *Engine) HedgeRatio(a, b models.Series) float64 {
	av, bv, _ := Align(a, b)
	if len(av) < 2 {
		return 0
	}

	_, beta := stat.LinearRegression(bv, av, nil, false)
	if isFinite(beta) {
		return beta
	}

	varB := stat.Variance(bv, nil)
	if varB == 0 || !isFinite(varB) {
		return 0
	}
	ratio := stat.Covariance(av, bv, nil) / varB
	if !isFinite(ratio) {
		return 0
	}
	return ratio
}

// Spread computes the hedge-scaled difference A - beta*B over the aligned
// rows, keyed by A's timestamps. Empty alignment yields an empty series.
func (e *Engine) Spread(a, b models.Series, hedgeRatio float64) models.Series {
	av, bv, times := Align(a, b)
	out := make(models.Series, 0, len(av))
	for i := range av {
		out = append(out, models.Point{
			Time:  timeFromNanos(times[i]),
			Value: av[i] - hedgeRatio*bv[i],
		})
	}
	return out
}

// RollingZScore computes (x - rolling mean) / rolling std over a trailing
// window. Indices before window-1 are NaN, as is any index where the
// rolling std is exactly zero. A series shorter than the window yields an
// all-NaN output of matching length.
func (e *Engine) RollingZScore(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	if window <= 0 || len(xs) < window {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		win := xs[i-window+1 : i+1]
		sd := stat.StdDev(win, nil)
		if sd == 0 || !isFinite(sd) {
			continue
		}
		out[i] = (xs[i] - stat.Mean(win, nil)) / sd
	}
	return out
}

// RollingCorrelation computes the trailing-window Pearson correlation of
// two aligned series, with the same NaN-prefix rule as RollingZScore.
// The output length equals the aligned length.
func (e *Engine) RollingCorrelation(a, b models.Series, window int) []float64 {
	av, bv, _ := Align(a, b)
	out := nanSlice(len(av))
	if window <= 0 || len(av) < window {
		return out
	}
	for i := window - 1; i < len(av); i++ {
		r := stat.Correlation(av[i-window+1:i+1], bv[i-window+1:i+1], nil)
		if !isFinite(r) {
			continue
		}
		out[i] = r
	}
	return out
}

func simpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		rets = append(rets, (prices[i]-prices[i-1])/prices[i-1])
	}
	return rets
}

func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		out = append(out, x)
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func timeFromNanos(ns int64) time.Time { return time.Unix(0, ns).UTC() }

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
