package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/domain/models"
)

func series(start time.Time, step time.Duration, values ...float64) models.Series {
	s := make(models.Series, len(values))
	for i, v := range values {
		s[i] = models.Point{Time: start.Add(time.Duration(i) * step), Value: v}
	}
	return s
}

var t0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestPriceStatistics(t *testing.T) {
	e := New()
	st := e.PriceStatistics([]float64{100, 110, 105, 115})

	assert.InDelta(t, 107.5, st.MeanPrice, 1e-9)
	assert.Equal(t, 100.0, st.MinPrice)
	assert.Equal(t, 115.0, st.MaxPrice)
	assert.Equal(t, 4, st.Count)
	// returns: 0.1, -0.0454545..., 0.0952380...
	assert.InDelta(t, (0.1-1.0/22+2.0/21)/3, st.MeanReturn, 1e-9)
	assert.Greater(t, st.StdPrice, 0.0)
	assert.Greater(t, st.StdReturn, 0.0)
}

func TestPriceStatisticsEmpty(t *testing.T) {
	e := New()
	assert.Equal(t, models.PriceStats{}, e.PriceStatistics(nil))
	assert.Equal(t, models.PriceStats{}, e.PriceStatistics([]float64{math.NaN()}))
}

func TestHedgeRatioIdenticalSeries(t *testing.T) {
	e := New()
	a := series(t0, time.Minute, 100, 101, 103, 102, 105, 104)
	ratio := e.HedgeRatio(a, a)
	assert.InDelta(t, 1.0, ratio, 1e-9)
}

func TestHedgeRatioZeroVariance(t *testing.T) {
	e := New()
	a := series(t0, time.Minute, 100, 101, 103, 102)
	b := series(t0, time.Minute, 50, 50, 50, 50)
	assert.Equal(t, 0.0, e.HedgeRatio(a, b))
}

func TestHedgeRatioTooFewPoints(t *testing.T) {
	e := New()
	a := series(t0, time.Minute, 100)
	b := series(t0, time.Minute, 50)
	assert.Equal(t, 0.0, e.HedgeRatio(a, b))
	assert.Equal(t, 0.0, e.HedgeRatio(nil, nil))
}

func TestHedgeRatioScaledSeries(t *testing.T) {
	e := New()
	b := series(t0, time.Minute, 10, 11, 13, 12, 15, 14)
	a := make(models.Series, len(b))
	for i, p := range b {
		a[i] = models.Point{Time: p.Time, Value: 3*p.Value + 7}
	}
	assert.InDelta(t, 3.0, e.HedgeRatio(a, b), 1e-9)
}

func TestAlignDropsUnsharedTimestamps(t *testing.T) {
	a := series(t0, time.Minute, 1, 2, 3, 4)
	b := series(t0.Add(time.Minute), time.Minute, 20, 30, 40)

	av, bv, _ := Align(a, b)
	assert.Equal(t, []float64{2, 3, 4}, av)
	assert.Equal(t, []float64{20, 30, 40}, bv)
}

func TestSpread(t *testing.T) {
	e := New()
	a := series(t0, time.Minute, 100, 102, 104)
	b := series(t0, time.Minute, 10, 11, 12)

	sp := e.Spread(a, b, 2.0)
	require.Len(t, sp, 3)
	assert.Equal(t, 80.0, sp[0].Value)
	assert.Equal(t, 80.0, sp[1].Value)
	assert.Equal(t, 80.0, sp[2].Value)
	assert.Equal(t, t0, sp[0].Time)

	assert.Empty(t, e.Spread(nil, b, 2.0))
}

func TestRollingZScorePrefixUndefined(t *testing.T) {
	e := New()
	xs := []float64{1, 2, 3, 4, 5, 6}
	zs := e.RollingZScore(xs, 3)
	require.Len(t, zs, len(xs))

	assert.True(t, math.IsNaN(zs[0]))
	assert.True(t, math.IsNaN(zs[1]))
	for i := 2; i < len(zs); i++ {
		assert.False(t, math.IsNaN(zs[i]), "index %d", i)
		// monotone ramp: last point is exactly one sample std above the mean
		assert.InDelta(t, 1.0, zs[i], 1e-9)
	}
}

func TestRollingZScoreConstantSeries(t *testing.T) {
	e := New()
	zs := e.RollingZScore([]float64{5, 5, 5, 5, 5}, 3)
	require.Len(t, zs, 5)
	for i, z := range zs {
		assert.True(t, math.IsNaN(z), "index %d", i)
	}
}

func TestRollingZScoreShortSeries(t *testing.T) {
	e := New()
	zs := e.RollingZScore([]float64{1, 2}, 5)
	require.Len(t, zs, 2)
	assert.True(t, math.IsNaN(zs[0]))
	assert.True(t, math.IsNaN(zs[1]))

	assert.Empty(t, e.RollingZScore(nil, 5))
}

func TestRollingCorrelation(t *testing.T) {
	e := New()
	a := series(t0, time.Minute, 1, 2, 3, 4, 5)
	b := series(t0, time.Minute, 2, 4, 6, 8, 10)

	cs := e.RollingCorrelation(a, b, 3)
	require.Len(t, cs, 5)
	assert.True(t, math.IsNaN(cs[0]))
	assert.True(t, math.IsNaN(cs[1]))
	for i := 2; i < 5; i++ {
		assert.InDelta(t, 1.0, cs[i], 1e-9)
	}

	// anti-correlated
	c := series(t0, time.Minute, 10, 8, 6, 4, 2)
	cs = e.RollingCorrelation(a, c, 3)
	for i := 2; i < 5; i++ {
		assert.InDelta(t, -1.0, cs[i], 1e-9)
	}
}
