package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/domain/models"
)

func TestADFInsufficientData(t *testing.T) {
	e := New()
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	_, err := e.ADFTest(xs)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestADFDropsNaNBeforeCounting(t *testing.T) {
	e := New()
	xs := []float64{1, 2, math.NaN(), 3, 4, math.NaN(), 5, 6, 7, 8}
	_, err := e.ADFTest(xs) // 8 real points
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestADFStationarySeries(t *testing.T) {
	e := New()
	// bounded oscillation around zero, strongly mean reverting
	xs := make([]float64, 200)
	for i := range xs {
		xs[i] = math.Sin(0.7*float64(i)) + 0.3*math.Sin(3.1*float64(i))
	}

	res, err := e.ADFTest(xs)
	require.NoError(t, err)
	assert.True(t, res.IsStationary)
	assert.Less(t, res.PValue, 0.05)
	assert.Less(t, res.Statistic, res.CriticalValues["5%"])
}

func TestADFTrendingSeries(t *testing.T) {
	e := New()
	// drifting level: the constant-only test must not call this stationary
	xs := make([]float64, 200)
	for i := 1; i < len(xs); i++ {
		xs[i] = xs[i-1] + 0.5 + 0.5*math.Sin(1.3*float64(i))
	}

	res, err := e.ADFTest(xs)
	require.NoError(t, err)
	assert.False(t, res.IsStationary)
	assert.Greater(t, res.PValue, 0.05)
}

func TestADFResultShape(t *testing.T) {
	e := New()
	xs := make([]float64, 120)
	for i := range xs {
		xs[i] = math.Sin(0.9 * float64(i))
	}

	res, err := e.ADFTest(xs)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(res.Statistic))
	assert.GreaterOrEqual(t, res.PValue, 0.0)
	assert.LessOrEqual(t, res.PValue, 1.0)
	require.Len(t, res.CriticalValues, 3)
	assert.Less(t, res.CriticalValues["1%"], res.CriticalValues["5%"])
	assert.Less(t, res.CriticalValues["5%"], res.CriticalValues["10%"])
	assert.Greater(t, res.NObs, 0)
	assert.GreaterOrEqual(t, res.Lags, 0)
}
