package alert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func always(_ []float64) bool { return true }
func never(_ []float64) bool  { return false }

func zscoreAbove(threshold float64) Predicate {
	return func(data []float64) bool {
		if len(data) == 0 {
			return false
		}
		last := data[len(data)-1]
		return !math.IsNaN(last) && math.Abs(last) > threshold
	}
}

func TestEvaluateTriggersAndHistory(t *testing.T) {
	e := New(nil, nil)
	e.Register("zscore>2", zscoreAbove(2), "BTCUSDT")

	got := e.Evaluate([]float64{0.5, 1.2, 2.5}, "BTCUSDT")
	require.Len(t, got, 1)
	assert.Equal(t, "zscore>2", got[0].Name)
	assert.Equal(t, "BTCUSDT", got[0].Symbol)
	assert.False(t, got[0].Timestamp.IsZero())

	got = e.Evaluate([]float64{0.5, 1.2, 1.8}, "BTCUSDT")
	assert.Empty(t, got)

	assert.Len(t, e.History(), 1)
}

func TestEvaluateSymbolFilter(t *testing.T) {
	e := New(nil, nil)
	e.Register("btc-only", always, "BTCUSDT")
	e.Register("everything", always, "")

	got := e.Evaluate([]float64{1}, "ETHUSDT")
	require.Len(t, got, 1)
	assert.Equal(t, "everything", got[0].Name)

	got = e.Evaluate([]float64{1}, "BTCUSDT")
	assert.Len(t, got, 2)
}

func TestDuplicateNamesBothEvaluated(t *testing.T) {
	e := New(nil, nil)
	e.Register("X", always, "")
	e.Register("X", always, "")

	got := e.Evaluate([]float64{1}, "BTCUSDT")
	assert.Len(t, got, 2)
	assert.Len(t, e.History(), 2)
}

func TestPredicatePanicIsIsolated(t *testing.T) {
	e := New(nil, nil)
	e.Register("broken", func(data []float64) bool {
		panic("boom")
	}, "")
	e.Register("fine", always, "")

	got := e.Evaluate([]float64{1}, "")
	require.Len(t, got, 1)
	assert.Equal(t, "fine", got[0].Name)
}

func TestSetActiveFirstMatchOnly(t *testing.T) {
	e := New(nil, nil)
	e.Register("X", always, "")
	e.Register("X", always, "")

	assert.True(t, e.SetActive("X", false))
	assert.Len(t, e.ListActive(), 1)

	got := e.Evaluate([]float64{1}, "")
	assert.Len(t, got, 1)

	e.SetActive("X", true)
	assert.Len(t, e.ListActive(), 2)

	// unknown name is a no-op
	assert.False(t, e.SetActive("missing", false))
	assert.Len(t, e.ListActive(), 2)
}

func TestUnregisterRemovesAllMatches(t *testing.T) {
	e := New(nil, nil)
	e.Register("X", always, "")
	e.Register("X", always, "")
	e.Register("Y", never, "")

	assert.Equal(t, 2, e.Unregister("X"))
	active := e.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, "Y", active[0].Name)
}

func TestHistoryIsSnapshot(t *testing.T) {
	e := New(nil, nil)
	e.Register("X", always, "")
	e.Evaluate([]float64{1}, "BTCUSDT")

	h := e.History()
	h[0].Name = "mutated"
	assert.Equal(t, "X", e.History()[0].Name)
}
