package models

import "time"

// Tick is a single trade event. Immutable once created; the store consumes
// it into a bucket and never mutates it.
type Tick struct {
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
}

// Bar is an OHLCV aggregate over a fixed time bucket.
// Invariants: Low <= Open <= High, Low <= Close <= High, Volume >= 0.
// One bar exists per (symbol, bucket, timeframe).
type Bar struct {
	Bucket time.Time `json:"bucket"`
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Point is a single time-indexed value.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is an ordered-by-time sequence of values. It is the common
// currency between analytics outputs and alert inputs.
type Series []Point

// Values returns the raw value vector of the series.
func (s Series) Values() []float64 {
	vs := make([]float64, len(s))
	for i, p := range s {
		vs[i] = p.Value
	}
	return vs
}

// TriggeredAlert records one alert firing. Immutable, append-only history.
type TriggeredAlert struct {
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
}

// CloseSeries extracts the close prices of bars as a Series.
func CloseSeries(bars []Bar) Series {
	s := make(Series, len(bars))
	for i, b := range bars {
		s[i] = Point{Time: b.Bucket, Value: b.Close}
	}
	return s
}
