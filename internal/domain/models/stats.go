package models

// PriceStats summarizes a price vector and its simple percentage returns.
type PriceStats struct {
	MeanPrice  float64 `json:"mean_price"`
	StdPrice   float64 `json:"std_price"`
	MeanReturn float64 `json:"mean_return"`
	StdReturn  float64 `json:"std_return"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
	Count      int     `json:"count"`
}

// ADFResult holds the outcome of an Augmented Dickey-Fuller test.
// IsStationary is true when PValue < 0.05.
type ADFResult struct {
	Statistic      float64            `json:"adf_statistic"`
	PValue         float64            `json:"p_value"`
	Lags           int                `json:"used_lags"`
	NObs           int                `json:"n_obs"`
	CriticalValues map[string]float64 `json:"critical_values"`
	IsStationary   bool               `json:"is_stationary"`
}

// PairAnalysis is the consolidated pairs-trading view for one symbol pair.
type PairAnalysis struct {
	SymbolA     string    `json:"symbol_a"`
	SymbolB     string    `json:"symbol_b"`
	Timeframe   string    `json:"timeframe"`
	Window      int       `json:"window"`
	HedgeRatio  float64   `json:"hedge_ratio"`
	Spread      []float64 `json:"spread"`
	ZScore      []float64 `json:"zscore"`
	Correlation []float64 `json:"correlation"`
}
