package models

// Requests for market data HTTP endpoints. Defined in domain for consistency and reuse.

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=10000"`
}

type TicksRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=10000"`
}

type StatsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m"`
}

type PairRequest struct {
	SymbolA string `query:"a" json:"a" validate:"required"`
	SymbolB string `query:"b" json:"b" validate:"required"`
	TF      string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m"`
	Window  int    `query:"window" json:"window" default:"20" validate:"gte=2,lte=500"`
	Tail    int    `query:"tail" json:"tail" default:"200" validate:"gte=1,lte=2000"`
}

type ADFRequest struct {
	SymbolA string `query:"a" json:"a" validate:"required"`
	SymbolB string `query:"b" json:"b" validate:"required"`
	TF      string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m"`
}

type AlertActiveRequest struct {
	Active bool `json:"active"`
}

type ExportRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	TF     string `query:"tf" json:"tf" validate:"omitempty,oneof=1s 1m 5m"`
}
