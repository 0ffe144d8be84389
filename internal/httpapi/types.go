package httpapi

import (
	"stockboard/internal/dashboard"
	"stockboard/internal/domain"
	"stockboard/internal/stats"
)

// StocksResponse is the JSON response for GET /api/stocks.
type StocksResponse struct {
	Total  int                   `json:"total"`
	Stocks []domain.StockSummary `json:"stocks"`
}

// StockResponse is the JSON response for GET /api/stocks/{symbol}.
// InIndex is false when the row was derived from the price series because
// the symbol is missing from the index.
type StockResponse struct {
	domain.StockSummary
	ExchangeLabel string `json:"exchangeLabel"`
	CategoryLabel string `json:"categoryLabel"`
	InIndex       bool   `json:"inIndex"`
}

// ChartResponse is the JSON response for GET /api/stocks/{symbol}/chart.
type ChartResponse struct {
	Symbol string              `json:"symbol"`
	Range  stats.Range         `json:"range"`
	Points int                 `json:"points"`
	Prices []domain.PricePoint `json:"prices"`
}

// StatsResponse is the JSON response for GET /api/stocks/{symbol}/stats.
type StatsResponse struct {
	stats.Snapshot
	Display StatsDisplay `json:"display"`
}

// StatsDisplay holds the detail-view statistics formatted for display.
type StatsDisplay struct {
	Volume    string `json:"volume"`
	High52W   string `json:"high52w"`
	Low52W    string `json:"low52w"`
	AvgVolume string `json:"avgVolume"`
}

// OverviewResponse is the JSON response for GET /api/overview.
type OverviewResponse struct {
	dashboard.Overview
	Facets dashboard.Facets `json:"facets"`
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
