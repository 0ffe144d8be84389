// Package stats derives display-time statistics from a price series:
// 52-week range, average volume, last-session change, and chart windows.
// Every function here is pure and safe for concurrent use.
package stats

import (
	"math"

	"github.com/shopspring/decimal"

	"stockboard/internal/domain"
)

// Default policy constants. They approximate calendar spans with fixed
// session counts and are not derived from the data.
const (
	DefaultYearWindow     = 252 // sessions in one trading year
	DefaultVolumeWindow   = 30  // sessions in the average-volume window
	DefaultMaxChartPoints = 500 // points kept by the ALL chart range
)

// Policy holds the fixed-window constants used by the engine.
type Policy struct {
	YearWindow     int
	VolumeWindow   int
	MaxChartPoints int
}

// DefaultPolicy returns the standard policy.
func DefaultPolicy() Policy {
	return Policy{
		YearWindow:     DefaultYearWindow,
		VolumeWindow:   DefaultVolumeWindow,
		MaxChartPoints: DefaultMaxChartPoints,
	}
}

// WithDefaults replaces non-positive fields with their defaults.
func (p Policy) WithDefaults() Policy {
	d := DefaultPolicy()
	if p.YearWindow <= 0 {
		p.YearWindow = d.YearWindow
	}
	if p.VolumeWindow <= 0 {
		p.VolumeWindow = d.VolumeWindow
	}
	if p.MaxChartPoints <= 0 {
		p.MaxChartPoints = d.MaxChartPoints
	}
	return p
}

// tail returns the last n elements of prices (all of them if shorter).
func tail(prices []domain.PricePoint, n int) []domain.PricePoint {
	if len(prices) > n {
		return prices[len(prices)-n:]
	}
	return prices
}

// ---------------------------------------------------------------------------
// Trailing-window statistics
// ---------------------------------------------------------------------------

// High52W returns the highest high over the trailing year window. ok is
// false when there are no observations.
func (p Policy) High52W(prices []domain.PricePoint) (high float64, ok bool) {
	window := tail(prices, p.YearWindow)
	if len(window) == 0 {
		return 0, false
	}
	high = math.Inf(-1)
	for _, pt := range window {
		if pt.High > high {
			high = pt.High
		}
	}
	return high, true
}

// Low52W returns the lowest low over the trailing year window. ok is false
// when there are no observations.
func (p Policy) Low52W(prices []domain.PricePoint) (low float64, ok bool) {
	window := tail(prices, p.YearWindow)
	if len(window) == 0 {
		return 0, false
	}
	low = math.Inf(1)
	for _, pt := range window {
		if pt.Low < low {
			low = pt.Low
		}
	}
	return low, true
}

// AvgVolume returns the mean volume over the trailing volume window, rounded
// to the nearest integer. ok is false when there are no observations.
func (p Policy) AvgVolume(prices []domain.PricePoint) (avg int64, ok bool) {
	window := tail(prices, p.VolumeWindow)
	if len(window) == 0 {
		return 0, false
	}
	var total float64
	for _, pt := range window {
		total += float64(pt.Volume)
	}
	return int64(math.Round(total / float64(len(window)))), true
}

// High52W applies DefaultPolicy.
func High52W(prices []domain.PricePoint) (float64, bool) {
	return DefaultPolicy().High52W(prices)
}

// Low52W applies DefaultPolicy.
func Low52W(prices []domain.PricePoint) (float64, bool) {
	return DefaultPolicy().Low52W(prices)
}

// AvgVolume applies DefaultPolicy.
func AvgVolume(prices []domain.PricePoint) (int64, bool) {
	return DefaultPolicy().AvgVolume(prices)
}

// ---------------------------------------------------------------------------
// Last-session change
// ---------------------------------------------------------------------------

// Variation returns last-prev and the percentage change relative to prev,
// each rounded half away from zero to two decimals. prev must be non-zero.
func Variation(last, prev decimal.Decimal) (variation, percent decimal.Decimal, err error) {
	if prev.IsZero() {
		return decimal.Zero, decimal.Zero, domain.ErrDegenerateArithmetic
	}
	diff := last.Sub(prev)
	percent = diff.Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
	return diff.Round(2), percent, nil
}

// Latest returns the final observation, or nil for an empty series.
func Latest(prices []domain.PricePoint) *domain.PricePoint {
	if len(prices) == 0 {
		return nil
	}
	pt := prices[len(prices)-1]
	return &pt
}

// Change computes the last-session variation from the final two closes of a
// series. It is the fallback used when a symbol is not present in an index.
func Change(prices []domain.PricePoint) (variation, percent float64, err error) {
	if len(prices) < 2 {
		return 0, 0, domain.ErrInsufficientHistory
	}
	last := decimal.NewFromFloat(prices[len(prices)-1].Close)
	prev := decimal.NewFromFloat(prices[len(prices)-2].Close)
	v, pct, err := Variation(last, prev)
	if err != nil {
		return 0, 0, err
	}
	return v.InexactFloat64(), pct.InexactFloat64(), nil
}

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

// Snapshot bundles the detail-view statistics for one series. Nil pointers
// mean the statistic is undefined for the input.
type Snapshot struct {
	Symbol    string             `json:"symbol"`
	Points    int                `json:"points"`
	Latest    *domain.PricePoint `json:"latest"`
	High52W   *float64           `json:"high52w"`
	Low52W    *float64           `json:"low52w"`
	AvgVolume *int64             `json:"avgVolume"`
}

// Snapshot computes every detail-view statistic for series.
func (p Policy) Snapshot(series domain.StockSeries) Snapshot {
	s := Snapshot{
		Symbol: series.Symbol,
		Points: len(series.Prices),
		Latest: Latest(series.Prices),
	}
	if v, ok := p.High52W(series.Prices); ok {
		s.High52W = &v
	}
	if v, ok := p.Low52W(series.Prices); ok {
		s.Low52W = &v
	}
	if v, ok := p.AvgVolume(series.Prices); ok {
		s.AvgVolume = &v
	}
	return s
}

// SummaryFromSeries builds a minimal index row from a series alone, for a
// symbol that is missing from the index. Identity fields other than the
// symbol are left empty and the name falls back to the symbol.
func SummaryFromSeries(series domain.StockSeries) (domain.StockSummary, error) {
	variation, percent, err := Change(series.Prices)
	if err != nil {
		return domain.StockSummary{}, err
	}
	last := series.Prices[len(series.Prices)-1]
	return domain.StockSummary{
		Symbol:           series.Symbol,
		Name:             series.Symbol,
		LastPrice:        last.Close,
		LastDate:         last.Date,
		Variation:        variation,
		VariationPercent: percent,
	}, nil
}
