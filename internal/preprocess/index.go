package preprocess

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"stockboard/internal/domain"
	"stockboard/internal/stats"
)

// Summarize builds the index row for one symbol from its master metadata
// and raw price rows. The rows are assumed to be in ascending date order;
// the final two are taken as the last and previous sessions.
func Summarize(meta domain.SymbolMeta, rows []domain.RawPriceRow) (domain.StockSummary, error) {
	symbol := meta.Symbol
	if len(rows) < 2 {
		return domain.StockSummary{}, fmt.Errorf("%s has %d rows: %w", symbol, len(rows), domain.ErrInsufficientHistory)
	}
	lastRow := rows[len(rows)-1]
	prevRow := rows[len(rows)-2]

	last, err := parseClose(lastRow.Close)
	if err != nil {
		return domain.StockSummary{}, fmt.Errorf("%s last close %q: %w", symbol, lastRow.Close, err)
	}
	prev, err := parseClose(prevRow.Close)
	if err != nil {
		return domain.StockSummary{}, fmt.Errorf("%s previous close %q: %w", symbol, prevRow.Close, err)
	}

	variation, percent, err := stats.Variation(last, prev)
	if err != nil {
		return domain.StockSummary{}, fmt.Errorf("%s: %w", symbol, err)
	}
	if !finite(variation) || !finite(percent) {
		return domain.StockSummary{}, fmt.Errorf("%s: variation %s (%s%%) overflows: %w", symbol, variation, percent, domain.ErrDegenerateArithmetic)
	}

	name := strings.TrimSpace(meta.SecurityName)
	if name == "" {
		name = symbol
	}
	return domain.StockSummary{
		Symbol:           symbol,
		Name:             name,
		Exchange:         strings.TrimSpace(meta.ListingExchange),
		MarketCategory:   strings.TrimSpace(meta.MarketCategory),
		IsETF:            false,
		LastPrice:        last.Round(2).InexactFloat64(),
		LastDate:         lastRow.Date,
		Variation:        variation.InexactFloat64(),
		VariationPercent: percent.InexactFloat64(),
	}, nil
}

func parseClose(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, domain.ErrNonNumericClose
	}
	// The index stores float64; a close outside its range cannot be encoded.
	if !finite(d) {
		return decimal.Zero, domain.ErrNonNumericClose
	}
	return d, nil
}

func finite(d decimal.Decimal) bool {
	f := d.InexactFloat64()
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
