package preprocess

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"stockboard/internal/csvline"
	"stockboard/internal/domain"
)

// Price file column names.
const (
	colDate     = "Date"
	colOpen     = "Open"
	colHigh     = "High"
	colLow      = "Low"
	colClose    = "Close"
	colAdjClose = "Adj Close"
	colVolume   = "Volume"
)

// ReadPriceRows reads one per-symbol OHLCV file. Columns are mapped by
// header name. A missing file yields an error wrapping
// domain.ErrMissingInput.
func ReadPriceRows(path string) ([]domain.RawPriceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("price file %s: %w", path, domain.ErrMissingInput)
		}
		return nil, err
	}
	defer f.Close()

	table, err := csvline.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	rows := make([]domain.RawPriceRow, len(table.Rows))
	for i, row := range table.Rows {
		rows[i] = domain.RawPriceRow{
			Date:     row.Get(colDate),
			Open:     row.Get(colOpen),
			High:     row.Get(colHigh),
			Low:      row.Get(colLow),
			Close:    row.Get(colClose),
			AdjClose: row.Get(colAdjClose),
			Volume:   row.Get(colVolume),
		}
	}
	return rows, nil
}

// Normalize coerces raw rows into a price series. Unparsable prices become
// 0 and unparsable volumes become 0; no row is dropped and the input order
// is kept as is.
func Normalize(symbol string, rows []domain.RawPriceRow) domain.StockSeries {
	prices := make([]domain.PricePoint, len(rows))
	for i, r := range rows {
		prices[i] = domain.PricePoint{
			Date:   r.Date,
			Open:   domain.FloatOrZero(r.Open),
			High:   domain.FloatOrZero(r.High),
			Low:    domain.FloatOrZero(r.Low),
			Close:  domain.FloatOrZero(r.Close),
			Volume: domain.ParseVolume(r.Volume),
		}
	}
	return domain.StockSeries{Symbol: symbol, Prices: prices}
}
