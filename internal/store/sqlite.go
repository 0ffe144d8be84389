package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"stockboard/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ Catalog = (*SQLiteCatalog)(nil)
var _ CatalogLoader = (*SQLiteCatalog)(nil)

// SQLiteCatalog is a queryable copy of the stocks index backed by SQLite.
// It is rebuilt wholesale from the index artifact and never edited in place.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens (or creates) a SQLite database at dbPath and
// ensures the schema exists.
func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	c := &SQLiteCatalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating catalog: %w", err)
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

func (c *SQLiteCatalog) migrate() error {
	stmts := []string{
		// Superseded symbol-keyed layout; the catalog is derived, so drop it.
		`DROP TABLE IF EXISTS stocks`,
		// Rows are keyed by index position so a symbol listed twice in the
		// master table appears twice here, as it does in the index artifact.
		`CREATE TABLE IF NOT EXISTS stock_rows (
			pos               INTEGER PRIMARY KEY,
			symbol            TEXT NOT NULL,
			name              TEXT NOT NULL,
			exchange          TEXT NOT NULL,
			market_category   TEXT NOT NULL,
			is_etf            INTEGER NOT NULL,
			last_price        REAL NOT NULL,
			last_date         TEXT NOT NULL,
			variation         REAL NOT NULL,
			variation_percent REAL NOT NULL,
			enriched          INTEGER NOT NULL,
			short_name        TEXT NOT NULL DEFAULT '',
			industry          TEXT NOT NULL DEFAULT '',
			description       TEXT NOT NULL DEFAULT '',
			website           TEXT NOT NULL DEFAULT '',
			logo              TEXT NOT NULL DEFAULT '',
			ceo               TEXT NOT NULL DEFAULT '',
			market_cap        REAL NOT NULL DEFAULT 0,
			sector            TEXT NOT NULL DEFAULT '',
			tag1              TEXT NOT NULL DEFAULT '',
			tag2              TEXT NOT NULL DEFAULT '',
			tag3              TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_rows_symbol ON stock_rows(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_rows_exchange ON stock_rows(exchange)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_rows_sector ON stock_rows(sector)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_rows_industry ON stock_rows(industry)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceIndex swaps the catalog contents for idx in one transaction.
func (c *SQLiteCatalog) ReplaceIndex(ctx context.Context, idx *domain.StocksIndex) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stock_rows`); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stock_rows (
		pos, symbol, name, exchange, market_category, is_etf, last_price, last_date,
		variation, variation_percent, enriched, short_name, industry, description,
		website, logo, ceo, market_cap, sector, tag1, tag2, tag3
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range idx.Stocks {
		var e domain.Enrichment
		if s.Enrichment != nil {
			e = *s.Enrichment
		}
		_, err := stmt.ExecContext(ctx,
			i, s.Symbol, s.Name, s.Exchange, s.MarketCategory, s.IsETF, s.LastPrice, s.LastDate,
			s.Variation, s.VariationPercent, s.Enriched(), e.ShortName, e.Industry, e.Description,
			e.Website, e.Logo, e.CEO, e.MarketCap, e.Sector, e.Tag1, e.Tag2, e.Tag3,
		)
		if err != nil {
			return fmt.Errorf("inserting %s: %w", s.Symbol, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of catalogued stocks.
func (c *SQLiteCatalog) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stock_rows`).Scan(&n)
	return n, err
}

// sortColumns maps public sort keys to catalog columns.
var sortColumns = map[string]string{
	"symbol":           "symbol",
	"name":             "name",
	"industry":         "industry",
	"lastPrice":        "last_price",
	"variationPercent": "variation_percent",
	"exchange":         "exchange",
	"sector":           "sector",
}

// Search returns catalog rows matching q. Without SortBy rows come back in
// index order.
func (c *SQLiteCatalog) Search(ctx context.Context, q Query) ([]domain.StockSummary, error) {
	var (
		where []string
		args  []any
	)
	if text := strings.TrimSpace(q.Text); text != "" {
		// instr rather than LIKE: '%' and '_' in user text match literally.
		needle := strings.ToLower(text)
		var ors []string
		for _, col := range []string{"symbol", "name", "exchange", "market_category", "industry", "sector"} {
			ors = append(ors, "instr(lower("+col+"), ?) > 0")
			args = append(args, needle)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	for col, val := range map[string]string{"exchange": q.Exchange, "sector": q.Sector, "industry": q.Industry} {
		if val != "" {
			where = append(where, col+" = ?")
			args = append(args, val)
		}
	}

	query := `SELECT symbol, name, exchange, market_category, is_etf, last_price, last_date,
		variation, variation_percent, enriched, short_name, industry, description,
		website, logo, ceo, market_cap, sector, tag1, tag2, tag3 FROM stock_rows`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	order := "pos"
	if col, ok := sortColumns[q.SortBy]; ok {
		order = col
		if q.Desc {
			order += " DESC"
		}
		order += ", pos"
	}
	query += " ORDER BY " + order
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()

	var out []domain.StockSummary
	for rows.Next() {
		var (
			s        domain.StockSummary
			e        domain.Enrichment
			enriched bool
		)
		if err := rows.Scan(
			&s.Symbol, &s.Name, &s.Exchange, &s.MarketCategory, &s.IsETF, &s.LastPrice, &s.LastDate,
			&s.Variation, &s.VariationPercent, &enriched, &e.ShortName, &e.Industry, &e.Description,
			&e.Website, &e.Logo, &e.CEO, &e.MarketCap, &e.Sector, &e.Tag1, &e.Tag2, &e.Tag3,
		); err != nil {
			return nil, err
		}
		if enriched {
			s.Enrichment = &e
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
