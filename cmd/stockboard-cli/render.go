package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stockboard/internal/dashboard"
	"stockboard/internal/domain"
	"stockboard/internal/stats"
)

// Styles.
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	symbolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
)

func trendStyle(v float64) lipgloss.Style {
	switch dashboard.Trend(v) {
	case "positive":
		return gainStyle
	case "negative":
		return lossStyle
	default:
		return dimStyle
	}
}

func padOrTrunc(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		if n <= 1 {
			return string(r[:n])
		}
		return string(r[:n-1]) + "…"
	}
	return s + strings.Repeat(" ", n-len(r))
}

func field(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

// renderDetail draws the detail view for one symbol. row may be nil when
// the symbol is missing from the index.
func renderDetail(row *domain.StockSummary, series domain.StockSeries, window stats.Range, policy stats.Policy) string {
	var b strings.Builder

	name := series.Symbol
	if row != nil && row.Name != "" {
		name = row.Name
	}
	b.WriteString(titleStyle.Render(series.Symbol+"  "+name) + "\n")

	if row != nil {
		field(&b, "Exchange", dashboard.ExchangeLabel(row.Exchange))
		field(&b, "Category", dashboard.CategoryLabel(row.MarketCategory))
		if row.Enriched() {
			field(&b, "Sector", row.Sector)
			field(&b, "Industry", row.Industry)
			field(&b, "Market cap", dashboard.FormatMarketCap(row.MarketCap))
			if tags := dashboard.Tags(row.Tag1, row.Tag2, row.Tag3); tags != "" {
				field(&b, "Tags", tags)
			}
		}
	} else {
		b.WriteString(dimStyle.Render("not in index") + "\n")
	}

	snap := policy.Snapshot(series)
	if snap.Latest != nil {
		field(&b, "Last", fmt.Sprintf("%s  %s", dashboard.FormatPrice(snap.Latest.Close, true), snap.Latest.Date))
		field(&b, "Volume", dashboard.FormatVolume(snap.Latest.Volume, true))
	}
	if _, pct, err := stats.Change(series.Prices); err == nil {
		field(&b, "Change", trendStyle(pct).Render(dashboard.FormatChange(pct)))
	}
	field(&b, "52W high", formatPricePtr(snap.High52W))
	field(&b, "52W low", formatPricePtr(snap.Low52W))
	avg := dashboard.Missing
	if snap.AvgVolume != nil {
		avg = dashboard.FormatVolume(*snap.AvgVolume, true)
	}
	field(&b, "Avg volume", avg)

	chart := policy.FilterRange(series.Prices, window)
	if len(chart) > 0 {
		first, last := chart[0], chart[len(chart)-1]
		field(&b, "Range "+string(window), fmt.Sprintf("%d points  %s → %s  %s → %s",
			len(chart), first.Date, last.Date,
			dashboard.FormatPrice(first.Close, true), dashboard.FormatPrice(last.Close, true)))
	} else {
		field(&b, "Range "+string(window), dashboard.Missing)
	}
	return b.String()
}

func formatPricePtr(p *float64) string {
	if p == nil {
		return dashboard.Missing
	}
	return dashboard.FormatPrice(*p, true)
}

// renderTable draws index rows as an aligned table.
func renderTable(rows []domain.StockSummary) string {
	var b strings.Builder
	header := fmt.Sprintf("%-8s %-32s %-8s %-22s %10s %9s", "SYMBOL", "NAME", "EXCH", "INDUSTRY", "LAST", "CHANGE")
	b.WriteString(colHeaderStyle.Render(header) + "\n")
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("  (no matching symbols)") + "\n")
		return b.String()
	}
	for i := range rows {
		r := &rows[i]
		b.WriteString(symbolStyle.Render(padOrTrunc(r.Symbol, 8)))
		b.WriteString(" ")
		b.WriteString(padOrTrunc(r.Name, 32))
		b.WriteString(" ")
		b.WriteString(padOrTrunc(dashboard.ExchangeLabel(r.Exchange), 8))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(padOrTrunc(r.IndustryOrEmpty(), 22)))
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("%10s", dashboard.FormatPrice(r.LastPrice, true)))
		b.WriteString(" ")
		b.WriteString(trendStyle(r.VariationPercent).Render(fmt.Sprintf("%9s", dashboard.FormatChange(r.VariationPercent))))
		b.WriteString("\n")
	}
	return b.String()
}

// renderOverview draws the market overview counts and facet sizes.
func renderOverview(o dashboard.Overview, f dashboard.Facets) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Market overview") + "\n")
	field(&b, "Stocks", fmt.Sprintf("%d", o.Total))
	field(&b, "Gainers", gainStyle.Render(fmt.Sprintf("%d", o.Gainers)))
	field(&b, "Losers", lossStyle.Render(fmt.Sprintf("%d", o.Losers)))
	field(&b, "Unchanged", dimStyle.Render(fmt.Sprintf("%d", o.Unchanged)))

	labels := make([]string, len(f.Exchanges))
	for i, code := range f.Exchanges {
		labels[i] = dashboard.ExchangeLabel(code)
	}
	field(&b, "Exchanges", strings.Join(labels, ", "))
	field(&b, "Sectors", fmt.Sprintf("%d", len(f.Sectors)))
	field(&b, "Industries", fmt.Sprintf("%d", len(f.Industries)))
	return b.String()
}
