package dashboard

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Missing is shown in place of an undefined value.
const Missing = "—"

// ExchangeLabel maps a listing-exchange code to its display name. Unknown
// codes are shown as is, and an empty code as "N/A".
func ExchangeLabel(code string) string {
	switch code {
	case "Q":
		return "NASDAQ"
	case "N":
		return "NYSE"
	case "A":
		return "AMEX"
	case "P":
		return "ARCA"
	case "":
		return "N/A"
	default:
		return code
	}
}

// CategoryLabel maps a NASDAQ market-category code to its display name.
func CategoryLabel(code string) string {
	switch code {
	case "Q":
		return "Global Select"
	case "G":
		return "Global Market"
	case "S":
		return "Capital Market"
	case "":
		return "N/A"
	default:
		return code
	}
}

// FormatVolume formats a share volume with B/M/K suffixes and two decimals.
// ok=false renders Missing, so the result of stats.AvgVolume can be passed
// straight in.
func FormatVolume(v int64, ok bool) string {
	if !ok {
		return Missing
	}
	f := float64(v)
	switch {
	case f >= 1e9:
		return fmt.Sprintf("%.2fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.2fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%.2fK", f/1e3)
	default:
		return fmt.Sprintf("%d", v)
	}
}

// FormatMarketCap formats a market capitalisation in dollars with T/B/M
// suffixes. Smaller values are comma-grouped; zero renders Missing.
func FormatMarketCap(v float64) string {
	switch {
	case v == 0:
		return Missing
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return "$" + humanize.Commaf(v)
	}
}

// FormatPrice formats a price as $X.XX, or Missing when ok is false.
func FormatPrice(p float64, ok bool) string {
	if !ok {
		return Missing
	}
	return fmt.Sprintf("$%.2f", p)
}

// FormatChange formats a percentage change as "+X.XX%", "-X.XX%" or
// "0.00%".
func FormatChange(pct float64) string {
	sign := ""
	if pct > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, pct)
}

// Trend classifies a change as "positive", "negative" or "neutral".
func Trend(v float64) string {
	switch {
	case v > 0:
		return "positive"
	case v < 0:
		return "negative"
	default:
		return "neutral"
	}
}

// Tags joins the non-empty tags with ", ".
func Tags(tags ...string) string {
	var out []string
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ", ")
}
