package stats

import (
	"fmt"
	"strings"
	"time"

	"stockboard/internal/domain"
)

// Range selects the chart time window.
type Range string

const (
	Range1M  Range = "1M"
	Range3M  Range = "3M"
	Range6M  Range = "6M"
	Range1Y  Range = "1Y"
	RangeAll Range = "ALL"
)

// Ranges lists every supported range in display order.
var Ranges = []Range{Range1M, Range3M, Range6M, Range1Y, RangeAll}

// ParseRange parses a range label, case-insensitively.
func ParseRange(s string) (Range, error) {
	r := Range(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Ranges {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown range %q", s)
}

// dateLayouts are tried in order when parsing observation dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// ParseDate parses an observation date string.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Cutoff returns the earliest date kept by r for a series whose last
// observation is at anchor. Month arithmetic follows time.AddDate, so a day
// that does not exist in the target month rolls forward. ok is false for
// RangeAll, which has no cutoff.
func Cutoff(anchor time.Time, r Range) (cutoff time.Time, ok bool) {
	switch r {
	case Range1M:
		return anchor.AddDate(0, -1, 0), true
	case Range3M:
		return anchor.AddDate(0, -3, 0), true
	case Range6M:
		return anchor.AddDate(0, -6, 0), true
	case Range1Y:
		return anchor.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// FilterRange returns the observations to chart for r. Bounded ranges keep
// points dated on or after the cutoff, measured back from the last
// observation; points with unparsable dates are dropped. RangeAll keeps
// everything, downsampled to MaxChartPoints.
func (p Policy) FilterRange(prices []domain.PricePoint, r Range) []domain.PricePoint {
	if len(prices) == 0 {
		return prices
	}
	if r == RangeAll {
		return Downsample(prices, p.MaxChartPoints)
	}

	anchor, err := ParseDate(prices[len(prices)-1].Date)
	if err != nil {
		return nil
	}
	cutoff, ok := Cutoff(anchor, r)
	if !ok {
		return prices
	}

	out := make([]domain.PricePoint, 0, len(prices))
	for _, pt := range prices {
		d, err := ParseDate(pt.Date)
		if err != nil {
			continue
		}
		if !d.Before(cutoff) {
			out = append(out, pt)
		}
	}
	return out
}

// FilterRange applies DefaultPolicy.
func FilterRange(prices []domain.PricePoint, r Range) []domain.PricePoint {
	return DefaultPolicy().FilterRange(prices, r)
}

// Downsample keeps every step-th observation, step = ceil(len/limit), and
// always keeps the last one. The result never exceeds limit points: when the
// last observation falls off-stride and there is no room left, it replaces
// the final stride pick. Series of at most limit points are returned as is.
func Downsample(prices []domain.PricePoint, limit int) []domain.PricePoint {
	n := len(prices)
	if limit <= 0 || n <= limit {
		return prices
	}

	step := (n + limit - 1) / limit
	out := make([]domain.PricePoint, 0, limit)
	for i := 0; i < n; i += step {
		out = append(out, prices[i])
	}
	if (n-1)%step != 0 {
		if len(out) < limit {
			out = append(out, prices[n-1])
		} else {
			out[len(out)-1] = prices[n-1]
		}
	}
	return out
}
