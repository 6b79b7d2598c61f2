// Package usage turns metered-usage tables into daily and monthly series
// and compares them against prior periods and utility bills.
package usage

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

// Column aliases tried when a table lacks the requested column.
var (
	timeAliases  = []string{"date", "timestamp", "datetime", "ts", "일자", "날짜"}
	valueAliases = []string{"Usage_kWh", "usage_kwh", "kwh", "flow_m3", "usage_m3", "Usage_m3", "m3", "㎥", "사용량"}
)

var timeLayouts = []string{
	time.RFC3339,
	time.DateTime,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006.01.02 15:04",
	"2006.01.02",
	"01-02-06 15:04",
	"01-02-06",
	"1/2/06 15:04",
	"1/2/06",
	"1/2/2006 15:04",
	"1/2/2006",
}

// Point is one timestamped reading.
type Point struct {
	Time  time.Time
	Value float64
}

// Day is the total of all readings on one calendar day.
type Day struct {
	Date  time.Time
	Total float64
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// String renders the month as YYYY-MM.
func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ResolveColumn returns the index of name in t, falling back to the first
// alias present. It returns -1 when neither is found.
func ResolveColumn(t *evidence.Table, name string, aliases []string) int {
	if i := t.Column(name); i >= 0 {
		return i
	}
	for _, a := range aliases {
		if i := t.Column(a); i >= 0 {
			return i
		}
	}
	return -1
}

// HasColumns reports whether t carries both columns exactly as named.
func HasColumns(t *evidence.Table, timeCol, valueCol string) bool {
	return t.Column(timeCol) >= 0 && t.Column(valueCol) >= 0
}

// Points reads (time, value) pairs from t. Rows with an unparseable time
// or value are skipped. The second return value is false when either
// column cannot be resolved.
func Points(t *evidence.Table, timeCol, valueCol string) ([]Point, bool) {
	ti := ResolveColumn(t, timeCol, timeAliases)
	vi := ResolveColumn(t, valueCol, valueAliases)
	if ti < 0 || vi < 0 {
		return nil, false
	}

	var pts []Point
	for r := range t.Rows {
		ts, ok := ParseTime(t.Cell(r, ti))
		if !ok {
			continue
		}
		v, ok := ParseNumber(t.Cell(r, vi))
		if !ok {
			continue
		}
		pts = append(pts, Point{Time: ts, Value: v})
	}
	return pts, true
}

// Daily sums points per calendar day, in date order.
func Daily(pts []Point) []Day {
	totals := make(map[time.Time]float64)
	for _, p := range pts {
		d := time.Date(p.Time.Year(), p.Time.Month(), p.Time.Day(), 0, 0, 0, 0, time.UTC)
		totals[d] += p.Value
	}

	days := make([]Day, 0, len(totals))
	for d, v := range totals {
		days = append(days, Day{Date: d, Total: v})
	}
	slices.SortFunc(days, func(a, b Day) int { return a.Date.Compare(b.Date) })
	return days
}

// Monthly sums points per calendar month.
func Monthly(pts []Point) map[Month]float64 {
	out := make(map[Month]float64)
	for _, p := range pts {
		out[MonthOf(p.Time)] += p.Value
	}
	return out
}

// Peak returns the largest daily total.
func Peak(days []Day) (float64, bool) {
	if len(days) == 0 {
		return 0, false
	}
	peak := days[0].Total
	for _, d := range days[1:] {
		peak = max(peak, d.Total)
	}
	return peak, true
}

// ParseTime parses the timestamp formats spreadsheets commonly export.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return evidence.FirstDate(s)
}

// ParseNumber parses a numeric cell, ignoring thousands separators,
// percent signs, and surrounding space.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
