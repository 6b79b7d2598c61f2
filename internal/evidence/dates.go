package evidence

import (
	"regexp"
	"strconv"
	"time"
)

var datePattern = regexp.MustCompile(`(\d{4})\s*[.\-/년]\s*(\d{1,2})\s*[.\-/월]\s*(\d{1,2})`)

// ScanDates returns every valid calendar date written in text as
// YYYY-MM-DD, YYYY.MM.DD, YYYY/MM/DD, or YYYY년 MM월 DD, in order of
// appearance. Impossible dates are skipped.
func ScanDates(text string) []time.Time {
	var out []time.Time
	for _, m := range datePattern.FindAllStringSubmatch(text, -1) {
		if d, ok := makeDate(m[1], m[2], m[3]); ok {
			out = append(out, d)
		}
	}
	return out
}

// FirstDate returns the first valid date in text.
func FirstDate(text string) (time.Time, bool) {
	for _, m := range datePattern.FindAllStringSubmatch(text, -1) {
		if d, ok := makeDate(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders d as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(time.DateOnly)
}

func makeDate(ys, ms, ds string) (time.Time, bool) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	if m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// DateFindings checks detected dates against the period. It reports
// NO_DATE_FOUND when dates is empty and DATE_MISMATCH when any date falls
// outside the period; the returned bool is true only when every date is
// inside it.
func (p Period) DateFindings(dates []time.Time) (bool, []string) {
	if len(dates) == 0 {
		return false, []string{ReasonNoDateFound}
	}
	for _, d := range dates {
		if !p.Contains(d) {
			return false, []string{ReasonDateMismatch}
		}
	}
	return true, nil
}
