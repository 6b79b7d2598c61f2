package rules

import (
	"strings"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

// columnWith returns the index of the first header containing any of the
// needles, or -1.
func columnWith(t *evidence.Table, needles ...string) int {
	if t == nil {
		return -1
	}
	for i, h := range t.Headers {
		lower := strings.ToLower(h)
		for _, n := range needles {
			if strings.Contains(lower, strings.ToLower(n)) {
				return i
			}
		}
	}
	return -1
}

// columnsWhere returns the indexes of every header that satisfies match.
func columnsWhere(t *evidence.Table, match func(h string) bool) []int {
	if t == nil {
		return nil
	}
	var out []int
	for i, h := range t.Headers {
		if match(h) {
			out = append(out, i)
		}
	}
	return out
}

func blank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan") || s == "-"
}

// blankShare returns the fraction of rows whose cell in column c is blank.
func blankShare(t *evidence.Table, c int) float64 {
	if t.Empty() {
		return 0
	}
	var n int
	for r := range t.Rows {
		if blank(t.Cell(r, c)) {
			n++
		}
	}
	return float64(n) / float64(len(t.Rows))
}

// column returns the non-blank values of column c.
func column(t *evidence.Table, c int) []string {
	var out []string
	for r := range t.Rows {
		if v := strings.TrimSpace(t.Cell(r, c)); !blank(v) {
			out = append(out, v)
		}
	}
	return out
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// missing returns the needles absent from text, in order.
func missing(text string, needles ...string) []string {
	var out []string
	for _, n := range needles {
		if !strings.Contains(text, n) {
			out = append(out, n)
		}
	}
	return out
}
