package usage

import (
	"regexp"
	"strings"
	"time"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

var (
	billTotal  = regexp.MustCompile(`(?i)당월\s*사용량\s*([\d,]+(?:\.\d+)?)\s*(kwh|m3|m³|톤)`)
	billPeriod = regexp.MustCompile(`(\d{4}[.\-/]\d{1,2}[.\-/]\d{1,2})\s*[~\-]\s*(\d{4}[.\-/]\d{1,2}[.\-/]\d{1,2})`)
)

// Bill holds the fields read from a utility bill's text.
type Bill struct {
	Total       float64
	Unit        string
	HasTotal    bool
	PeriodStart time.Time
	PeriodEnd   time.Time
	HasPeriod   bool
}

// ParseBill reads the monthly usage total and billing period from bill text.
func ParseBill(text string) Bill {
	var b Bill

	if m := billTotal.FindStringSubmatch(text); m != nil {
		if v, ok := ParseNumber(m[1]); ok {
			b.Total = v
			b.Unit = strings.ToLower(m[2])
			b.HasTotal = true
		}
	}

	if m := billPeriod.FindStringSubmatch(text); m != nil {
		start, ok1 := evidence.FirstDate(m[1])
		end, ok2 := evidence.FirstDate(m[2])
		if ok1 && ok2 {
			b.PeriodStart, b.PeriodEnd, b.HasPeriod = start, end, true
		}
	}

	return b
}

// Month returns the billing month, taken from the period end.
func (b Bill) Month() (Month, bool) {
	if !b.HasPeriod {
		return Month{}, false
	}
	return MonthOf(b.PeriodEnd), true
}
