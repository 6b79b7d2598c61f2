package aggregate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/evidence"
)

const (
	MaxIssuePoints = 4
	MaxPassPoints  = 3
)

const (
	prefixPass        = "Passed."
	prefixNeedFix     = "Resubmission required."
	prefixNeedClarify = "Clarification required."

	insufficientDetail = "Not enough detail to explain this result. Review the original files."
	noFindings         = "Rule checks and AI review found no violations or anomalies."
)

// explainContext is what an explanation template may read.
type explainContext struct {
	period evidence.Period
	extras evidence.Extras
}

// issueTemplate renders points for a slot carrying any of its codes.
type issueTemplate struct {
	codes  []string
	render func(c explainContext) []string
}

func static(points ...string) func(explainContext) []string {
	return func(explainContext) []string { return points }
}

var issueTemplates = []issueTemplate{
	{
		codes:  []string{evidence.ReasonMissingSlot},
		render: static("No file was submitted for this required item."),
	},
	{
		codes:  []string{evidence.ReasonFetchFailed},
		render: static("The file could not be retrieved. Upload it again."),
	},
	{
		codes: []string{evidence.ReasonHeaderMismatch},
		render: static(
			"Required column headers do not match the template.",
			"Rename the columns to the standard template and resubmit.",
		),
	},
	{
		codes: []string{evidence.ReasonDateMismatch},
		render: func(c explainContext) []string {
			return []string{fmt.Sprintf(
				"Dates in the document fall outside the submission period (%s to %s).",
				evidence.FormatDate(c.period.Start), evidence.FormatDate(c.period.End),
			)}
		},
	},
	{
		codes:  []string{evidence.ReasonOCRFailed, evidence.ReasonOCRUnreadable},
		render: static("Text recognition quality is too low for automated checks. A clearer original is needed."),
	},
	{
		codes:  []string{evidence.ReasonImageBlurry},
		render: static("The image is too blurry to read text or objects reliably. An original or higher-resolution file is needed."),
	},
	{
		codes: []string{evidence.ReasonLLMMissingFields},
		render: func(c explainContext) []string {
			return listPoint("Missing required fields: ", c.extras.MissingFields)
		},
	},
	{
		codes: []string{evidence.ReasonLLMAnomaly},
		render: func(c explainContext) []string {
			return listPoint("Detected anomalies: ", c.extras.Anomalies)
		},
	},
	{
		codes: []string{evidence.ReasonViolationDetected},
		render: func(c explainContext) []string {
			return listPoint("Suspected violations: ", c.extras.Violations)
		},
	},
	{
		codes: []string{evidence.ReasonBillMismatch},
		render: func(c explainContext) []string {
			b := c.extras.Bill
			if b == nil {
				return []string{"Usage total and bill total disagree. Compare against the original values."}
			}
			return []string{
				fmt.Sprintf("Usage total and bill total disagree (difference %s%%, tolerance %s%%).", num(b.DiffPct), num(b.TolPct)),
				fmt.Sprintf("Usage total %s, bill total %s for %s.", num(b.UsageTotal), num(b.BillTotal), b.Month),
			}
		},
	},
	{
		codes:  []string{evidence.ReasonBillFieldsMissing},
		render: static("Monthly usage or billing period could not be read from the bill, so the month cannot be reconciled."),
	},
	{
		codes: []string{evidence.ReasonMSDSRequired},
		render: func(c explainContext) []string {
			if c.extras.Coverage == nil || len(c.extras.Coverage.MissingRequired) == 0 {
				return nil
			}
			return []string{fmt.Sprintf(
				"The inventory lists %s but no matching MSDS was submitted.",
				strings.Join(c.extras.Coverage.MissingRequired, ", "),
			)}
		},
	},
	{
		codes: []string{evidence.ReasonMSDSOptional},
		render: func(c explainContext) []string {
			if c.extras.Coverage == nil {
				return nil
			}
			return listPoint("Recommended MSDS to confirm: ", c.extras.Coverage.MissingOptional)
		},
	},
	{
		codes:  []string{evidence.ReasonWasteEvidence},
		render: static("The disposal list and its disposal evidence must be submitted together."),
	},
	{
		codes: []string{evidence.ReasonWasteNameMismatch},
		render: func(c explainContext) []string {
			if c.extras.Coverage == nil {
				return nil
			}
			return listPoint("Substances on the disposal list are missing from the evidence: ", c.extras.Coverage.MissingNames)
		},
	},
	{
		codes:  []string{evidence.ReasonBaselineMissing},
		render: static("No prior-year baseline was submitted, so the peak comparison was skipped."),
	},
	{
		codes: []string{evidence.ReasonPeakSpikeWarn, evidence.ReasonPeakSpikeFail},
		render: func(c explainContext) []string {
			if c.extras.Peak == nil {
				return []string{"Peak usage changed sharply against the prior year."}
			}
			return []string{fmt.Sprintf("Peak usage changed by a factor of %s against the prior year.", num(c.extras.Peak.Ratio))}
		},
	},
	{
		codes: []string{evidence.ReasonHeadcountMismatch},
		render: func(c explainContext) []string {
			if c.extras.Detail == "" {
				return nil
			}
			return []string{"Attendance and photo headcounts disagree: " + c.extras.Detail}
		},
	},
	{
		codes:  []string{evidence.ReasonAttendanceParse},
		render: static("No attendee count could be read from the attendance sheet."),
	},
	{
		codes:  []string{evidence.ReasonPhotoCountFailed},
		render: static("No person count could be detected in the photo."),
	},
}

func listPoint(prefix string, items []string) []string {
	if len(items) == 0 {
		return nil
	}
	return []string{prefix + strings.Join(items, ", ")}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IssuePoints explains a NEED_FIX or NEED_CLARIFY result. Templates run in
// table order; detail and summary follow. The result is deduplicated and
// capped at MaxIssuePoints.
func IssuePoints(d *catalog.Domain, period evidence.Period, sr evidence.SlotResult) []string {
	c := explainContext{period: period, extras: sr.Extras}

	var points []string
	for _, t := range issueTemplates {
		if slices.ContainsFunc(t.codes, func(code string) bool { return slices.Contains(sr.Reasons, code) }) {
			points = append(points, t.render(c)...)
		}
	}

	if detail := sr.Extras.Detail; detail != "" && !mentions(points, detail) {
		points = append(points, "Basis: "+detail)
	}

	if len(points) == 0 {
		if desc := describe(d, sr.Reasons); len(desc) > 0 {
			points = append(points, "Needs review: "+strings.Join(desc, ", "))
		} else {
			points = append(points, insufficientDetail)
		}
	}

	if sr.Extras.Summary != "" {
		points = append(points, "Summary: "+sr.Extras.Summary)
	}

	return capPoints(points, MaxIssuePoints)
}

// PassPoints explains a PASS result, capped at MaxPassPoints.
func PassPoints(sr evidence.SlotResult) []string {
	var points []string
	e := sr.Extras
	image := isImageSlot(sr.SlotName)

	if h := e.Headcount; h != nil {
		points = append(points, fmt.Sprintf(
			"Attendance %d and photo %d differ by %d (tolerance %d), within the pass criteria.",
			h.Attendance, h.Photo, h.Diff, h.Tolerance,
		))
	} else if n, ok := e.PersonCount(); ok && image {
		points = append(points, fmt.Sprintf("Detected %d people in the image with no findings.", n))
	}

	if p := e.Persons; p != nil && p.Detector != nil {
		if p.Vision != nil {
			points = append(points, fmt.Sprintf("Person count (detector/vision): %d / %d", *p.Detector, *p.Vision))
		} else {
			points = append(points, fmt.Sprintf("Person count (detector): %d", *p.Detector))
		}
	}

	if len(e.DetectedObjects) > 0 && image {
		points = append(points, "Detected objects: "+strings.Join(e.DetectedObjects, ", "))
	}
	if e.Summary != "" {
		points = append(points, "Summary: "+e.Summary)
	}
	if len(points) == 0 {
		points = append(points, noFindings)
	}

	return capPoints(points, MaxPassPoints)
}

// Explain returns the clarification message and points for one result.
func Explain(d *catalog.Domain, period evidence.Period, sr evidence.SlotResult) (string, []string) {
	var prefix string
	var points []string

	switch sr.Verdict {
	case evidence.Pass:
		prefix, points = prefixPass, PassPoints(sr)
	case evidence.NeedFix:
		prefix, points = prefixNeedFix, IssuePoints(d, period, sr)
	default:
		prefix, points = prefixNeedClarify, IssuePoints(d, period, sr)
	}

	return prefix + " " + strings.Join(points, " "), points
}

func describe(d *catalog.Domain, codes []string) []string {
	var out []string
	for _, c := range codes {
		desc := c
		if d != nil && d.Declares(c) {
			desc = d.ReasonCodes[c]
		}
		if desc = strings.TrimSpace(desc); desc != "" && !slices.Contains(out, desc) {
			out = append(out, desc)
		}
	}
	return out
}

func mentions(points []string, s string) bool {
	return slices.ContainsFunc(points, func(p string) bool { return strings.Contains(p, s) })
}

func isImageSlot(slot string) bool {
	return strings.HasSuffix(slot, ".image") ||
		strings.HasSuffix(slot, ".photo") ||
		strings.HasSuffix(slot, ".photos")
}

func capPoints(points []string, n int) []string {
	out := make([]string, 0, min(len(points), n))
	for _, p := range points {
		p = strings.TrimSpace(p)
		if p == "" || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
		if len(out) == n {
			break
		}
	}
	return out
}
