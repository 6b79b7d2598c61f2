package evidence

// Extras is the typed side-table attached to extraction and slot results.
// Each reason-code family owns one group and explanation text reads only
// these fields.
type Extras struct {
	Summary          string   `json:"summary,omitempty"`
	Anomalies        []string `json:"anomalies,omitempty"`
	MissingFields    []string `json:"missing_fields,omitempty"`
	Violations       []string `json:"violations,omitempty"`
	DetectedObjects  []string `json:"detected_objects,omitempty"`
	SceneDescription string   `json:"scene_description,omitempty"`
	Detail           string   `json:"detail,omitempty"`

	Persons   *PersonCounts   `json:"persons,omitempty"`
	Headcount *Headcount      `json:"headcount,omitempty"`
	Bill      *BillComparison `json:"bill,omitempty"`
	Peak      *PeakComparison `json:"peak,omitempty"`
	Spike     *SpikeMeasure   `json:"spike,omitempty"`
	Coverage  *Coverage       `json:"coverage,omitempty"`
	Revision  *RevisionDates  `json:"revision,omitempty"`
}

// PersonCounts records person counts from independent counters.
// Count is the value used downstream; Gap is |Vision - Detector| when both ran.
type PersonCounts struct {
	Count    *int `json:"person_count,omitempty"`
	Vision   *int `json:"person_count_llm,omitempty"`
	Detector *int `json:"person_count_yolo,omitempty"`
	Gap      *int `json:"person_count_gap,omitempty"`
}

// Headcount is the side data of an attendance vs photo comparison.
type Headcount struct {
	Attendance int `json:"attendance_count"`
	Photo      int `json:"photo_count"`
	Diff       int `json:"diff"`
	Tolerance  int `json:"tolerance"`
}

// BillComparison is the side data of a usage total vs bill total comparison.
type BillComparison struct {
	Month      string  `json:"month"`
	UsageTotal float64 `json:"xlsx_total"`
	BillTotal  float64 `json:"bill_total"`
	DiffPct    float64 `json:"diff_pct"`
	TolPct     float64 `json:"tol_pct"`
	Escalated  bool    `json:"escalated,omitempty"`
}

// PeakComparison is the side data of a prior vs current period peak comparison.
type PeakComparison struct {
	Baseline float64 `json:"peak_2024"`
	Current  float64 `json:"peak_2025"`
	Ratio    float64 `json:"ratio"`
}

// SpikeMeasure is the last-day vs trailing-mean measurement of a usage series.
type SpikeMeasure struct {
	LastDay  float64 `json:"last_day"`
	Baseline float64 `json:"baseline"`
	Ratio    float64 `json:"ratio"`
}

// Coverage lists names that one slot declares but another slot does not evidence.
type Coverage struct {
	MissingRequired []string `json:"missing_required,omitempty"`
	MissingOptional []string `json:"missing_optional,omitempty"`
	MissingNames    []string `json:"missing_names,omitempty"`
}

// RevisionDates compares a policy revision date to an acknowledgement date.
type RevisionDates struct {
	Revision string `json:"revision_date"`
	Pledge   string `json:"pledge_date"`
}

// Merge returns e overlaid with every non-zero field of later.
func (e Extras) Merge(later Extras) Extras {
	if later.Summary != "" {
		e.Summary = later.Summary
	}
	if later.Anomalies != nil {
		e.Anomalies = later.Anomalies
	}
	if later.MissingFields != nil {
		e.MissingFields = later.MissingFields
	}
	if later.Violations != nil {
		e.Violations = later.Violations
	}
	if later.DetectedObjects != nil {
		e.DetectedObjects = later.DetectedObjects
	}
	if later.SceneDescription != "" {
		e.SceneDescription = later.SceneDescription
	}
	if later.Detail != "" {
		e.Detail = later.Detail
	}
	if later.Persons != nil {
		e.Persons = later.Persons
	}
	if later.Headcount != nil {
		e.Headcount = later.Headcount
	}
	if later.Bill != nil {
		e.Bill = later.Bill
	}
	if later.Peak != nil {
		e.Peak = later.Peak
	}
	if later.Spike != nil {
		e.Spike = later.Spike
	}
	if later.Coverage != nil {
		e.Coverage = later.Coverage
	}
	if later.Revision != nil {
		e.Revision = later.Revision
	}
	return e
}

// PersonCount returns the downstream person count when one was recorded.
func (e Extras) PersonCount() (int, bool) {
	if e.Persons == nil || e.Persons.Count == nil {
		return 0, false
	}
	return *e.Persons.Count, true
}
