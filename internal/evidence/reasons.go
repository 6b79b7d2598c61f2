package evidence

import "slices"

// Reason codes shared across domains and stages.
const (
	ReasonMissingSlot        = "MISSING_SLOT"
	ReasonParseFailed        = "PARSE_FAILED"
	ReasonHeaderMismatch     = "HEADER_MISMATCH"
	ReasonEmptyTable         = "EMPTY_TABLE"
	ReasonNoDateFound        = "NO_DATE_FOUND"
	ReasonDateMismatch       = "DATE_MISMATCH"
	ReasonSignatureMissing   = "SIGNATURE_MISSING"
	ReasonOCRFailed          = "OCR_FAILED"
	ReasonFetchFailed        = "FETCH_FAILED"
	ReasonLLMAnomaly         = "LLM_ANOMALY_DETECTED"
	ReasonLLMMissingFields   = "LLM_MISSING_FIELDS"
	ReasonViolationDetected  = "VIOLATION_DETECTED"
	ReasonLowEducationRate   = "LOW_EDUCATION_RATE"
	ReasonOCRUnreadable      = "G_OCR_UNREADABLE"
	ReasonImageBlurry        = "G_IMAGE_BLURRY"
	ReasonHeadcountMismatch  = "CROSS_HEADCOUNT_MISMATCH"
	ReasonAttendanceParse    = "CROSS_ATTENDANCE_PARSE_FAILED"
	ReasonPhotoCountFailed   = "CROSS_PHOTO_COUNT_FAILED"
	ReasonBillFieldsMissing  = "E3_BILL_FIELDS_MISSING"
	ReasonBillMismatch       = "E3_BILL_MISMATCH"
	ReasonBaselineMissing    = "BASELINE_2024_MISSING"
	ReasonBaselineInvalid    = "BASELINE_INVALID"
	ReasonPeakSpikeWarn      = "E_PEAK_SPIKE_WARN"
	ReasonPeakSpikeFail      = "E_PEAK_SPIKE_FAIL"
	ReasonSpikeWarn          = "E2_SPIKE_WARN"
	ReasonSpikeFail          = "E2_SPIKE_FAIL"
	ReasonMSDSRequired       = "E_MSDS_MISSING_REQUIRED"
	ReasonMSDSOptional       = "E_MSDS_MISSING_OPTIONAL"
	ReasonInventoryParse     = "E_INVENTORY_PARSE_FAILED"
	ReasonWasteEvidence      = "E_WASTE_EVIDENCE_MISSING"
	ReasonWasteFieldsWeak    = "E_WASTE_EVIDENCE_FIELDS_WEAK"
	ReasonWasteListParse     = "E_WASTE_LIST_PARSE_FAILED"
	ReasonWasteNameMismatch  = "E_WASTE_NAME_MISMATCH"
	ReasonPledgeBeforeReview = "E9_PLEDGE_BEFORE_REVISION"
)

// Dedupe returns codes with duplicates removed, keeping first occurrences in order.
func Dedupe(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// AppendUnique appends each code in add that is not already in codes.
func AppendUnique(codes []string, add ...string) []string {
	for _, c := range add {
		if !slices.Contains(codes, c) {
			codes = append(codes, c)
		}
	}
	return codes
}

// Without returns codes with every occurrence of drop removed.
func Without(codes []string, drop ...string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if !slices.Contains(drop, c) {
			out = append(out, c)
		}
	}
	return out
}
