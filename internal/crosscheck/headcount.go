package crosscheck

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

var (
	hangulName     = regexp.MustCompile(`[가-힣]{2,4}`)
	rowNumber      = regexp.MustCompile(`^(\d{1,3})$`)
	headcountTotal = regexp.MustCompile(`(\d+)\s*명`)
	signedMark     = regexp.MustCompile(`(?i)(서명|sign|O|✓|v|√|자필|참석)`)
	personMention  = regexp.MustCompile(`(?i)(person|사람|인원|people)`)
	sceneCount     = regexp.MustCompile(`(?i)(\d+)\s*(?:명|인|people|persons)`)
)

// Words on an attendance sheet that look like names but are headings.
var attendanceHeadings = map[string]struct{}{
	"안전보건": {}, "교육": {}, "출석부": {}, "교육일자": {}, "교육명": {}, "번호": {},
	"성명": {}, "부서": {}, "출석": {}, "확인": {}, "서명": {}, "생산": {},
	"품질관리": {}, "설비기술": {}, "안전관리": {}, "공정기술": {}, "물류": {}, "외주관리": {},
}

// HeadcountName is the result name of an attendance vs photo comparison.
func HeadcountName(domain string) string {
	return fmt.Sprintf("%s.education.attendance__x__%s.education.photo", domain, domain)
}

// Tolerance returns the allowed difference between an attendance count
// and a photo count: 2 for ten or fewer attendees, otherwise 20% rounded,
// never below 2.
func Tolerance(attendance int) int {
	if attendance <= 10 {
		return 2
	}
	return max(2, int(math.Round(float64(attendance)*0.2)))
}

// CompareHeadcount grades an attendance count against a photo count.
func CompareHeadcount(attendance, photo int) Finding {
	diff := attendance - photo
	if diff < 0 {
		diff = -diff
	}
	tol := Tolerance(attendance)

	f := Finding{
		Status: StatusPass,
		Extras: evidence.Extras{Headcount: &evidence.Headcount{
			Attendance: attendance,
			Photo:      photo,
			Diff:       diff,
			Tolerance:  tol,
		}},
	}
	if diff > tol {
		f.Status = StatusNeedFix
		f.Reasons = []string{evidence.ReasonHeadcountMismatch}
		f.Extras.Detail = fmt.Sprintf("attendance %d vs photo %d (diff %d, tolerance %d)", attendance, photo, diff, tol)
	}
	return f
}

func headcountCheck(domain string) Check {
	counter := CountSignedRows
	if domain == "safety" {
		counter = CountRepeatedNames
	}

	attendanceSlot := domain + ".education.attendance"
	photoSlot := domain + ".education.photo"

	return Check{
		Name:  HeadcountName(domain),
		Title: "Attendance vs photo headcount",
		Emits: []string{
			evidence.ReasonHeadcountMismatch,
			evidence.ReasonAttendanceParse,
			evidence.ReasonPhotoCountFailed,
		},
		Run: func(in Input) []Finding {
			att, ok1 := in.First(attendanceSlot)
			photo, ok2 := in.First(photoSlot)
			if !ok1 || !ok2 {
				return nil
			}

			files := ids(att, photo)

			a, ok := counter(textOf(att))
			if !ok {
				return []Finding{{
					Status:  StatusNeedFix,
					Reasons: []string{evidence.ReasonAttendanceParse},
					Extras:  evidence.Extras{Detail: "no attendee count found on the attendance sheet"},
					FileIDs: files,
				}}
			}

			p, ok := PhotoCount(photo.Extras)
			if !ok {
				return []Finding{{
					Status:  StatusNeedFix,
					Reasons: []string{evidence.ReasonPhotoCountFailed},
					Extras:  evidence.Extras{Detail: "no person count found in the photo"},
					FileIDs: files,
				}}
			}

			f := CompareHeadcount(a, p)
			f.FileIDs = files
			return []Finding{f}
		},
	}
}

// CountRepeatedNames estimates attendees on a sheet where each name is
// written twice, once as the printed name and once as the signature.
// It falls back to the largest row number, then to an "N명" total.
func CountRepeatedNames(text string) (int, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	seen := make(map[string]int)
	repeated := 0
	for _, name := range hangulName.FindAllString(text, -1) {
		if _, heading := attendanceHeadings[name]; heading {
			continue
		}
		seen[name]++
		if seen[name] == 2 {
			repeated++
		}
	}
	if repeated > 0 {
		return repeated, true
	}

	highest := 0
	for line := range strings.Lines(text) {
		m := rowNumber.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if n, _ := strconv.Atoi(m[1]); n >= 1 && n <= 500 {
			highest = max(highest, n)
		}
	}
	if highest > 0 {
		return highest, true
	}

	if m := headcountTotal.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	return 0, false
}

// CountSignedRows counts lines that carry a name and a signature mark.
func CountSignedRows(text string) (int, bool) {
	n := 0
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if hangulName.MatchString(line) && signedMark.MatchString(line) {
			n++
		}
	}
	return n, n > 0
}

// PhotoCount returns the person count recorded for a photo, falling back
// to person mentions among detected objects, then to a count written in
// the scene description.
func PhotoCount(e evidence.Extras) (int, bool) {
	if n, ok := e.PersonCount(); ok {
		return n, true
	}

	if len(e.DetectedObjects) > 0 {
		if n := len(personMention.FindAllString(strings.Join(e.DetectedObjects, " "), -1)); n > 0 {
			return n, true
		}
	}

	if m := sceneCount.FindStringSubmatch(e.SceneDescription); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	return 0, false
}
