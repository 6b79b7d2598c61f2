package matcher

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

var (
	idPrefix   = regexp.MustCompile(`(?i)^[0-9a-f]{8,}[_\-]+`)
	separators = regexp.MustCompile(`[\s\-_()\[\]{}]+`)
)

// Normalize reduces a filename or storage URI to the form slot signals are
// matched against: the lowercased basename with query, id prefix, and
// separator noise removed.
func Normalize(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}

	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	if u, err := url.PathUnescape(s); err == nil {
		s = u
	}

	s = recoverArchiveName(s)
	s = norm.NFKC.String(s)
	s = idPrefix.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, " ")

	return strings.TrimSpace(strings.ToLower(s))
}

// recoverArchiveName undoes UTF-8 names that were decoded as CP437 by zip
// tooling. The repaired form is kept only when it carries more Hangul.
func recoverArchiveName(s string) string {
	raw, err := charmap.CodePage437.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(raw) {
		return s
	}
	if hangulCount(raw) > hangulCount(s) {
		return raw
	}
	return s
}

func hangulCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0xAC00 && r <= 0xD7A3 {
			n++
		}
	}
	return n
}
