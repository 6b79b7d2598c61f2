package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

// collectFiles expands each pattern, including ** segments, and returns one
// file reference per distinct matched file in pattern order. A pattern that
// matches nothing is an error.
func collectFiles(patterns []string) ([]evidence.FileRef, error) {
	seen := make(map[string]bool)
	var refs []evidence.FileRef

	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%q matched no files", p)
		}

		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				return nil, err
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true

			refs = append(refs, evidence.FileRef{
				FileID:     fmt.Sprintf("F%03d", len(refs)+1),
				StorageURI: filepath.ToSlash(abs),
				FileName:   filepath.Base(abs),
			})
		}
	}

	return refs, nil
}

// defaultPeriod is the calendar quarter before now.
func defaultPeriod(now time.Time) (string, string) {
	q := (int(now.Month()) - 1) / 3
	start := time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -3, 0)
	end := start.AddDate(0, 3, -1)
	return start.Format(time.DateOnly), end.Format(time.DateOnly)
}
