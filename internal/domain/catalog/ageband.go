package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turtacn/VitaQuote/pkg/errors"
)

// AgeBand is a parsed age interval.  Bounded bands cover [Min, Max]
// inclusive; open-ended bands (the "59+" form) cover every age >= Min.
type AgeBand struct {
	Min  int
	Max  int
	Open bool
}

// normalizeBand rewrites the separator variants seen across catalog
// revisions to the canonical dashed form.  Source spreadsheets encode bounded
// bands as "0-18", "0 a 18", or "0 A 18"; whitespace is never significant.
func normalizeBand(raw string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0':
			return -1
		}
		return r
	}, raw)
	s = strings.ReplaceAll(s, "a", "-")
	s = strings.ReplaceAll(s, "A", "-")
	return s
}

// ParseAgeBand parses a textual age-band descriptor.
//
// Two shapes are accepted:
//
//	"59+"   → open-ended band starting at 59
//	"0-18"  → bounded band covering ages 0 through 18 inclusive
//
// Bounded input is normalized first (whitespace stripped, "a"/"A" separators
// rewritten to a dash).  Anything else fails with ErrCodeAgeBandMalformed.
// Bounds are non-negative integers; fractional ages do not exist in the
// catalog.
func ParseAgeBand(raw string) (AgeBand, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return AgeBand{}, errors.New(errors.ErrCodeAgeBandMalformed, "empty age band")
	}

	if idx := strings.IndexByte(trimmed, '+'); idx >= 0 {
		min, err := strconv.Atoi(strings.TrimSpace(trimmed[:idx]))
		if err != nil || min < 0 {
			return AgeBand{}, errors.New(errors.ErrCodeAgeBandMalformed,
				"open-ended age band has no numeric lower bound").WithDetail("raw=" + raw)
		}
		return AgeBand{Min: min, Open: true}, nil
	}

	parts := strings.Split(normalizeBand(trimmed), "-")
	if len(parts) != 2 {
		return AgeBand{}, errors.New(errors.ErrCodeAgeBandMalformed,
			"age band is neither open-ended nor a two-part range").WithDetail("raw=" + raw)
	}
	min, errMin := strconv.Atoi(parts[0])
	max, errMax := strconv.Atoi(parts[1])
	if errMin != nil || errMax != nil || min < 0 || max < 0 {
		return AgeBand{}, errors.New(errors.ErrCodeAgeBandMalformed,
			"age band bounds are not non-negative integers").WithDetail("raw=" + raw)
	}
	if min > max {
		return AgeBand{}, errors.New(errors.ErrCodeAgeBandMalformed,
			"age band lower bound exceeds upper bound").WithDetail("raw=" + raw)
	}
	return AgeBand{Min: min, Max: max}, nil
}

// Matches reports whether age falls inside the band.  Both ends of a bounded
// band are inclusive; open-ended bands match every age at or above Min.
func (b AgeBand) Matches(age int) bool {
	if b.Open {
		return age >= b.Min
	}
	return age >= b.Min && age <= b.Max
}

// String renders the band back in its canonical textual form.
func (b AgeBand) String() string {
	if b.Open {
		return fmt.Sprintf("%d+", b.Min)
	}
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}
