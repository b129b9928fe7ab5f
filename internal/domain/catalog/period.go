package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/VitaQuote/pkg/errors"
)

// Period is a calendar month, the granularity at which catalog prices are
// published.  Month is 1-12.
type Period struct {
	Year  int
	Month int
}

// monthNames is the fixed lookup table used for human-readable validity
// labels.  Localization beyond this table is out of scope.
var monthNames = [13]string{
	"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ParsePeriod parses a "YYYY-MM" validity descriptor.  Any other shape,
// including out-of-range months, fails with ErrCodePeriodMalformed.
func ParsePeriod(raw string) (Period, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 2 {
		return Period{}, errors.New(errors.ErrCodePeriodMalformed,
			"validity period is not a year-month pair").WithDetail("raw=" + raw)
	}
	year, errYear := strconv.Atoi(parts[0])
	month, errMonth := strconv.Atoi(parts[1])
	if errYear != nil || errMonth != nil || year <= 0 || month < 1 || month > 12 {
		return Period{}, errors.New(errors.ErrCodePeriodMalformed,
			"validity period has a non-numeric or out-of-range component").WithDetail("raw=" + raw)
	}
	return Period{Year: year, Month: month}, nil
}

// PeriodOf returns the calendar month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Before reports whether p strictly precedes ref under natural (year, then
// month) ordering.  Equal periods are not before each other, so a plan whose
// validity equals the reference month is still current.
func (p Period) Before(ref Period) bool {
	if p.Year != ref.Year {
		return p.Year < ref.Year
	}
	return p.Month < ref.Month
}

// IsZero reports whether p is the zero Period, used as the "unparsable"
// sentinel by callers that degrade instead of failing.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// String renders the period back in its canonical "YYYY-MM" form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Label renders the human-readable form, e.g. "March of 2025".
func (p Period) Label() string {
	return fmt.Sprintf("%s of %d", monthNames[p.Month], p.Year)
}

// FormatPeriod renders a raw validity descriptor as a human label.  The
// helper is total: input that does not parse is echoed back unchanged, never
// raised as an error, because the label is presentation-only and must not be
// able to fail a quote.
func FormatPeriod(raw string) string {
	p, err := ParsePeriod(raw)
	if err != nil {
		return raw
	}
	return p.Label()
}
