// Package quote implements the quotation engine: grouping catalog rows into
// sellable plans, pricing a group of beneficiaries against each plan, and
// ranking the surviving offers.
//
// Everything in this package is a pure function of its inputs plus an
// injectable reference period; there is no I/O, no clock access outside the
// documented default, and no shared state between invocations.
package quote

import (
	"github.com/shopspring/decimal"

	"github.com/turtacn/VitaQuote/internal/domain/catalog"
)

// GroupKey identifies one sellable plan.  Comparison is exact string
// equality, case-sensitive and untrimmed: garbage-in rows simply form their
// own group rather than silently merging with a clean one.
type GroupKey struct {
	Company            string `json:"company"`
	Category           string `json:"category"`
	CoverageArea       string `json:"coverage_area"`
	ValidityPeriod     string `json:"validity_period"`
	AccommodationClass string `json:"accommodation_class"`
}

// Group is the set of catalog rows sharing one GroupKey: the per-age-band
// price list of a single plan.  Rows keep their catalog insertion order,
// which the aggregator's first-match rule depends on.
type Group struct {
	Key  GroupKey
	Rows []catalog.Row
}

// Request describes one quotation: the ages of every beneficiary (order is
// preserved through to the per-person price list), the inclusive per-capita
// price window, optional company/category allow-lists, and the reference
// period used for expiry classification.
type Request struct {
	Ages            []int           `json:"ages"`
	MinPrice        decimal.Decimal `json:"min_price"`
	MaxPrice        decimal.Decimal `json:"max_price"`
	Categories      []string        `json:"categories,omitempty"`
	Companies       []string        `json:"companies,omitempty"`
	ReferencePeriod catalog.Period  `json:"-"`
}

// Quote is one plan's priced result for one Request.  PerPersonPrices is
// aligned with the request's age order, so beneficiary i pays
// PerPersonPrices[i].  Quotes are created fresh per computation and never
// mutated afterwards.
type Quote struct {
	GroupKey
	Total           decimal.Decimal   `json:"total"`
	PerCapita       decimal.Decimal   `json:"per_capita"`
	PerPersonPrices []decimal.Decimal `json:"per_person_prices"`
	IsExpired       bool              `json:"is_expired"`
	ValidityLabel   string            `json:"validity_label"`
}

// Result is the ranked output of one quotation, split into current and
// expired offers.  Both slices preserve the rank ordering (per-capita
// descending, stable).
type Result struct {
	Current []Quote `json:"current"`
	Expired []Quote `json:"expired"`
}
