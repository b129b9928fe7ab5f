// Package catalog defines the plan-catalog domain: the priced rows imported
// from the operator's spreadsheet and the parsed value types (age bands,
// validity periods) the quotation engine works with.
//
// Raw string encodings are parsed exactly once at the ingestion boundary;
// nothing deeper in the engine re-parses catalog text.
package catalog

import (
	"github.com/shopspring/decimal"
)

// Row is one priced offer for one age band within one plan.  All descriptive
// fields are kept as the raw strings found in the source catalog; Price is
// nil when the source cell was empty, and such rows are never eligible
// matches during aggregation.
//
// Rows are read once per query cycle and are immutable for the duration of a
// quote computation.
type Row struct {
	Company            string           `json:"company"`
	Category           string           `json:"category"`
	CoverageArea       string           `json:"coverage_area"`
	AccommodationClass string           `json:"accommodation_class"`
	ValidityPeriod     string           `json:"validity_period"`
	AgeBand            string           `json:"age_band"`
	Price              *decimal.Decimal `json:"price,omitempty"`
}

// HasPrice reports whether the row carries a usable price.
func (r Row) HasPrice() bool {
	return r.Price != nil
}

// PriceValue returns the row price, or zero when absent.  Callers must check
// HasPrice before treating the value as meaningful.
func (r Row) PriceValue() decimal.Decimal {
	if r.Price == nil {
		return decimal.Zero
	}
	return *r.Price
}
