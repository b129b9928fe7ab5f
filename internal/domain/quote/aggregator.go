package quote

import (
	"github.com/shopspring/decimal"

	"github.com/turtacn/VitaQuote/internal/domain/catalog"
)

// pricedBand is a group row with its age band parsed once up front.  Rows
// whose band does not parse keep ok == false and are skipped during
// matching; a malformed band never aborts the computation.
type pricedBand struct {
	band catalog.AgeBand
	row  catalog.Row
	ok   bool
}

// parseBands pre-parses every row of a group, preserving row order.
func parseBands(g Group) []pricedBand {
	bands := make([]pricedBand, len(g.Rows))
	for i, row := range g.Rows {
		band, err := catalog.ParseAgeBand(row.AgeBand)
		bands[i] = pricedBand{band: band, row: row, ok: err == nil}
	}
	return bands
}

// Aggregate prices one plan group against the requested ages.
//
// For each age, in request order, the first group row (in catalog order)
// whose band parses, matches the age, and carries a price supplies that
// beneficiary's price.  Later rows matching the same age are ignored; the
// first-match rule is a documented contract, not an accident, because
// source catalogs occasionally carry overlapping bands.
//
// If any age finds no priced row the group cannot cover the request:
// Aggregate short-circuits and reports ok == false without a partial quote.
//
// The reference period classifies the group as current or expired.  A
// validity string that does not parse leaves the plan unexpired: an
// unreadable validity must not hide an offer (its label degrades to the raw
// string instead).
//
// An empty age list yields a zero total and, by definition, a zero
// per-capita price.
func Aggregate(g Group, ages []int, ref catalog.Period) (Quote, bool) {
	bands := parseBands(g)

	perPerson := make([]decimal.Decimal, 0, len(ages))
	total := decimal.Zero

	for _, age := range ages {
		matched := false
		for _, pb := range bands {
			if !pb.ok || !pb.row.HasPrice() || !pb.band.Matches(age) {
				continue
			}
			price := pb.row.PriceValue()
			perPerson = append(perPerson, price)
			total = total.Add(price)
			matched = true
			break
		}
		if !matched {
			return Quote{}, false
		}
	}

	perCapita := decimal.Zero
	if len(ages) > 0 {
		perCapita = total.Div(decimal.NewFromInt(int64(len(ages))))
	}

	expired := false
	if period, err := catalog.ParsePeriod(g.Key.ValidityPeriod); err == nil {
		expired = period.Before(ref)
	}

	return Quote{
		GroupKey:        g.Key,
		Total:           total,
		PerCapita:       perCapita,
		PerPersonPrices: perPerson,
		IsExpired:       expired,
		ValidityLabel:   catalog.FormatPeriod(g.Key.ValidityPeriod),
	}, true
}
