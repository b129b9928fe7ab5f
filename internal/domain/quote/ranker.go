package quote

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/VitaQuote/internal/domain/catalog"
)

// RankAndFilter keeps quotes whose per-capita price lies inside
// [min, max] (both ends inclusive), orders the survivors by per-capita
// price descending, and splits them into current and expired offers.
//
// The sort is stable: quotes with equal per-capita prices keep their
// pre-sort relative order, which is the only documented tie-break.  Both
// output slices preserve the rank ordering.
func RankAndFilter(quotes []Quote, min, max decimal.Decimal) Result {
	kept := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.PerCapita.Cmp(min) >= 0 && q.PerCapita.Cmp(max) <= 0 {
			kept = append(kept, q)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].PerCapita.Cmp(kept[j].PerCapita) > 0
	})

	result := Result{Current: []Quote{}, Expired: []Quote{}}
	for _, q := range kept {
		if q.IsExpired {
			result.Expired = append(result.Expired, q)
		} else {
			result.Current = append(result.Current, q)
		}
	}
	return result
}

// allowed reports set membership with an empty allow-list meaning "all".
func allowed(value string, allowList []string) bool {
	if len(allowList) == 0 {
		return true
	}
	for _, v := range allowList {
		if v == value {
			return true
		}
	}
	return false
}

// Stats describes what one computation saw, for observability.
type Stats struct {
	GroupsTotal      int
	GroupsConsidered int
	GroupsPriced     int
	GroupsIneligible int
}

// Compute runs the full quotation pipeline over one catalog snapshot:
// group, filter by company/category allow-lists, aggregate, rank.
//
// The allow-list filter selects which groups are priced; it never changes
// which rows belong to a surviving group.  Groups that cannot price every
// requested age are dropped silently, which is the normal outcome for plans
// whose schedule does not reach a requested age.
//
// When the request carries no reference period the calendar month of the
// invocation is used; tests inject an explicit period for determinism.
func Compute(rows []catalog.Row, req Request) Result {
	result, _ := ComputeWithStats(rows, req)
	return result
}

// ComputeWithStats is Compute plus per-run counters.
func ComputeWithStats(rows []catalog.Row, req Request) (Result, Stats) {
	ref := req.ReferencePeriod
	if ref.IsZero() {
		ref = catalog.PeriodOf(time.Now())
	}

	groups := GroupRows(rows)
	stats := Stats{GroupsTotal: len(groups)}

	quotes := make([]Quote, 0, len(groups))
	for _, g := range groups {
		if !allowed(g.Key.Company, req.Companies) || !allowed(g.Key.Category, req.Categories) {
			continue
		}
		stats.GroupsConsidered++
		if q, ok := Aggregate(g, req.Ages, ref); ok {
			stats.GroupsPriced++
			quotes = append(quotes, q)
		} else {
			stats.GroupsIneligible++
		}
	}

	return RankAndFilter(quotes, req.MinPrice, req.MaxPrice), stats
}
