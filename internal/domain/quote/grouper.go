package quote

import "github.com/turtacn/VitaQuote/internal/domain/catalog"

// keyOf builds the grouping key for a row.  No trimming, no case folding.
func keyOf(r catalog.Row) GroupKey {
	return GroupKey{
		Company:            r.Company,
		Category:           r.Category,
		CoverageArea:       r.CoverageArea,
		ValidityPeriod:     r.ValidityPeriod,
		AccommodationClass: r.AccommodationClass,
	}
}

// GroupRows partitions catalog rows into plan groups.  The partition is
// exhaustive: every input row lands in exactly one group, nothing is dropped
// or deduplicated.  Groups appear in order of their first row, and rows
// inside a group keep input order, so the overall arrangement is stable
// across identical inputs.
func GroupRows(rows []catalog.Row) []Group {
	index := make(map[GroupKey]int, len(rows))
	groups := make([]Group, 0, len(rows)/2+1)

	for _, row := range rows {
		key := keyOf(row)
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}
