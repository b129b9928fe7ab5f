// Package ingest loads price catalogs from operator spreadsheets into the
// database and keeps them fresh while the service runs.
package ingest

import (
	"context"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/turtacn/VitaQuote/internal/domain/catalog"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// Column header aliases accepted in the spreadsheet's first row.  Matching is
// case-insensitive with spaces treated as underscores.
var headerAliases = map[string]string{
	"company":             "company",
	"operator":            "company",
	"category":            "category",
	"coverage_area":       "coverage_area",
	"coverage":            "coverage_area",
	"accommodation_class": "accommodation_class",
	"accommodation":       "accommodation_class",
	"validity_period":     "validity_period",
	"validity":            "validity_period",
	"age_band":            "age_band",
	"age_range":           "age_band",
	"price":               "price",
}

// ParseWorkbook reads all catalog rows from one sheet of an xlsx workbook.
//
// The first row must be a header naming the seven catalog columns.  Data rows
// keep sheet order.  Blank rows are skipped and counted; an empty or
// unparsable price cell yields an unpriced row, which the quotation engine
// already treats as "never matches", so garbage pricing degrades a single row
// rather than the import.
func ParseWorkbook(r io.Reader, sheetName string) ([]catalog.Row, catalog.ImportSummary, error) {
	var summary catalog.ImportSummary

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, summary, errors.Wrap(err, errors.ErrCodeCatalogFileError, "failed to open workbook")
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, summary, errors.Wrap(err, errors.ErrCodeCatalogFileError, "failed to read sheet "+sheetName)
	}
	if len(rows) == 0 {
		return nil, summary, errors.New(errors.ErrCodeCatalogImportError, "sheet has no header row")
	}

	columns, err := mapHeader(rows[0])
	if err != nil {
		return nil, summary, err
	}

	var out []catalog.Row
	for _, cells := range rows[1:] {
		summary.RowsRead++

		row, empty := buildRow(cells, columns)
		if empty {
			summary.RowsSkipped++
			continue
		}
		out = append(out, row)
		summary.RowsLoaded++
	}
	return out, summary, nil
}

// mapHeader resolves each required column to its cell index.
func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(headerAliases))
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		key = strings.ReplaceAll(key, " ", "_")
		if canonical, ok := headerAliases[key]; ok {
			if _, dup := columns[canonical]; !dup {
				columns[canonical] = i
			}
		}
	}

	for _, required := range []string{
		"company", "category", "coverage_area", "accommodation_class",
		"validity_period", "age_band", "price",
	} {
		if _, ok := columns[required]; !ok {
			return nil, errors.New(errors.ErrCodeCatalogImportError, "missing column "+required)
		}
	}
	return columns, nil
}

func buildRow(cells []string, columns map[string]int) (catalog.Row, bool) {
	cell := func(name string) string {
		i := columns[name]
		if i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	row := catalog.Row{
		Company:            cell("company"),
		Category:           cell("category"),
		CoverageArea:       cell("coverage_area"),
		AccommodationClass: cell("accommodation_class"),
		ValidityPeriod:     cell("validity_period"),
		AgeBand:            cell("age_band"),
	}

	if row.Company == "" && row.Category == "" && row.AgeBand == "" {
		return catalog.Row{}, true
	}

	if raw := cell("price"); raw != "" {
		// Spreadsheets exported from pt-BR locales use a decimal comma.
		normalized := strings.ReplaceAll(raw, ",", ".")
		if d, err := decimal.NewFromString(normalized); err == nil {
			row.Price = &d
		}
	}
	return row, false
}

// Store is the subset of the catalog repository the importer writes through.
type Store interface {
	ReplaceAll(ctx context.Context, rows []catalog.Row) (int, error)
}

// Importer parses workbooks and swaps them into the catalog store.
type Importer struct {
	store     Store
	sheetName string
	log       logging.Logger

	// onImported runs after a successful import, used to invalidate the
	// catalog cache and update gauges.  May be nil.
	onImported func(summary catalog.ImportSummary)
}

// NewImporter builds an importer targeting the given sheet name.
func NewImporter(store Store, sheetName string, log logging.Logger) *Importer {
	return &Importer{store: store, sheetName: sheetName, log: log}
}

// OnImported installs a post-import callback.
func (im *Importer) OnImported(fn func(summary catalog.ImportSummary)) {
	im.onImported = fn
}

// ImportReader parses a workbook stream and replaces the stored catalog.
func (im *Importer) ImportReader(ctx context.Context, r io.Reader) (catalog.ImportSummary, error) {
	rows, summary, err := ParseWorkbook(r, im.sheetName)
	if err != nil {
		return summary, err
	}

	if _, err := im.store.ReplaceAll(ctx, rows); err != nil {
		return summary, err
	}

	im.log.Info("catalog imported",
		logging.Int("read", summary.RowsRead),
		logging.Int("loaded", summary.RowsLoaded),
		logging.Int("skipped", summary.RowsSkipped),
	)

	if im.onImported != nil {
		im.onImported(summary)
	}
	return summary, nil
}
