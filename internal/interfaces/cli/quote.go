package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/turtacn/VitaQuote/internal/application/ingest"
	"github.com/turtacn/VitaQuote/internal/domain/catalog"
	"github.com/turtacn/VitaQuote/internal/domain/quote"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

var (
	quoteWorkbook   string
	quoteSheet      string
	quoteAges       string
	quoteMinPrice   string
	quoteMaxPrice   string
	quoteCompanies  []string
	quoteCategories []string
	quotePeriod     string
)

// newQuoteCmd builds the offline quote command: parse a local workbook, run
// the engine, print the ranked offers.  No server or database involved.
func newQuoteCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute quotations from a local price workbook",
		Long:  "Reads an xlsx price catalog and prints every plan that can cover the\ngiven beneficiary ages within the per-capita price window, ranked by\nper-capita price, current offers first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&quoteWorkbook, "workbook", "w", "", "path to the xlsx price catalog (required)")
	f.StringVar(&quoteSheet, "sheet", "", "sheet name (default: first sheet)")
	f.StringVar(&quoteAges, "ages", "", "comma-separated beneficiary ages (required)")
	f.StringVar(&quoteMinPrice, "min-price", "0", "minimum per-capita price, inclusive")
	f.StringVar(&quoteMaxPrice, "max-price", "1000000", "maximum per-capita price, inclusive")
	f.StringSliceVar(&quoteCompanies, "company", nil, "restrict to these companies (repeatable)")
	f.StringSliceVar(&quoteCategories, "category", nil, "restrict to these categories (repeatable)")
	f.StringVar(&quotePeriod, "period", "", "reference period YYYY-MM (default: current month)")
	_ = cmd.MarkFlagRequired("workbook")
	_ = cmd.MarkFlagRequired("ages")

	return cmd
}

func runQuote(cmd *cobra.Command, opts *RootOptions) error {
	req, err := buildQuoteRequest()
	if err != nil {
		return err
	}

	f, err := os.Open(quoteWorkbook)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCatalogFileError, "cannot open workbook")
	}
	defer f.Close()

	rows, summary, err := ingest.ParseWorkbook(f, quoteSheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.New(errors.ErrCodeCatalogEmpty, "workbook has no catalog rows")
	}

	res := quote.Compute(rows, req)

	if strings.EqualFold(opts.OutputFormat, "json") {
		return printJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Catalog: %d rows (%d skipped), reference period %s\n\n",
		summary.RowsLoaded, summary.RowsSkipped, req.ReferencePeriod.String())

	printQuoteTable(cmd, "Current offers", res.Current)
	if len(res.Expired) > 0 {
		fmt.Fprintln(out)
		printQuoteTable(cmd, color.YellowString("Expired price tables"), res.Expired)
	}
	return nil
}

func buildQuoteRequest() (quote.Request, error) {
	ages, err := parseAges(quoteAges)
	if err != nil {
		return quote.Request{}, err
	}

	minPrice, err := decimal.NewFromString(quoteMinPrice)
	if err != nil {
		return quote.Request{}, errors.New(errors.ErrCodeQuoteInvalidRange, "min-price is not a valid decimal")
	}
	maxPrice, err := decimal.NewFromString(quoteMaxPrice)
	if err != nil {
		return quote.Request{}, errors.New(errors.ErrCodeQuoteInvalidRange, "max-price is not a valid decimal")
	}

	ref := catalog.PeriodOf(time.Now())
	if quotePeriod != "" {
		ref, err = catalog.ParsePeriod(quotePeriod)
		if err != nil {
			return quote.Request{}, err
		}
	}

	return quote.Request{
		Ages:            ages,
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		Companies:       quoteCompanies,
		Categories:      quoteCategories,
		ReferencePeriod: ref,
	}, nil
}

func parseAges(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	ages := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		age, err := strconv.Atoi(p)
		if err != nil || age < 0 {
			return nil, errors.Newf(errors.ErrCodeQuoteInvalidAges, "invalid age %q", p)
		}
		ages = append(ages, age)
	}
	if len(ages) == 0 {
		return nil, errors.New(errors.ErrCodeQuoteInvalidAges, "at least one age is required")
	}
	return ages, nil
}

func printQuoteTable(cmd *cobra.Command, title string, quotes []quote.Quote) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title)
	if len(quotes) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Company", "Category", "Coverage", "Accommodation", "Validity", "Per capita", "Total"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, q := range quotes {
		table.Append([]string{
			q.Company,
			q.Category,
			q.CoverageArea,
			q.AccommodationClass,
			q.ValidityLabel,
			q.PerCapita.StringFixed(2),
			q.Total.StringFixed(2),
		})
	}
	table.Render()
}
