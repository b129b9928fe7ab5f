// Package export renders computed quotations to PDF and archives them for
// download.
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/turtacn/VitaQuote/internal/domain/quote"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// Record is the flat document built from one quotation: everything the PDF
// needs with no engine types left to interpret.
type Record struct {
	QuoteID     string
	Username    string
	GeneratedAt time.Time
	Ages        []int
	MinPrice    string
	MaxPrice    string
	Current     []quote.Quote
	Expired     []quote.Quote
}

// Archiver stores rendered documents; satisfied by minio.Archive.
type Archiver interface {
	StorePDF(ctx context.Context, quoteID string, pdf []byte, at time.Time) (string, error)
	PresignedURL(ctx context.Context, objectName string) (string, error)
}

// Service renders and archives quote documents.
type Service struct {
	archive Archiver
	log     logging.Logger

	// onExport receives "ok" or "error".  May be nil.
	onExport func(status string)
}

// NewService builds the export service.
func NewService(archive Archiver, log logging.Logger) *Service {
	return &Service{archive: archive, log: log}
}

// OnExport installs a result hook.
func (s *Service) OnExport(fn func(status string)) {
	s.onExport = fn
}

func (s *Service) report(status string) {
	if s.onExport != nil {
		s.onExport(status)
	}
}

// Export renders rec, archives the PDF, and returns a presigned download URL.
func (s *Service) Export(ctx context.Context, rec Record) (string, error) {
	pdf, err := Render(rec)
	if err != nil {
		s.report("error")
		return "", err
	}

	object, err := s.archive.StorePDF(ctx, rec.QuoteID, pdf, rec.GeneratedAt)
	if err != nil {
		s.report("error")
		return "", err
	}

	url, err := s.archive.PresignedURL(ctx, object)
	if err != nil {
		s.report("error")
		return "", err
	}

	s.report("ok")
	s.log.Info("quote exported",
		logging.String("quote_id", rec.QuoteID),
		logging.String("object", object),
	)
	return url, nil
}

// Render produces the PDF document for one quotation record.
func Render(rec Record) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Health Plan Quotation", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Health Plan Quotation")
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 6, fmt.Sprintf("Quote %s generated %s for %s",
		rec.QuoteID, rec.GeneratedAt.Format("2006-01-02 15:04 MST"), rec.Username))
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("Beneficiary ages: %v", rec.Ages))
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("Per-capita price window: %s to %s", rec.MinPrice, rec.MaxPrice))
	doc.Ln(10)

	writeSection(doc, "Current offers", rec.Current)
	writeSection(doc, "Expired price tables", rec.Expired)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeQuoteExportFailed, "failed to render quote PDF")
	}
	return buf.Bytes(), nil
}

func writeSection(doc *fpdf.Fpdf, title string, quotes []quote.Quote) {
	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(0, 8, title)
	doc.Ln(9)

	if len(quotes) == 0 {
		doc.SetFont("Helvetica", "I", 10)
		doc.Cell(0, 6, "none")
		doc.Ln(9)
		return
	}

	headers := []string{"Company", "Category", "Coverage", "Class", "Validity", "Per capita", "Total"}
	widths := []float64{32, 24, 26, 22, 32, 26, 26}

	doc.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		doc.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	for _, q := range quotes {
		cells := []string{
			q.Company, q.Category, q.CoverageArea, q.AccommodationClass,
			q.ValidityLabel, q.PerCapita.StringFixed(2), q.Total.StringFixed(2),
		}
		for i, c := range cells {
			doc.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
	doc.Ln(4)
}
