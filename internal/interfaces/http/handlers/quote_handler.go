package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/VitaQuote/internal/application/export"
	"github.com/turtacn/VitaQuote/internal/application/quotation"
	"github.com/turtacn/VitaQuote/internal/domain/catalog"
	"github.com/turtacn/VitaQuote/internal/domain/quote"
	"github.com/turtacn/VitaQuote/internal/interfaces/http/middleware"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// QuoteService computes quotations; satisfied by quotation.Service.
type QuoteService interface {
	ComputeQuotes(ctx context.Context, username string, req quote.Request) (*quotation.Response, error)
}

// ExportService archives a rendered quotation; satisfied by export.Service.
type ExportService interface {
	Export(ctx context.Context, rec export.Record) (string, error)
}

// QuoteHandler serves quotation computation and PDF export.
type QuoteHandler struct {
	quotes  QuoteService
	exports ExportService
}

// NewQuoteHandler creates the quote handler.
func NewQuoteHandler(quotes QuoteService, exports ExportService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, exports: exports}
}

type quoteRequest struct {
	Ages            []int    `json:"ages"`
	MinPrice        string   `json:"min_price"`
	MaxPrice        string   `json:"max_price"`
	Categories      []string `json:"categories,omitempty"`
	Companies       []string `json:"companies,omitempty"`
	ReferencePeriod string   `json:"reference_period,omitempty"`
}

func (q quoteRequest) toDomain() (quote.Request, error) {
	minPrice, err := decimal.NewFromString(q.MinPrice)
	if err != nil {
		return quote.Request{}, errors.New(errors.ErrCodeQuoteInvalidRange, "min_price is not a valid decimal")
	}
	maxPrice, err := decimal.NewFromString(q.MaxPrice)
	if err != nil {
		return quote.Request{}, errors.New(errors.ErrCodeQuoteInvalidRange, "max_price is not a valid decimal")
	}

	ref := catalog.PeriodOf(time.Now())
	if q.ReferencePeriod != "" {
		ref, err = catalog.ParsePeriod(q.ReferencePeriod)
		if err != nil {
			return quote.Request{}, err
		}
	}

	return quote.Request{
		Ages:            q.Ages,
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		Categories:      q.Categories,
		Companies:       q.Companies,
		ReferencePeriod: ref,
	}, nil
}

func (h *QuoteHandler) compute(w http.ResponseWriter, r *http.Request) (*quotation.Response, quote.Request, bool) {
	var body quoteRequest
	if err := decodeJSON(r, &body); err != nil {
		writeAppError(w, err)
		return nil, quote.Request{}, false
	}
	req, err := body.toDomain()
	if err != nil {
		writeAppError(w, err)
		return nil, quote.Request{}, false
	}

	username := ""
	if sess := middleware.ContextSession(r.Context()); sess != nil {
		username = sess.Username
	}

	resp, err := h.quotes.ComputeQuotes(r.Context(), username, req)
	if err != nil {
		writeAppError(w, err)
		return nil, quote.Request{}, false
	}
	return resp, req, true
}

// Compute handles POST /api/v1/quotes.
func (h *QuoteHandler) Compute(w http.ResponseWriter, r *http.Request) {
	resp, _, ok := h.compute(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type exportResponse struct {
	QuoteID string `json:"quote_id"`
	URL     string `json:"url"`
}

// Export handles POST /api/v1/quotes/export: compute, render, archive, and
// hand back a download link.
func (h *QuoteHandler) Export(w http.ResponseWriter, r *http.Request) {
	resp, req, ok := h.compute(w, r)
	if !ok {
		return
	}

	username := ""
	if sess := middleware.ContextSession(r.Context()); sess != nil {
		username = sess.Username
	}

	url, err := h.exports.Export(r.Context(), quotation.BuildRecord(username, req, resp))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{QuoteID: resp.QuoteID, URL: url})
}
