package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitaQuote/internal/application/export"
	"github.com/turtacn/VitaQuote/internal/application/quotation"
	"github.com/turtacn/VitaQuote/internal/domain/quote"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

type fakeQuoteService struct {
	resp *quotation.Response
	err  error

	username string
	req      quote.Request
}

func (f *fakeQuoteService) ComputeQuotes(_ context.Context, username string, req quote.Request) (*quotation.Response, error) {
	f.username = username
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeExportService struct {
	url string
	err error
	rec export.Record
}

func (f *fakeExportService) Export(_ context.Context, rec export.Record) (string, error) {
	f.rec = rec
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func quoteResponse() *quotation.Response {
	return &quotation.Response{
		QuoteID:    "q-1",
		ComputedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Result: quote.Result{
			Current: []quote.Quote{{
				GroupKey:  quote.GroupKey{Company: "VidaCare"},
				PerCapita: decimal.RequireFromString("150"),
			}},
			Expired: []quote.Quote{},
		},
		GroupsSeen: 1,
	}
}

func TestComputeQuotesEndpoint(t *testing.T) {
	svc := &fakeQuoteService{resp: quoteResponse()}
	h := NewQuoteHandler(svc, nil)

	body := strings.NewReader(`{"ages":[10,30],"min_price":"0","max_price":"1000"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", body)
	w := httptest.NewRecorder()
	h.Compute(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp quotation.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "q-1", resp.QuoteID)
	require.Len(t, resp.Result.Current, 1)
	assert.Equal(t, []int{10, 30}, svc.req.Ages)
	assert.Equal(t, "1000", svc.req.MaxPrice.String())
}

func TestComputeQuotesDefaultReferencePeriod(t *testing.T) {
	svc := &fakeQuoteService{resp: quoteResponse()}
	h := NewQuoteHandler(svc, nil)

	body := strings.NewReader(`{"ages":[30],"min_price":"0","max_price":"500"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", body)
	w := httptest.NewRecorder()
	h.Compute(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, svc.req.ReferencePeriod.IsZero(), "omitting reference_period uses the current month")
}

func TestComputeQuotesExplicitReferencePeriod(t *testing.T) {
	svc := &fakeQuoteService{resp: quoteResponse()}
	h := NewQuoteHandler(svc, nil)

	body := strings.NewReader(`{"ages":[30],"min_price":"0","max_price":"500","reference_period":"2024-06"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", body)
	w := httptest.NewRecorder()
	h.Compute(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-06", svc.req.ReferencePeriod.String())
}

func TestComputeQuotesBadDecimal(t *testing.T) {
	h := NewQuoteHandler(&fakeQuoteService{}, nil)

	body := strings.NewReader(`{"ages":[30],"min_price":"abc","max_price":"500"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", body)
	w := httptest.NewRecorder()
	h.Compute(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), errors.ErrCodeQuoteInvalidRange.String())
}

func TestComputeQuotesBadPeriod(t *testing.T) {
	h := NewQuoteHandler(&fakeQuoteService{}, nil)

	body := strings.NewReader(`{"ages":[30],"min_price":"0","max_price":"500","reference_period":"June 2024"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", body)
	w := httptest.NewRecorder()
	h.Compute(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), errors.ErrCodePeriodMalformed.String())
}

func TestComputeQuotesEmptyCatalog(t *testing.T) {
	h := NewQuoteHandler(&fakeQuoteService{
		err: errors.New(errors.ErrCodeCatalogEmpty, "no price catalog has been imported"),
	}, nil)

	body := strings.NewReader(`{"ages":[30],"min_price":"0","max_price":"500"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", body)
	w := httptest.NewRecorder()
	h.Compute(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), errors.ErrCodeCatalogEmpty.String())
}

func TestExportQuotesEndpoint(t *testing.T) {
	quotes := &fakeQuoteService{resp: quoteResponse()}
	exports := &fakeExportService{url: "https://minio.local/quotes/2025/03/q-1.pdf"}
	h := NewQuoteHandler(quotes, exports)

	body := strings.NewReader(`{"ages":[10,30],"min_price":"0","max_price":"1000"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/export", body)
	w := httptest.NewRecorder()
	h.Export(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp exportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "q-1", resp.QuoteID)
	assert.Equal(t, exports.url, resp.URL)
	assert.Equal(t, "q-1", exports.rec.QuoteID)
	assert.Equal(t, "0.00", exports.rec.MinPrice)
}

func TestExportQuotesArchiveFailure(t *testing.T) {
	quotes := &fakeQuoteService{resp: quoteResponse()}
	exports := &fakeExportService{
		err: errors.New(errors.ErrCodeQuoteArchiveFailed, "failed to store quote PDF"),
	}
	h := NewQuoteHandler(quotes, exports)

	body := strings.NewReader(`{"ages":[10,30],"min_price":"0","max_price":"1000"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/export", body)
	w := httptest.NewRecorder()
	h.Export(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
