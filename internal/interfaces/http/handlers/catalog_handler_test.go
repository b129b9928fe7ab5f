package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitaQuote/internal/domain/catalog"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

type fakeImporter struct {
	summary catalog.ImportSummary
	err     error
	body    []byte
}

func (f *fakeImporter) ImportReader(_ context.Context, r io.Reader) (catalog.ImportSummary, error) {
	f.body, _ = io.ReadAll(r)
	if f.err != nil {
		return catalog.ImportSummary{}, f.err
	}
	return f.summary, nil
}

type fakeCounter struct {
	n   int
	err error
}

func (f *fakeCounter) Count(context.Context) (int, error) {
	return f.n, f.err
}

func TestCatalogImportRawBody(t *testing.T) {
	imp := &fakeImporter{summary: catalog.ImportSummary{RowsRead: 10, RowsLoaded: 9, RowsSkipped: 1}}
	h := NewCatalogHandler(imp, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/import", strings.NewReader("workbook-bytes"))
	w := httptest.NewRecorder()
	h.Import(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rows_loaded":9`)
	assert.Equal(t, "workbook-bytes", string(imp.body))
}

func TestCatalogImportMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("workbook", "prices.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("workbook-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	imp := &fakeImporter{summary: catalog.ImportSummary{RowsRead: 3, RowsLoaded: 3}}
	h := NewCatalogHandler(imp, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.Import(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "workbook-bytes", string(imp.body))
}

func TestCatalogImportMultipartMissingFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	h := NewCatalogHandler(&fakeImporter{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.Import(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogImportBadWorkbook(t *testing.T) {
	imp := &fakeImporter{err: errors.New(errors.ErrCodeCatalogFileError, "cannot open workbook")}
	h := NewCatalogHandler(imp, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/import", strings.NewReader("not an xlsx"))
	w := httptest.NewRecorder()
	h.Import(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), errors.ErrCodeCatalogFileError.String())
}

func TestCatalogStatus(t *testing.T) {
	h := NewCatalogHandler(nil, &fakeCounter{n: 42})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	w := httptest.NewRecorder()
	h.Status(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rows":42}`, w.Body.String())
}

func TestCatalogStatusDatabaseError(t *testing.T) {
	h := NewCatalogHandler(nil, &fakeCounter{
		err: errors.New(errors.ErrCodeDatabaseError, "query failed"),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	w := httptest.NewRecorder()
	h.Status(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "query failed")
}
