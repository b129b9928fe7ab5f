package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/turtacn/VitaQuote/internal/domain/catalog"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// CatalogImporter loads a price workbook; satisfied by ingest.Importer.
type CatalogImporter interface {
	ImportReader(ctx context.Context, r io.Reader) (catalog.ImportSummary, error)
}

// CatalogCounter reports catalog size; satisfied by the postgres repository.
type CatalogCounter interface {
	Count(ctx context.Context) (int, error)
}

// CatalogHandler serves catalog import and status.
type CatalogHandler struct {
	importer CatalogImporter
	counter  CatalogCounter
}

// NewCatalogHandler creates the catalog handler.
func NewCatalogHandler(importer CatalogImporter, counter CatalogCounter) *CatalogHandler {
	return &CatalogHandler{importer: importer, counter: counter}
}

const maxWorkbookSize = 32 << 20 // 32 MiB upload cap

// Import handles POST /api/v1/catalog/import.  The workbook is the request
// body; multipart uploads send it as the "workbook" form file.
func (h *CatalogHandler) Import(w http.ResponseWriter, r *http.Request) {
	src, err := workbookReader(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	defer src.Close()

	summary, err := h.importer.ImportReader(r.Context(), src)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func workbookReader(r *http.Request) (io.ReadCloser, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxWorkbookSize); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid multipart upload")
		}
		file, _, err := r.FormFile("workbook")
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "missing workbook file")
		}
		return file, nil
	}
	return http.MaxBytesReader(nil, r.Body, maxWorkbookSize), nil
}

type catalogStatusResponse struct {
	Rows int `json:"rows"`
}

// Status handles GET /api/v1/catalog.
func (h *CatalogHandler) Status(w http.ResponseWriter, r *http.Request) {
	n, err := h.counter.Count(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogStatusResponse{Rows: n})
}
