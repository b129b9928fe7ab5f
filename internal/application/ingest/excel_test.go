package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/turtacn/VitaQuote/internal/domain/catalog"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

const testSheet = "Plans"

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(testSheet)
	require.NoError(t, err)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(testSheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func header() []interface{} {
	return []interface{}{
		"Company", "Category", "Coverage Area", "Accommodation Class",
		"Validity Period", "Age Band", "Price",
	}
}

func TestParseWorkbook(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		header(),
		{"VidaCare", "individual", "national", "ward", "2025-03", "0-18", "100.50"},
		{"VidaCare", "individual", "national", "ward", "2025-03", "19+", ""},
	})

	rows, summary, err := ParseWorkbook(buf, testSheet)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RowsRead)
	assert.Equal(t, 2, summary.RowsLoaded)
	assert.Equal(t, 0, summary.RowsSkipped)

	require.Len(t, rows, 2)
	assert.Equal(t, "VidaCare", rows[0].Company)
	assert.Equal(t, "0-18", rows[0].AgeBand)
	require.NotNil(t, rows[0].Price)
	assert.Equal(t, "100.5", rows[0].Price.String())
	assert.Nil(t, rows[1].Price, "empty price cell yields an unpriced row")
}

func TestParseWorkbookSkipsBlankRows(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		header(),
		{"VidaCare", "individual", "national", "ward", "2025-03", "0-18", "100"},
		{"", "", "", "", "", "", ""},
		{"Salus", "individual", "national", "ward", "2025-03", "0-18", "90"},
	})

	rows, summary, err := ParseWorkbook(buf, testSheet)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.RowsRead)
	assert.Equal(t, 2, summary.RowsLoaded)
	assert.Equal(t, 1, summary.RowsSkipped)
	assert.Len(t, rows, 2)
}

func TestParseWorkbookDecimalComma(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		header(),
		{"VidaCare", "individual", "national", "ward", "2025-03", "0-18", "1234,56"},
	})

	rows, _, err := ParseWorkbook(buf, testSheet)
	require.NoError(t, err)
	require.NotNil(t, rows[0].Price)
	assert.Equal(t, "1234.56", rows[0].Price.String())
}

func TestParseWorkbookGarbagePriceBecomesUnpriced(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		header(),
		{"VidaCare", "individual", "national", "ward", "2025-03", "0-18", "call us"},
	})

	rows, summary, err := ParseWorkbook(buf, testSheet)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RowsLoaded)
	assert.Nil(t, rows[0].Price)
}

func TestParseWorkbookPreservesSheetOrder(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		header(),
		{"B", "x", "r", "w", "2025-01", "0-18", "1"},
		{"A", "x", "r", "w", "2025-01", "0-18", "2"},
		{"B", "x", "r", "w", "2025-01", "19+", "3"},
	})

	rows, _, err := ParseWorkbook(buf, testSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "B", rows[0].Company)
	assert.Equal(t, "A", rows[1].Company)
	assert.Equal(t, "19+", rows[2].AgeBand)
}

func TestParseWorkbookMissingColumn(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Company", "Category", "Coverage Area", "Accommodation Class", "Validity Period", "Age Band"},
		{"VidaCare", "individual", "national", "ward", "2025-03", "0-18"},
	})

	_, _, err := ParseWorkbook(buf, testSheet)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCatalogImportError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "price")
}

func TestParseWorkbookNotAWorkbook(t *testing.T) {
	_, _, err := ParseWorkbook(bytes.NewReader([]byte("not a zip")), testSheet)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCatalogFileError, errors.GetCode(err))
}

type fakeStore struct {
	rows []catalog.Row
	err  error
}

func (s *fakeStore) ReplaceAll(_ context.Context, rows []catalog.Row) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.rows = rows
	return len(rows), nil
}

func TestImporterImportReader(t *testing.T) {
	store := &fakeStore{}
	im := NewImporter(store, testSheet, logging.NewNopLogger())

	var gotSummary catalog.ImportSummary
	im.OnImported(func(s catalog.ImportSummary) { gotSummary = s })

	buf := buildWorkbook(t, [][]interface{}{
		header(),
		{"VidaCare", "individual", "national", "ward", "2025-03", "0-18", "100"},
	})

	summary, err := im.ImportReader(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RowsLoaded)
	assert.Len(t, store.rows, 1)
	assert.Equal(t, summary, gotSummary, "callback sees the final summary")
}

func TestImporterStoreFailure(t *testing.T) {
	store := &fakeStore{err: assert.AnError}
	im := NewImporter(store, testSheet, logging.NewNopLogger())

	called := false
	im.OnImported(func(catalog.ImportSummary) { called = true })

	buf := buildWorkbook(t, [][]interface{}{
		header(),
		{"VidaCare", "individual", "national", "ward", "2025-03", "0-18", "100"},
	})

	_, err := im.ImportReader(context.Background(), buf)
	require.Error(t, err)
	assert.False(t, called, "callback must not fire on failure")
}

func TestWatcherReimportsOnDiskChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plans.xlsx")

	buf := buildWorkbook(t, [][]interface{}{
		header(),
		{"VidaCare", "individual", "national", "ward", "2025-03", "0-18", "100"},
	})
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	store := &fakeStore{}
	im := NewImporter(store, testSheet, logging.NewNopLogger())
	w := NewWatcher(im, path, 10*time.Millisecond, logging.NewNopLogger())

	w.reimport(context.Background())
	assert.Len(t, store.rows, 1)
}
