package catalog

import "context"

// ImportSummary reports the outcome of one catalog load.
type ImportSummary struct {
	RowsRead    int `json:"rows_read"`
	RowsLoaded  int `json:"rows_loaded"`
	RowsSkipped int `json:"rows_skipped"`
}

// Repository is the persistence contract for the plan catalog.  The engine
// only ever sees the full row set for one query cycle; filtering and
// grouping happen in memory.
type Repository interface {
	// List returns every catalog row in import order.
	List(ctx context.Context) ([]Row, error)

	// ReplaceAll atomically swaps the stored catalog for the given rows,
	// preserving their order.  Returns the number of rows written.
	ReplaceAll(ctx context.Context, rows []Row) (int, error)

	// Count returns the number of stored rows.
	Count(ctx context.Context) (int, error)
}
