package repositories

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/turtacn/VitaQuote/internal/domain/catalog"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/postgres"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

type postgresCatalogRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresCatalogRepo builds the catalog repository backed by the
// catalog_rows table.  Row order is preserved through the position column so
// that the aggregator's first-match rule sees rows exactly as they appeared
// in the source spreadsheet.
func NewPostgresCatalogRepo(conn *postgres.Connection, log logging.Logger) catalog.Repository {
	return &postgresCatalogRepo{
		conn:     conn,
		log:      log,
		executor: conn.DB(),
	}
}

const listCatalogQuery = `
	SELECT company, category, coverage_area, accommodation_class,
	       validity_period, age_band, price
	FROM catalog_rows
	ORDER BY position
`

func (r *postgresCatalogRepo) List(ctx context.Context) ([]catalog.Row, error) {
	rows, err := r.executor.QueryContext(ctx, listCatalogQuery)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list catalog rows")
	}
	defer rows.Close()

	var out []catalog.Row
	for rows.Next() {
		var row catalog.Row
		var price sql.NullString
		if err := rows.Scan(
			&row.Company, &row.Category, &row.CoverageArea, &row.AccommodationClass,
			&row.ValidityPeriod, &row.AgeBand, &price,
		); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan catalog row")
		}
		if price.Valid {
			d, err := decimal.NewFromString(price.String)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "invalid price in catalog_rows")
			}
			row.Price = &d
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate catalog rows")
	}
	return out, nil
}

// ReplaceAll swaps the whole catalog for newRows inside one transaction.
// Readers never observe a half-imported catalog.
func (r *postgresCatalogRepo) ReplaceAll(ctx context.Context, newRows []catalog.Row) (int, error) {
	tx, err := r.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin catalog import transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_rows`); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to clear catalog")
	}

	const insertQuery = `
		INSERT INTO catalog_rows (
			position, company, category, coverage_area, accommodation_class,
			validity_period, age_band, price
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to prepare catalog insert")
	}
	defer stmt.Close()

	for i, row := range newRows {
		var price interface{}
		if row.Price != nil {
			price = row.Price.String()
		}
		if _, err := stmt.ExecContext(ctx,
			i, row.Company, row.Category, row.CoverageArea, row.AccommodationClass,
			row.ValidityPeriod, row.AgeBand, price,
		); err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert catalog row")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit catalog import")
	}

	r.log.Info("catalog replaced", logging.Int("rows", len(newRows)))
	return len(newRows), nil
}

func (r *postgresCatalogRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_rows`).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count catalog rows")
	}
	return n, nil
}
