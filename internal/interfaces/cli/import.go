package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/VitaQuote/internal/application/ingest"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/postgres"
	"github.com/turtacn/VitaQuote/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

var (
	importWorkbook string
	importSheet    string
	importMigrate  bool
)

// newImportCmd builds the catalog import command.  It writes straight to
// PostgreSQL; a running apiserver picks the new catalog up on its next cache
// miss or invalidation.
func newImportCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a price workbook into the catalog database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&importWorkbook, "workbook", "w", "", "path to the xlsx price catalog (required)")
	f.StringVar(&importSheet, "sheet", "", "sheet name (default: from config)")
	f.BoolVar(&importMigrate, "migrate", false, "run pending database migrations first")
	_ = cmd.MarkFlagRequired("workbook")

	return cmd
}

func runImport(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log, err := newLogger(opts)
	if err != nil {
		return err
	}

	conn, err := postgres.NewConnection(cfg.Database, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	if importMigrate {
		if err := conn.RunMigrations(cfg.Database.MigrationPath); err != nil {
			return err
		}
	}

	sheet := importSheet
	if sheet == "" {
		sheet = cfg.Catalog.SheetName
	}

	f, err := os.Open(importWorkbook)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCatalogFileError, "cannot open workbook")
	}
	defer f.Close()

	repo := repositories.NewPostgresCatalogRepo(conn, log)
	importer := ingest.NewImporter(repo, sheet, log)

	summary, err := importer.ImportReader(cmd.Context(), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows (%d read, %d skipped)\n",
		summary.RowsLoaded, summary.RowsRead, summary.RowsSkipped)
	return nil
}
