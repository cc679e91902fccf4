package etl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bankscap/internal/adapters"
	"bankscap/internal/domain"
	"bankscap/internal/progress"

	"github.com/sirupsen/logrus"
)

type LoadOptions struct {
	CSVPath string
	// XLSXPath is an optional workbook export written after the CSV file.
	XLSXPath  string
	TableName string
	// Queries run against the loaded table; results are logged only.
	Queries []string
}

// Loader writes the final table to the CSV file, then replaces the relational
// table. A CSV written before a database failure is not rolled back.
type Loader struct {
	files     adapters.FileSink
	workbook  adapters.FileSink
	openStore adapters.StoreOpener
	opts      LoadOptions
	progress  *progress.Log
}

func NewLoader(files adapters.FileSink, openStore adapters.StoreOpener, opts LoadOptions, progressLog *progress.Log) *Loader {
	return &Loader{files: files, openStore: openStore, opts: opts, progress: progressLog}
}

// WithWorkbook enables the XLSX export when opts.XLSXPath is set.
func (l *Loader) WithWorkbook(sink adapters.FileSink) *Loader {
	l.workbook = sink
	return l
}

func (l *Loader) Load(ctx context.Context, table *domain.Table) error {
	l.progress.Logf("Writing data to CSV file %s", l.opts.CSVPath)
	if err := l.files.WriteTable(l.opts.CSVPath, table); err != nil {
		return sinkError(err)
	}
	l.progress.Log("Data saved to CSV file")

	if l.workbook != nil && l.opts.XLSXPath != "" {
		l.progress.Logf("Writing data to XLSX file %s", l.opts.XLSXPath)
		if err := l.workbook.WriteTable(l.opts.XLSXPath, table); err != nil {
			return sinkError(err)
		}
		l.progress.Logf("Data saved to XLSX file %s", l.opts.XLSXPath)
	}

	store, err := l.openStore(ctx)
	if err != nil {
		return sinkError(fmt.Errorf("failed to connect to database: %w", err))
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logrus.WithError(closeErr).Warn("Failed to close database")
		}
	}()
	l.progress.Log("SQL Connection initiated.")

	if err = store.ReplaceTable(ctx, l.opts.TableName, table); err != nil {
		return sinkError(err)
	}
	l.progress.Log("Data loaded to Database as table. Running the query")

	l.runQueries(ctx, store)
	return nil
}

func (l *Loader) runQueries(ctx context.Context, store adapters.TableStore) {
	for _, q := range l.opts.Queries {
		res, err := store.Query(ctx, q)
		if err != nil {
			logrus.WithError(err).WithField("query", q).Warn("Verification query failed")
			l.progress.Logf("Query failed: %s", q)
			continue
		}
		logrus.WithFields(logrus.Fields{"query": q, "columns": res.Columns, "rows": res.Rows}).Info("Verification query result")
		l.progress.Logf("Query: %s", q)
		for _, row := range res.Rows {
			l.progress.Logf("Result: %s", strings.Join(row, ", "))
		}
	}
}

func sinkError(err error) error {
	if errors.Is(err, domain.ErrSinkUnwritable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrSinkUnwritable, err)
}
