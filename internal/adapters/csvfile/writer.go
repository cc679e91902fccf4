package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"bankscap/internal/domain"

	"github.com/shopspring/decimal"
)

const decimalPlaces = 2

// Writer replaces the target file atomically: rows go to a temp file in the
// same directory which is renamed over the destination once complete.
type Writer struct{}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) WriteTable(path string, table *domain.Table) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file for %q: %v", domain.ErrSinkUnwritable, path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	cw := csv.NewWriter(tmp)
	if err = cw.Write(table.Columns()); err != nil {
		return fmt.Errorf("%w: failed to write header to %q: %v", domain.ErrSinkUnwritable, path, err)
	}
	record := make([]string, len(table.Columns()))
	for _, row := range table.Rows() {
		record[0] = row.Name
		for j, v := range row.Values {
			record[j+1] = FormatValue(v)
		}
		if err = cw.Write(record); err != nil {
			return fmt.Errorf("%w: failed to write row %q to %q: %v", domain.ErrSinkUnwritable, row.Name, path, err)
		}
	}
	cw.Flush()
	if err = cw.Error(); err != nil {
		return fmt.Errorf("%w: failed to flush %q: %v", domain.ErrSinkUnwritable, path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: failed to sync %q: %v", domain.ErrSinkUnwritable, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %q: %v", domain.ErrSinkUnwritable, path, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: failed to set permissions on %q: %v", domain.ErrSinkUnwritable, path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: failed to move output into %q: %v", domain.ErrSinkUnwritable, path, err)
	}
	return nil
}

// FormatValue renders a numeric cell with two decimal places.
func FormatValue(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(decimalPlaces)
}
