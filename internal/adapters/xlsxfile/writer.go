package xlsxfile

import (
	"fmt"
	"os"
	"path/filepath"

	"bankscap/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "Sheet1"
	// built-in number format "0.00"
	twoDecimalsFmt = 2
)

// Writer exports the table as a single-sheet workbook. Like the CSV writer
// it renames a finished temp file over the destination.
type Writer struct{}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) WriteTable(path string, table *domain.Table) (err error) {
	f := excelize.NewFile()
	defer f.Close()

	if err = fill(f, table); err != nil {
		return fmt.Errorf("%w: failed to build workbook for %q: %v", domain.ErrSinkUnwritable, path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
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

	if err = f.Write(tmp); err != nil {
		return fmt.Errorf("%w: failed to write workbook %q: %v", domain.ErrSinkUnwritable, path, err)
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

func fill(f *excelize.File, table *domain.Table) error {
	columns := table.Columns()
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err = f.SetCellStyle(sheetName, "A1", lastHeader, bold); err != nil {
		return err
	}

	record := make([]any, len(columns))
	for i, row := range table.Rows() {
		record[0] = row.Name
		for j, v := range row.Values {
			record[j+1] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err = f.SetSheetRow(sheetName, cell, &record); err != nil {
			return err
		}
	}

	if table.Len() > 0 {
		numbers, err := f.NewStyle(&excelize.Style{NumFmt: twoDecimalsFmt})
		if err != nil {
			return err
		}
		first, _ := excelize.CoordinatesToCellName(2, 2)
		last, _ := excelize.CoordinatesToCellName(len(columns), table.Len()+1)
		if err = f.SetCellStyle(sheetName, first, last, numbers); err != nil {
			return err
		}
	}

	nameCol, _ := excelize.ColumnNumberToName(1)
	return f.SetColWidth(sheetName, nameCol, nameCol, 40)
}
