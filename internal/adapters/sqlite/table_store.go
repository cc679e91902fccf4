package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bankscap/internal/adapters"
	"bankscap/internal/domain"
)

type TableStore struct {
	db *sql.DB
}

func NewTableStore(db *sql.DB) *TableStore {
	return &TableStore{db: db}
}

// ReplaceTable drops and recreates name inside one transaction, so a failed
// load leaves the previous table in place.
func (s *TableStore) ReplaceTable(ctx context.Context, name string, table *domain.Table) error {
	columns := table.Columns()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", domain.ErrSinkUnwritable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `drop table if exists `+quoteIdent(name)); err != nil {
		return fmt.Errorf("%w: failed to drop table %q: %v", domain.ErrSinkUnwritable, name, err)
	}
	if _, err = tx.ExecContext(ctx, createTableSQL(name, columns)); err != nil {
		return fmt.Errorf("%w: failed to create table %q: %v", domain.ErrSinkUnwritable, name, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(name, columns))
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert into %q: %v", domain.ErrSinkUnwritable, name, err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for _, row := range table.Rows() {
		args[0] = row.Name
		for j, v := range row.Values {
			args[j+1] = v
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("%w: failed to insert %q into %q: %v", domain.ErrSinkUnwritable, row.Name, name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit table %q: %v", domain.ErrSinkUnwritable, name, err)
	}
	return nil
}

func (s *TableStore) Query(ctx context.Context, query string) (domain.QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("failed to read columns: %w", err)
	}

	res := domain.QueryResult{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return domain.QueryResult{}, fmt.Errorf("failed to scan row: %w", err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = adapters.RenderValue(v)
		}
		res.Rows = append(res.Rows, cells)
	}
	if err = rows.Err(); err != nil {
		return domain.QueryResult{}, fmt.Errorf("error iterating rows: %w", err)
	}
	return res, nil
}

func (s *TableStore) Close() error { return s.db.Close() }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTableSQL(name string, columns []string) string {
	defs := make([]string, len(columns))
	defs[0] = quoteIdent(columns[0]) + " text not null"
	for i, c := range columns[1:] {
		defs[i+1] = quoteIdent(c) + " real not null"
	}
	return fmt.Sprintf("create table %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
}

func insertSQL(name string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("insert into %s (%s) values (%s)", quoteIdent(name), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}
