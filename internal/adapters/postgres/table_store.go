package postgres

import (
	"context"
	"fmt"
	"strings"

	"bankscap/internal/adapters"
	"bankscap/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TableStore writes the bank table into Postgres. Identifiers are folded to
// lower case so unquoted ad-hoc queries (SELECT AVG(MC_GBP_Billion) ...) work.
type TableStore struct {
	pool *pgxpool.Pool
}

func (s *TableStore) ReplaceTable(ctx context.Context, name string, table *domain.Table) error {
	columns, err := foldIdents(table.Columns())
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSinkUnwritable, err)
	}
	tableIdent := pgx.Identifier{strings.ToLower(name)}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", domain.ErrSinkUnwritable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `drop table if exists `+tableIdent.Sanitize()); err != nil {
		return fmt.Errorf("%w: failed to drop table %q: %v", domain.ErrSinkUnwritable, name, err)
	}
	if _, err = tx.Exec(ctx, createTableSQL(tableIdent, columns)); err != nil {
		return fmt.Errorf("%w: failed to create table %q: %v", domain.ErrSinkUnwritable, name, err)
	}

	rows := make([][]any, 0, table.Len())
	for _, row := range table.Rows() {
		values := make([]any, 0, len(columns))
		values = append(values, row.Name)
		for _, v := range row.Values {
			values = append(values, v)
		}
		rows = append(rows, values)
	}
	copied, err := tx.CopyFrom(ctx, tableIdent, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("%w: failed to copy rows into %q: %v", domain.ErrSinkUnwritable, name, err)
	}
	if copied != int64(len(rows)) {
		return fmt.Errorf("%w: copied %d of %d rows into %q", domain.ErrSinkUnwritable, copied, len(rows), name)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit table %q: %v", domain.ErrSinkUnwritable, name, err)
	}
	return nil
}

func (s *TableStore) Query(ctx context.Context, query string) (domain.QueryResult, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	res := domain.QueryResult{Columns: make([]string, len(fields))}
	for i, f := range fields {
		res.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return domain.QueryResult{}, fmt.Errorf("failed to read row: %w", err)
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

func (s *TableStore) Close() error {
	s.pool.Close()
	return nil
}

func foldIdents(columns []string) ([]string, error) {
	out := make([]string, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for i, c := range columns {
		folded := strings.ToLower(c)
		if _, ok := seen[folded]; ok {
			return nil, fmt.Errorf("column %q collides with another column once lower-cased", c)
		}
		seen[folded] = struct{}{}
		out[i] = folded
	}
	return out, nil
}

func createTableSQL(table pgx.Identifier, columns []string) string {
	defs := make([]string, len(columns))
	defs[0] = pgx.Identifier{columns[0]}.Sanitize() + " text not null"
	for i, c := range columns[1:] {
		defs[i+1] = pgx.Identifier{c}.Sanitize() + " double precision not null"
	}
	return fmt.Sprintf("create table %s (%s)", table.Sanitize(), strings.Join(defs, ", "))
}

func NewTableStore(pool *pgxpool.Pool) *TableStore {
	return &TableStore{pool: pool}
}
