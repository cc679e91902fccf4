package adapters

import (
	"context"
	"io"
	"time"

	"bankscap/internal/domain"
)

// DocumentSource yields the raw markup holding the bank table.
type DocumentSource interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

type RateClient interface {
	GetExchangeRates(ctx context.Context, base string) (map[string]float64, error)
}

type RateCache interface {
	Get(base string) (map[string]float64, bool)
	Set(base string, rates map[string]float64, ttl time.Duration)
}

// TableStore is the relational sink. ReplaceTable drops any table of the same
// name and recreates it from the table's schema.
type TableStore interface {
	ReplaceTable(ctx context.Context, name string, table *domain.Table) error
	Query(ctx context.Context, query string) (domain.QueryResult, error)
	Close() error
}

// FileSink is the flat file sink.
type FileSink interface {
	WriteTable(path string, table *domain.Table) error
}

// StoreOpener connects to the relational sink on demand, so nothing is
// created before the load stage is reached.
type StoreOpener func(ctx context.Context) (TableStore, error)
