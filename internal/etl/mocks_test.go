package etl

import (
	"context"
	"io"
	"strings"
	"time"

	"bankscap/internal/adapters"
	"bankscap/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- Testify mocks ---

type MockDocumentSource struct{ mock.Mock }

func (m *MockDocumentSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	args := m.Called(ctx)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

type MockRateClient struct{ mock.Mock }

func (m *MockRateClient) GetExchangeRates(ctx context.Context, base string) (map[string]float64, error) {
	args := m.Called(ctx, base)
	rates, _ := args.Get(0).(map[string]float64)
	return rates, args.Error(1)
}

type MockRateCache struct{ mock.Mock }

func (m *MockRateCache) Get(base string) (map[string]float64, bool) {
	args := m.Called(base)
	rates, _ := args.Get(0).(map[string]float64)
	return rates, args.Bool(1)
}

func (m *MockRateCache) Set(base string, rates map[string]float64, ttl time.Duration) {
	m.Called(base, rates, ttl)
}

type MockRateProvider struct{ mock.Mock }

func (m *MockRateProvider) Rates(ctx context.Context) (domain.ExchangeRateMap, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(domain.ExchangeRateMap)
	return r, args.Error(1)
}

type MockFileSink struct{ mock.Mock }

func (m *MockFileSink) WriteTable(path string, table *domain.Table) error {
	args := m.Called(path, table)
	return args.Error(0)
}

type MockTableStore struct{ mock.Mock }

func (m *MockTableStore) ReplaceTable(ctx context.Context, name string, table *domain.Table) error {
	args := m.Called(ctx, name, table)
	return args.Error(0)
}

func (m *MockTableStore) Query(ctx context.Context, query string) (domain.QueryResult, error) {
	args := m.Called(ctx, query)
	r, _ := args.Get(0).(domain.QueryResult)
	return r, args.Error(1)
}

func (m *MockTableStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockExtractor struct{ mock.Mock }

func (m *MockExtractor) Extract(ctx context.Context, columns []string) (*domain.Table, error) {
	args := m.Called(ctx, columns)
	t, _ := args.Get(0).(*domain.Table)
	return t, args.Error(1)
}

type MockTransformer struct{ mock.Mock }

func (m *MockTransformer) Transform(table *domain.Table, rates domain.ExchangeRateMap, targets []string) (*domain.Table, error) {
	args := m.Called(table, rates, targets)
	t, _ := args.Get(0).(*domain.Table)
	return t, args.Error(1)
}

type MockLoader struct{ mock.Mock }

func (m *MockLoader) Load(ctx context.Context, table *domain.Table) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

// --- fixtures ---

type stringSource string

func (s stringSource) Fetch(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(s))), nil
}

func storeOpener(store adapters.TableStore) adapters.StoreOpener {
	return func(context.Context) (adapters.TableStore, error) { return store, nil }
}

func mustRates(rates map[string]float64) domain.ExchangeRateMap {
	m, err := domain.NewExchangeRateMap(rates)
	if err != nil {
		panic(err)
	}
	return m
}

func mustTable(names []string, usd []float64) *domain.Table {
	t, err := domain.NewTable("Name", "MC_USD_Billion")
	if err != nil {
		panic(err)
	}
	for i, n := range names {
		if err := t.AddRow(domain.Row{Name: n, Values: []float64{usd[i]}}); err != nil {
			panic(err)
		}
	}
	return t
}

// bankPage mimics the archived "largest banks" page: a rank cell, a name cell
// with a flag link and a name link, and a market cap cell.
const bankPage = `<html><body>
<table class="wikitable">
<tbody>
<tr><th>Rank</th><th>Bank name</th><th>Market cap (US$ billion)</th></tr>
<tr><td>1</td><td><span class="flagicon"><a href="/wiki/United_States"><img alt="US"></a></span> <a href="/wiki/JPMorgan_Chase">JPMorgan Chase</a></td><td>432.92
</td></tr>
<tr><td>2</td><td><span class="flagicon"><a href="/wiki/United_States"><img alt="US"></a></span> <a href="/wiki/Bank_of_America">Bank of America</a></td><td>231.52
</td></tr>
<tr><td>3</td><td><a href="/wiki/ICBC">Industrial and Commercial Bank of China</a></td><td>1,194.56
</td></tr>
</tbody>
</table>
<table><tbody><tr><td>99</td><td>Other table</td><td>1.00</td></tr></tbody></table>
</body></html>`
