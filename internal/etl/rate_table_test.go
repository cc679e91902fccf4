package etl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bankscap/internal/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseRateTable_Valid(t *testing.T) {
	rates, err := ParseRateTable(strings.NewReader("Currency,Rate\nEUR,0.93\ngbp, 0.8\nINR,82.95\n"))
	require.NoError(t, err)

	require.Equal(t, []string{"EUR", "GBP", "INR"}, rates.Codes())
	gbp, err := rates.RateFor("GBP")
	require.NoError(t, err)
	require.Equal(t, 0.8, gbp)
}

func TestParseRateTable_HeaderWithBOMAndCase(t *testing.T) {
	rates, err := ParseRateTable(strings.NewReader("\ufeffcurrency,RATE\nEUR,0.93\n"))
	require.NoError(t, err)
	require.Equal(t, 1, rates.Len())
}

func TestParseRateTable_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"header only":   "Currency,Rate\n",
		"bad header":    "Code,Value\nEUR,0.93\n",
		"extra field":   "Currency,Rate\nEUR,0.93,x\n",
		"non numeric":   "Currency,Rate\nEUR,abc\n",
		"zero rate":     "Currency,Rate\nEUR,0\n",
		"negative rate": "Currency,Rate\nEUR,-1.5\n",
		"duplicate":     "Currency,Rate\nEUR,0.93\neur,0.94\n",
		"bad code":      "Currency,Rate\nEURO,0.93\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRateTable(strings.NewReader(content))
			require.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestLoadRateTable_MissingFile(t *testing.T) {
	_, err := LoadRateTable(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestFileRates_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exchange_rate.csv")
	require.NoError(t, os.WriteFile(path, []byte("Currency,Rate\nGBP,0.8\n"), 0o644))

	rates, err := NewFileRates(path).Rates(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"GBP"}, rates.Codes())
}

func TestRemoteRates_CacheMiss_FetchesAndStores(t *testing.T) {
	client := new(MockRateClient)
	cache := new(MockRateCache)
	fetched := map[string]float64{"EUR": 0.93, "GBP": 0.8, "JPY": 150}

	cache.On("Get", "USD").Return(nil, false).Once()
	client.On("GetExchangeRates", mock.Anything, "USD").Return(fetched, nil).Once()
	cache.On("Set", "USD", fetched, 10*time.Minute).Once()

	rates, err := NewRemoteRates(client, cache, "usd", []string{"gbp", "EUR"}, 10*time.Minute).Rates(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"EUR", "GBP"}, rates.Codes())

	client.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRemoteRates_CacheHit_SkipsClient(t *testing.T) {
	client := new(MockRateClient)
	cache := new(MockRateCache)
	cache.On("Get", "USD").Return(map[string]float64{"EUR": 0.93}, true).Once()

	rates, err := NewRemoteRates(client, cache, "USD", []string{"EUR"}, time.Minute).Rates(context.Background())
	require.NoError(t, err)
	eur, err := rates.RateFor("EUR")
	require.NoError(t, err)
	require.Equal(t, 0.93, eur)

	client.AssertNotCalled(t, "GetExchangeRates", mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestRemoteRates_ClientError(t *testing.T) {
	client := new(MockRateClient)
	cache := new(MockRateCache)
	cache.On("Get", "USD").Return(nil, false).Once()
	client.On("GetExchangeRates", mock.Anything, "USD").Return(nil, errors.New("boom")).Once()

	_, err := NewRemoteRates(client, cache, "USD", []string{"EUR"}, time.Minute).Rates(context.Background())
	require.ErrorIs(t, err, domain.ErrConfiguration)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoteRates_NoTargetAvailable(t *testing.T) {
	client := new(MockRateClient)
	cache := new(MockRateCache)
	cache.On("Get", "USD").Return(map[string]float64{"JPY": 150}, true).Once()

	_, err := NewRemoteRates(client, cache, "USD", []string{"EUR"}, time.Minute).Rates(context.Background())
	require.ErrorIs(t, err, domain.ErrConfiguration)
}
