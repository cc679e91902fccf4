package etl

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"bankscap/internal/adapters"
	"bankscap/internal/domain"

	"github.com/sirupsen/logrus"
)

// RateProvider supplies the exchange rates for one run.
type RateProvider interface {
	Rates(ctx context.Context) (domain.ExchangeRateMap, error)
}

// LoadRateTable reads a "Currency,Rate" CSV side file.
func LoadRateTable(path string) (domain.ExchangeRateMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ExchangeRateMap{}, fmt.Errorf("%w: failed to open rate file: %v", domain.ErrConfiguration, err)
	}
	defer f.Close()
	return ParseRateTable(f)
}

func ParseRateTable(r io.Reader) (domain.ExchangeRateMap, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.ExchangeRateMap{}, fmt.Errorf("%w: rate file is empty", domain.ErrConfiguration)
	}
	if err != nil {
		return domain.ExchangeRateMap{}, fmt.Errorf("%w: failed to read rate file header: %v", domain.ErrConfiguration, err)
	}
	if len(header) != 2 ||
		!strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(header[0], "\ufeff")), "Currency") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "Rate") {
		return domain.ExchangeRateMap{}, fmt.Errorf("%w: rate file header must be Currency,Rate, got %v", domain.ErrConfiguration, header)
	}

	rates := make(map[string]float64)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.ExchangeRateMap{}, fmt.Errorf("%w: failed to read rate file: %v", domain.ErrConfiguration, err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) != 2 {
			return domain.ExchangeRateMap{}, fmt.Errorf("%w: line %d has %d fields, want 2", domain.ErrConfiguration, line, len(record))
		}

		code := domain.NormalizeCode(record[0])
		if _, dup := rates[code]; dup {
			return domain.ExchangeRateMap{}, fmt.Errorf("%w: line %d repeats currency %q", domain.ErrConfiguration, line, code)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return domain.ExchangeRateMap{}, fmt.Errorf("%w: line %d: rate %q is not a number", domain.ErrConfiguration, line, record[1])
		}
		rates[code] = value
	}

	if len(rates) == 0 {
		return domain.ExchangeRateMap{}, fmt.Errorf("%w: rate file has no rates", domain.ErrConfiguration)
	}
	return domain.NewExchangeRateMap(rates)
}

// FileRates re-reads the side file on every run.
type FileRates struct {
	path string
}

func NewFileRates(path string) *FileRates { return &FileRates{path: path} }

func (f *FileRates) Rates(_ context.Context) (domain.ExchangeRateMap, error) {
	return LoadRateTable(f.path)
}

// RemoteRates fetches rates for the base currency from an HTTP API, keeping
// the answer in cache for ttl.
type RemoteRates struct {
	client  adapters.RateClient
	cache   adapters.RateCache
	base    string
	targets []string
	ttl     time.Duration
}

func NewRemoteRates(client adapters.RateClient, cache adapters.RateCache, base string, targets []string, ttl time.Duration) *RemoteRates {
	return &RemoteRates{
		client:  client,
		cache:   cache,
		base:    domain.NormalizeCode(base),
		targets: normalizeTargets(targets),
		ttl:     ttl,
	}
}

func (r *RemoteRates) Rates(ctx context.Context) (domain.ExchangeRateMap, error) {
	all, ok := r.cache.Get(r.base)
	if !ok {
		fetched, err := r.client.GetExchangeRates(ctx, r.base)
		if err != nil {
			return domain.ExchangeRateMap{}, fmt.Errorf("%w: failed to fetch rates for %q: %v", domain.ErrConfiguration, r.base, err)
		}
		r.cache.Set(r.base, fetched, r.ttl)
		all = fetched
	} else {
		logrus.WithField("base", r.base).Debug("Using cached exchange rates")
	}

	selected := make(map[string]float64, len(r.targets))
	for _, code := range r.targets {
		if v, found := all[code]; found {
			selected[code] = v
		}
	}
	return domain.NewExchangeRateMap(selected)
}
