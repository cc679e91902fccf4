package domain

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strings"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// ExchangeRateMap holds units of target currency per unit of base currency.
type ExchangeRateMap struct {
	rates map[string]float64 // read only copy
}

func NewExchangeRateMap(rates map[string]float64) (ExchangeRateMap, error) {
	if len(rates) == 0 {
		return ExchangeRateMap{}, fmt.Errorf("%w: no exchange rates", ErrConfiguration)
	}
	cloned := make(map[string]float64, len(rates))
	for code, value := range rates {
		normalized := NormalizeCode(code)
		if !currencyCodeRe.MatchString(normalized) {
			return ExchangeRateMap{}, fmt.Errorf("%w: invalid currency code %q", ErrConfiguration, code)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
			return ExchangeRateMap{}, fmt.Errorf("%w: rate for %q must be positive, got %v", ErrConfiguration, normalized, value)
		}
		if _, dup := cloned[normalized]; dup {
			return ExchangeRateMap{}, fmt.Errorf("%w: duplicate rate for %q", ErrConfiguration, normalized)
		}
		cloned[normalized] = value
	}
	return ExchangeRateMap{rates: cloned}, nil
}

// RateFor never falls back to 1.0 for unknown codes.
func (m ExchangeRateMap) RateFor(code string) (float64, error) {
	v, ok := m.rates[NormalizeCode(code)]
	if !ok {
		return 0, fmt.Errorf("%w: no rate configured for %q", ErrRateNotFound, code)
	}
	return v, nil
}

func (m ExchangeRateMap) Codes() []string {
	codes := slices.Collect(maps.Keys(m.rates))
	slices.Sort(codes)
	return codes
}

func (m ExchangeRateMap) Len() int { return len(m.rates) }

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
