package etl

import (
	"fmt"
	"strings"

	"bankscap/internal/domain"

	"github.com/shopspring/decimal"
)

const convertedPlaces = 2

// Transformer appends one converted column per target currency.
type Transformer struct {
	baseCurrency string
}

func NewTransformer(baseCurrency string) *Transformer {
	return &Transformer{baseCurrency: domain.NormalizeCode(baseCurrency)}
}

// Transform looks up every rate and computes every column before touching the
// table, so an unknown currency leaves it unmodified. Existing converted
// columns are recomputed from the base column, never from themselves.
func (t *Transformer) Transform(table *domain.Table, rates domain.ExchangeRateMap, targets []string) (*domain.Table, error) {
	type column struct {
		name   string
		values []float64
	}

	codes := normalizeTargets(targets)
	pending := make([]column, 0, len(codes))
	for _, code := range codes {
		if code == t.baseCurrency {
			return nil, fmt.Errorf("%w: target %q is the base currency", domain.ErrConfiguration, code)
		}
		rate, err := rates.RateFor(code)
		if err != nil {
			return nil, err
		}

		name := ColumnName(table.BaseColumn(), t.baseCurrency, code)
		if name == table.NameColumn() {
			return nil, fmt.Errorf("%w: column for %q would replace the name column", domain.ErrConfiguration, code)
		}
		values := make([]float64, table.Len())
		for i := range values {
			values[i] = Convert(table.BaseValue(i), rate)
		}
		pending = append(pending, column{name: name, values: values})
	}

	for _, c := range pending {
		if err := table.SetColumn(c.name, c.values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// Convert multiplies in decimal arithmetic and rounds half away from zero to
// two places: 100.555 x 1.0 gives 100.56.
func Convert(base, rate float64) float64 {
	return decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(rate)).
		Round(convertedPlaces).
		InexactFloat64()
}

// ColumnName swaps the base currency token of baseColumn for code
// (MC_USD_Billion -> MC_GBP_Billion), or suffixes _<code> when there is none.
func ColumnName(baseColumn, baseCurrency, code string) string {
	parts := strings.Split(baseColumn, "_")
	replaced := false
	for i, p := range parts {
		if baseCurrency != "" && strings.EqualFold(p, baseCurrency) {
			parts[i] = code
			replaced = true
		}
	}
	if !replaced {
		return baseColumn + "_" + code
	}
	return strings.Join(parts, "_")
}

// normalizeTargets upper-cases codes and drops repeats, keeping first-seen order.
func normalizeTargets(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		code := domain.NormalizeCode(t)
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
