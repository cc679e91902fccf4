package etl

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bankscap/internal/adapters"
	"bankscap/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ExtractOptions struct {
	TableSelector string
	NameCell      int
	ValueCell     int
	DecimalPlaces int
	// MaxRows stops extraction after that many accepted rows; 0 reads them all.
	MaxRows int
}

// Extractor reads the first table matching TableSelector and maps every data
// row to (name, base value). Rows that cannot be parsed are dropped with a
// warning; an empty result is an error.
type Extractor struct {
	source  adapters.DocumentSource
	opts    ExtractOptions
	valueRe *regexp.Regexp
}

func NewExtractor(source adapters.DocumentSource, opts ExtractOptions) *Extractor {
	if opts.TableSelector == "" {
		opts.TableSelector = "tbody"
	}
	if opts.DecimalPlaces < 0 {
		opts.DecimalPlaces = 0
	}
	pattern := `^\d+$`
	if opts.DecimalPlaces > 0 {
		pattern = fmt.Sprintf(`^\d+(\.\d{1,%d})?$`, opts.DecimalPlaces)
	}
	return &Extractor{
		source:  source,
		opts:    opts,
		valueRe: regexp.MustCompile(pattern),
	}
}

func (e *Extractor) Extract(ctx context.Context, columns []string) (*domain.Table, error) {
	if len(columns) != 2 {
		return nil, fmt.Errorf("%w: expected a name and a value column, got %v", domain.ErrConfiguration, columns)
	}
	table, err := domain.NewTable(columns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	body, err := e.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse document: %v", domain.ErrSourceUnavailable, err)
	}

	target := doc.Find(e.opts.TableSelector).First()
	if target.Length() == 0 {
		return nil, fmt.Errorf("%w: no %q element in document", domain.ErrSourceUnavailable, e.opts.TableSelector)
	}

	dropped := 0
	e.ownRows(target).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return true
		}

		row, parseErr := e.parseRow(cells)
		if parseErr == nil {
			parseErr = table.AddRow(row)
		}
		if parseErr != nil {
			dropped++
			rowsDropped.Inc()
			logrus.WithError(parseErr).WithField("row", i).Warn("Dropping unparseable row")
			return true
		}
		return e.opts.MaxRows <= 0 || table.Len() < e.opts.MaxRows
	})

	rowsExtracted.Add(float64(table.Len()))
	if table.Len() == 0 {
		return nil, fmt.Errorf("%w: %d rows dropped, none usable", domain.ErrExtractionEmpty, dropped)
	}
	logrus.WithFields(logrus.Fields{"rows": table.Len(), "dropped": dropped}).Info("Extraction finished")
	return table, nil
}

// ownRows skips rows of tables nested inside the target's cells.
func (e *Extractor) ownRows(target *goquery.Selection) *goquery.Selection {
	rows := target.Find("tr")
	owner := target.Closest("table")
	if owner.Length() == 0 {
		return rows
	}
	return rows.FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(owner)
	})
}

func (e *Extractor) parseRow(cells *goquery.Selection) (domain.Row, error) {
	need := max(e.opts.NameCell, e.opts.ValueCell) + 1
	if cells.Length() < need {
		return domain.Row{}, fmt.Errorf("row has %d cells, need %d", cells.Length(), need)
	}

	name := cellName(cells.Eq(e.opts.NameCell))
	if name == "" {
		return domain.Row{}, fmt.Errorf("empty name cell")
	}

	raw := cells.Eq(e.opts.ValueCell).Text()
	value, err := e.parseValue(raw)
	if err != nil {
		return domain.Row{}, fmt.Errorf("%q: %w", name, err)
	}
	return domain.Row{Name: name, Values: []float64{value}}, nil
}

// cellName prefers the last link text: the first link of a name cell is
// usually a flag icon.
func cellName(cell *goquery.Selection) string {
	if links := cell.Find("a"); links.Length() > 0 {
		if name := collapseSpace(links.Last().Text()); name != "" {
			return name
		}
	}
	return collapseSpace(cell.Text())
}

// parseValue accepts "1,234.56\n" style cells: first line only, thousands
// separators dropped.
func (e *Extractor) parseValue(raw string) (float64, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(raw), "\n")
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || r == '\u00a0' || r == '\t' || r == '\r' {
			return -1
		}
		return r
	}, line)

	if !e.valueRe.MatchString(cleaned) {
		return 0, fmt.Errorf("value %q is not a number with at most %d decimal places", strings.TrimSpace(raw), e.opts.DecimalPlaces)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("value %q: %w", cleaned, err)
	}
	return d.InexactFloat64(), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
