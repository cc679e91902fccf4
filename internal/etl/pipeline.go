package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bankscap/internal/domain"
	"bankscap/internal/progress"

	"github.com/sirupsen/logrus"
)

var ErrAlreadyRan = errors.New("pipeline already ran")

type TableExtractor interface {
	Extract(ctx context.Context, columns []string) (*domain.Table, error)
}

type TableTransformer interface {
	Transform(table *domain.Table, rates domain.ExchangeRateMap, targets []string) (*domain.Table, error)
}

type TableLoader interface {
	Load(ctx context.Context, table *domain.Table) error
}

type PipelineOptions struct {
	Columns []string
	Targets []string
}

// Pipeline runs rates -> extract -> transform -> load once. Any failure moves
// it to FAILED and aborts the remaining stages.
type Pipeline struct {
	rates       RateProvider
	extractor   TableExtractor
	transformer TableTransformer
	loader      TableLoader
	opts        PipelineOptions
	progress    *progress.Log

	state domain.State
	table *domain.Table
}

func NewPipeline(rates RateProvider, extractor TableExtractor, transformer TableTransformer, loader TableLoader, opts PipelineOptions, progressLog *progress.Log) *Pipeline {
	return &Pipeline{
		rates:       rates,
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		opts:        opts,
		progress:    progressLog,
		state:       domain.StateInit,
	}
}

func (p *Pipeline) State() domain.State { return p.state }

// Table is the final table once the pipeline reached TRANSFORMED.
func (p *Pipeline) Table() *domain.Table { return p.table }

func (p *Pipeline) Run(ctx context.Context) (err error) {
	if p.state != domain.StateInit {
		return fmt.Errorf("%w: state %s", ErrAlreadyRan, p.state)
	}
	defer func() {
		if err != nil {
			p.fail(err)
		}
		runsTotal.WithLabelValues(string(p.state)).Inc()
	}()

	var rates domain.ExchangeRateMap
	if err = p.stage(domain.StageRates, func() (stageErr error) {
		rates, stageErr = p.rates.Rates(ctx)
		return stageErr
	}); err != nil {
		return err
	}
	p.progress.Log("Preliminaries complete. Initiating ETL process")

	var table *domain.Table
	if err = p.stage(domain.StageExtract, func() (stageErr error) {
		table, stageErr = p.extractor.Extract(ctx, p.opts.Columns)
		return stageErr
	}); err != nil {
		return err
	}
	p.state = domain.StateExtracted
	p.table = table
	p.progress.Log("Data extraction complete. Initiating Transformation process")

	if err = p.stage(domain.StageTransform, func() (stageErr error) {
		table, stageErr = p.transformer.Transform(table, rates, p.opts.Targets)
		return stageErr
	}); err != nil {
		return err
	}
	p.state = domain.StateTransformed
	p.table = table
	p.progress.Log("Data transformation complete. Initiating loading process")

	if err = p.stage(domain.StageLoad, func() error {
		return p.loader.Load(ctx, table)
	}); err != nil {
		return err
	}
	p.state = domain.StateLoaded

	p.state = domain.StateDone
	p.progress.Log("Process Complete.")
	logrus.WithField("rows", table.Len()).Info("✅ ETL process complete")
	return nil
}

func (p *Pipeline) stage(stage domain.Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	stageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	if err != nil {
		return &domain.StageError{Stage: stage, Err: err}
	}
	return nil
}

func (p *Pipeline) fail(err error) {
	failedIn := p.state
	p.state = domain.StateFailed
	p.progress.Logf("ETL process failed in state %s: %v", failedIn, err)
	logrus.WithError(err).WithField("state", failedIn).Error("ETL process failed")
}
