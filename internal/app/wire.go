package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bankscap/internal/adapters"
	"bankscap/internal/adapters/cache"
	"bankscap/internal/adapters/csvfile"
	"bankscap/internal/adapters/filesource"
	"bankscap/internal/adapters/httpclient"
	"bankscap/internal/adapters/postgres"
	"bankscap/internal/adapters/sqlite"
	"bankscap/internal/adapters/xlsxfile"
	"bankscap/internal/config"
	"bankscap/internal/etl"
	"bankscap/internal/platform/db"
	"bankscap/internal/progress"

	"github.com/sirupsen/logrus"
)

const (
	rateCacheMaxItems = 64
	connectTimeout    = 10 * time.Second
)

// components holds what every pipeline run shares.
type components struct {
	rates       etl.RateProvider
	extractor   *etl.Extractor
	transformer *etl.Transformer
	loader      *etl.Loader
	opts        etl.PipelineOptions
	progress    *progress.Log
	closers     []func()
}

func newComponents(appCfg *config.AppConfig, progressLog *progress.Log) (*components, error) {
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	c := &components{
		extractor: etl.NewExtractor(newDocumentSource(baseHTTPClient, appCfg.Extract.Source), etl.ExtractOptions{
			TableSelector: appCfg.Extract.TableSelector,
			NameCell:      appCfg.Extract.NameCell,
			ValueCell:     appCfg.Extract.ValueCell,
			DecimalPlaces: appCfg.Extract.DecimalPlaces,
			MaxRows:       appCfg.Extract.MaxRows,
		}),
		transformer: etl.NewTransformer(appCfg.Rates.BaseCurrency),
		opts: etl.PipelineOptions{
			Columns: appCfg.Extract.Columns,
			Targets: appCfg.Rates.Targets,
		},
		progress: progressLog,
	}

	rates, err := c.newRateProvider(baseHTTPClient, appCfg.Rates)
	if err != nil {
		c.close()
		return nil, err
	}
	c.rates = rates

	c.loader = etl.NewLoader(csvfile.NewWriter(), newStoreOpener(appCfg.Load.DB), etl.LoadOptions{
		CSVPath:   appCfg.Load.CSVPath,
		XLSXPath:  appCfg.Load.XLSXPath,
		TableName: appCfg.Load.TableName,
		Queries:   appCfg.Load.Queries,
	}, progressLog).WithWorkbook(xlsxfile.NewWriter())
	return c, nil
}

func (c *components) newPipeline() *etl.Pipeline {
	return etl.NewPipeline(c.rates, c.extractor, c.transformer, c.loader, c.opts, c.progress)
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// newDocumentSource fetches http(s) sources over the network and treats
// anything else as a local file path.
func newDocumentSource(httpClient *http.Client, source string) adapters.DocumentSource {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return httpclient.NewDocumentClient(httpClient, source)
	}
	return filesource.New(source)
}

func (c *components) newRateProvider(httpClient *http.Client, cfg config.Rates) (etl.RateProvider, error) {
	if cfg.Source != config.RatesFromAPI {
		return etl.NewFileRates(cfg.Path), nil
	}

	rateCache, err := cache.NewRateCache(rateCacheMaxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate cache: %w", err)
	}
	c.closers = append(c.closers, rateCache.Close)

	rateClient := httpclient.NewExchangeRateClient(
		httpClient,
		fmt.Sprintf("%s/%s/latest", strings.TrimSuffix(cfg.API.BaseURL, "/"), cfg.API.APIKey),
	)
	ttl := time.Duration(cfg.API.CacheTTLSeconds) * time.Second
	return etl.NewRemoteRates(rateClient, rateCache, cfg.BaseCurrency, cfg.Targets, ttl), nil
}

// newStoreOpener defers the connection until the load stage, so failed runs
// never create the database.
func newStoreOpener(cfg config.DbServer) adapters.StoreOpener {
	return func(ctx context.Context) (adapters.TableStore, error) {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		switch cfg.Driver {
		case config.DriverPostgres:
			pool, err := db.CreatePoolAndPing(connectCtx, cfg)
			if err != nil {
				return nil, err
			}
			logrus.Info("✅ Postgres connection successful")
			return postgres.NewTableStore(pool), nil
		default:
			conn, err := db.OpenSQLiteAndPing(connectCtx, cfg.Path)
			if err != nil {
				return nil, err
			}
			logrus.WithField("path", cfg.Path).Info("✅ SQLite connection successful")
			return sqlite.NewTableStore(conn), nil
		}
	}
}
