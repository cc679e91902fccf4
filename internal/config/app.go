package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"bankscap/internal/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Progress struct {
	Path string `mapstructure:"path"`
}

type Extract struct {
	Source        string   `mapstructure:"source"`
	Columns       []string `mapstructure:"columns"`
	TableSelector string   `mapstructure:"table_selector"`
	NameCell      int      `mapstructure:"name_cell"`
	ValueCell     int      `mapstructure:"value_cell"`
	DecimalPlaces int      `mapstructure:"decimal_places"`
	MaxRows       int      `mapstructure:"max_rows"`
}

type RatesAPI struct {
	BaseURL         string `mapstructure:"base_url"`
	APIKey          string `mapstructure:"api_key"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

type Rates struct {
	Source       string   `mapstructure:"source"`
	Path         string   `mapstructure:"path"`
	BaseCurrency string   `mapstructure:"base_currency"`
	Targets      []string `mapstructure:"targets"`
	API          RatesAPI `mapstructure:"api"`
}

type DbServer struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type Load struct {
	CSVPath   string   `mapstructure:"csv_path"`
	XLSXPath  string   `mapstructure:"xlsx_path"`
	DB        DbServer `mapstructure:"db"`
	TableName string   `mapstructure:"table_name"`
	Queries   []string `mapstructure:"queries"`
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type Scheduler struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds"`
}

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type AppConfig struct {
	Logging    Logging    `mapstructure:"logging"`
	Progress   Progress   `mapstructure:"progress"`
	Extract    Extract    `mapstructure:"extract"`
	Rates      Rates      `mapstructure:"rates"`
	Load       Load       `mapstructure:"load"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
	HTTPServer HTTPServer `mapstructure:"http_server"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	RatesFromFile = "file"
	RatesFromAPI  = "api"

	// MaxDecimalPlaces is the precision every sink writes.
	MaxDecimalPlaces = 2
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("progress.path", "code_log.txt")
	v.SetDefault("extract.columns", []string{"Name", "MC_USD_Billion"})
	v.SetDefault("extract.table_selector", "tbody")
	v.SetDefault("extract.name_cell", 1)
	v.SetDefault("extract.value_cell", 2)
	v.SetDefault("extract.decimal_places", 2)
	v.SetDefault("rates.source", RatesFromFile)
	v.SetDefault("rates.path", "exchange_rate.csv")
	v.SetDefault("rates.base_currency", "USD")
	v.SetDefault("rates.targets", []string{"GBP", "EUR", "INR"})
	v.SetDefault("rates.api.cache_ttl_seconds", 3600)
	v.SetDefault("load.csv_path", "Largest_banks_data.csv")
	v.SetDefault("load.db.driver", DriverSQLite)
	v.SetDefault("load.db.path", "Banks.db")
	v.SetDefault("load.db.max_conns", 4)
	v.SetDefault("load.table_name", "Largest_banks")
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("scheduler.interval_seconds", 3600)
	v.SetDefault("http_server.port", "8080")
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("progress.path", "PROGRESS_LOG_PATH")

	_ = v.BindEnv("extract.source", "EXTRACT_SOURCE")

	_ = v.BindEnv("rates.source", "RATES_SOURCE")
	_ = v.BindEnv("rates.path", "RATES_PATH")
	_ = v.BindEnv("rates.api.base_url", "RATES_API_BASE_URL")
	_ = v.BindEnv("rates.api.api_key", "RATES_API_KEY")

	_ = v.BindEnv("load.csv_path", "LOAD_CSV_PATH")
	_ = v.BindEnv("load.xlsx_path", "LOAD_XLSX_PATH")
	_ = v.BindEnv("load.db.driver", "DB_DRIVER")
	_ = v.BindEnv("load.db.path", "DB_PATH")
	_ = v.BindEnv("load.db.dsn", "DB_DSN")
	_ = v.BindEnv("load.db.max_conns", "DB_MAX_CONNS")
	_ = v.BindEnv("load.table_name", "LOAD_TABLE_NAME")

	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.interval_seconds", "SCHEDULER_INTERVAL_SECONDS")
	_ = v.BindEnv("http_server.port", "HTTP_PORT")
}

// Init loads .env when present, then the YAML file at path, then env overrides.
func Init(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: error loading .env file: %v", domain.ErrConfiguration, err)
	}

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: error reading config file: %v", domain.ErrConfiguration, err)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: error unmarshalling config: %v", domain.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Extract.Source) == "" {
		problems = append(problems, "extract.source is required")
	}
	if len(c.Extract.Columns) != 2 {
		problems = append(problems, fmt.Sprintf("extract.columns must name exactly 2 columns, got %d", len(c.Extract.Columns)))
	}
	if c.Extract.NameCell < 0 || c.Extract.ValueCell < 0 || c.Extract.NameCell == c.Extract.ValueCell {
		problems = append(problems, "extract.name_cell and extract.value_cell must be distinct non-negative indexes")
	}
	if c.Extract.DecimalPlaces < 0 || c.Extract.DecimalPlaces > MaxDecimalPlaces {
		problems = append(problems, fmt.Sprintf("extract.decimal_places must be between 0 and %d", MaxDecimalPlaces))
	}
	if len(c.Rates.Targets) == 0 {
		problems = append(problems, "rates.targets must list at least one currency")
	}
	switch c.Rates.Source {
	case RatesFromFile:
		if c.Rates.Path == "" {
			problems = append(problems, "rates.path is required for file rates")
		}
	case RatesFromAPI:
		if c.Rates.API.BaseURL == "" || c.Rates.API.APIKey == "" {
			problems = append(problems, "rates.api.base_url and rates.api.api_key are required for api rates")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown rates.source %q", c.Rates.Source))
	}
	if c.Load.CSVPath == "" {
		problems = append(problems, "load.csv_path is required")
	}
	if c.Load.TableName == "" {
		problems = append(problems, "load.table_name is required")
	}
	switch c.Load.DB.Driver {
	case DriverSQLite:
		if c.Load.DB.Path == "" {
			problems = append(problems, "load.db.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Load.DB.DSN == "" {
			problems = append(problems, "load.db.dsn is required for postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown load.db.driver %q", c.Load.DB.Driver))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}
