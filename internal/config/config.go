package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is built once at
// startup and passed down explicitly; nothing reads the environment later.
type Config struct {
	Sources     SourcesConfig     `yaml:"sources" mapstructure:"sources"`
	Reconcile   ReconcileConfig   `yaml:"reconcile" mapstructure:"reconcile"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Forecast    ForecastConfig    `yaml:"forecast" mapstructure:"forecast"`
	Sheets      SheetsConfig      `yaml:"sheets" mapstructure:"sheets"`
	Datawrapper DatawrapperConfig `yaml:"datawrapper" mapstructure:"datawrapper"`
	Monitoring  MonitoringConfig  `yaml:"monitoring" mapstructure:"monitoring"`
	Stage       StageConfig       `yaml:"stage" mapstructure:"stage"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// SourcesConfig configures the source adapters and their shared HTTP fetcher.
type SourcesConfig struct {
	UserAgent       string  `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gte=1"`
	MaxRetries      int     `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=1"`
	RatePerSec      float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec" validate:"gt=0"`
	SkipDetailPages bool    `yaml:"skip_detail_pages" mapstructure:"skip_detail_pages"`
	OfficialURL     string  `yaml:"official_url" mapstructure:"official_url" validate:"required,url"`
	OnTheSnowURL    string  `yaml:"onthesnow_url" mapstructure:"onthesnow_url" validate:"required,url"`
	ColoradoSkiURL  string  `yaml:"coloradoski_url" mapstructure:"coloradoski_url" validate:"required,url"`
}

// Timeout returns the per-request HTTP timeout.
func (s SourcesConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// ReconcileConfig configures the merge of per-source tables.
type ReconcileConfig struct {
	Max24hSnowfall     int      `yaml:"max_24h_snowfall" mapstructure:"max_24h_snowfall" validate:"gte=0"`
	Priority           []string `yaml:"priority" mapstructure:"priority" validate:"min=1,unique,dive,oneof=Official AggregatorA AggregatorB"`
	Authoritative      string   `yaml:"authoritative" mapstructure:"authoritative" validate:"omitempty,oneof=Official AggregatorA AggregatorB"`
	MustInclude        []string `yaml:"must_include" mapstructure:"must_include"`
	AdapterTimeoutSecs int      `yaml:"adapter_timeout_secs" mapstructure:"adapter_timeout_secs" validate:"gte=1"`
	ReferenceFile      string   `yaml:"reference_file" mapstructure:"reference_file"`
}

// AdapterTimeout returns how long the collector waits on each adapter.
func (r ReconcileConfig) AdapterTimeout() time.Duration {
	return time.Duration(r.AdapterTimeoutSecs) * time.Second
}

// OutputConfig names the flat files each stage reads and writes.
type OutputConfig struct {
	ConditionsCSV  string `yaml:"conditions_csv" mapstructure:"conditions_csv" validate:"required"`
	ConditionsXLSX string `yaml:"conditions_xlsx" mapstructure:"conditions_xlsx"`
	CaliforniaCSV  string `yaml:"california_csv" mapstructure:"california_csv"`
	ForecastCO     string `yaml:"forecast_co" mapstructure:"forecast_co" validate:"required"`
	ForecastCA     string `yaml:"forecast_ca" mapstructure:"forecast_ca"`
}

// ForecastConfig configures the Open-Meteo forecast stage.
type ForecastConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=1"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec" validate:"gt=0"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gte=1"`
	RunCO       bool    `yaml:"run_co" mapstructure:"run_co"`
	RunCA       bool    `yaml:"run_ca" mapstructure:"run_ca"`
}

// SheetsConfig holds Google Sheets credentials and targets.
type SheetsConfig struct {
	CredentialsJSON string `yaml:"credentials_json" mapstructure:"credentials_json"`
	SpreadsheetID   string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	ForecastID      string `yaml:"forecast_id" mapstructure:"forecast_id"`
	SheetName       string `yaml:"sheet_name" mapstructure:"sheet_name" validate:"required"`
	Timezone        string `yaml:"timezone" mapstructure:"timezone" validate:"required"`
}

// DatawrapperConfig holds Datawrapper API settings.
type DatawrapperConfig struct {
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	MapChartID   string `yaml:"map_chart_id" mapstructure:"map_chart_id"`
	TableChartID string `yaml:"table_chart_id" mapstructure:"table_chart_id"`
}

// Enabled reports whether a key and at least one chart are configured.
func (d DatawrapperConfig) Enabled() bool {
	return d.APIKey != "" && (d.MapChartID != "" || d.TableChartID != "")
}

// MonitoringConfig configures run metrics and failure alerts.
type MonitoringConfig struct {
	MetricsFile string `yaml:"metrics_file" mapstructure:"metrics_file"`
	WebhookURL  string `yaml:"webhook_url" mapstructure:"webhook_url" validate:"omitempty,url"`
	// PlaceholderThreshold alerts when more must-include resorts than this
	// had to be filled with placeholders. Zero disables the check.
	PlaceholderThreshold int `yaml:"placeholder_threshold" mapstructure:"placeholder_threshold" validate:"gte=0"`
	// ForecastFailureThreshold is the tolerated share of failed forecast
	// lookups, between 0 and 1.
	ForecastFailureThreshold float64 `yaml:"forecast_failure_threshold" mapstructure:"forecast_failure_threshold" validate:"gte=0,lte=1"`
}

// StageConfig configures the stage runner used by `update`.
type StageConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gte=1"`
}

// Timeout returns the per-stage timeout.
func (s StageConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// legacyEnv maps config keys to the unprefixed environment variables the
// scheduled workflow already exports.
var legacyEnv = map[string]string{
	"sources.skip_detail_pages":  "SKIP_DETAIL_PAGES",
	"forecast.run_ca":            "RUN_CA",
	"forecast.run_co":            "RUN_CO",
	"sheets.credentials_json":    "GOOGLE_CREDENTIALS",
	"sheets.spreadsheet_id":      "GOOGLE_SHEETS_SPREADSHEET_ID",
	"sheets.forecast_id":         "GOOGLE_SHEETS_FORECAST_ID",
	"datawrapper.api_key":        "DATAWRAPPER_API_KEY",
	"datawrapper.map_chart_id":   "SNOW_MAP_CHART_ID",
	"datawrapper.table_chart_id": "SNOW_TABLE_CHART_ID",
	"monitoring.webhook_url":     "ALERT_WEBHOOK_URL",
}

// Load reads configuration from .env, config file, and environment.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SNOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "SNOW_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", env)
		}
	}

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, eris.Wrap(err, "config: validate")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("sources.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	v.SetDefault("sources.timeout_secs", 30)
	v.SetDefault("sources.max_retries", 3)
	v.SetDefault("sources.rate_per_sec", 2.0)
	v.SetDefault("sources.skip_detail_pages", true)
	v.SetDefault("sources.official_url", "https://www.aspensnowmass.com/AspenSnowmass/SnowReport/Feed")
	v.SetDefault("sources.onthesnow_url", "https://www.onthesnow.com/colorado/skireport.html")
	v.SetDefault("sources.coloradoski_url", "https://www.coloradoski.com/snow-report")
	v.SetDefault("reconcile.max_24h_snowfall", 12)
	v.SetDefault("reconcile.priority", []string{"AggregatorA", "AggregatorB", "Official"})
	v.SetDefault("reconcile.authoritative", "Official")
	v.SetDefault("reconcile.must_include", []string{
		"Arapahoe Basin", "Aspen Highlands", "Aspen Mountain", "Beaver Creek",
		"Breckenridge", "Buttermilk", "Copper Mountain", "Crested Butte",
		"Keystone", "Loveland", "Purgatory", "Snowmass", "Steamboat",
		"Telluride", "Vail", "Winter Park", "Wolf Creek",
	})
	v.SetDefault("reconcile.adapter_timeout_secs", 300)
	v.SetDefault("output.conditions_csv", "colorado_resorts_combined.csv")
	v.SetDefault("output.conditions_xlsx", "colorado_resorts_combined.xlsx")
	v.SetDefault("output.california_csv", "california_resorts_combined.csv")
	v.SetDefault("output.forecast_co", "colorado_snow_forecast.csv")
	v.SetDefault("output.forecast_ca", "california_snow_forecast.csv")
	v.SetDefault("forecast.base_url", "https://api.open-meteo.com/v1")
	v.SetDefault("forecast.concurrency", 4)
	v.SetDefault("forecast.rate_per_sec", 5.0)
	v.SetDefault("forecast.max_attempts", 3)
	v.SetDefault("forecast.timeout_secs", 30)
	v.SetDefault("forecast.run_co", true)
	v.SetDefault("forecast.run_ca", false)
	v.SetDefault("sheets.sheet_name", "Sheet1")
	v.SetDefault("sheets.timezone", "America/Denver")
	v.SetDefault("datawrapper.base_url", "https://api.datawrapper.de/v3")
	v.SetDefault("stage.timeout_secs", 300)
	v.SetDefault("monitoring.placeholder_threshold", 5)
	v.SetDefault("monitoring.forecast_failure_threshold", 0.25)
}

// loadDotEnv loads ./.env into the process environment. A missing file is
// not an error; variables already set are not overridden.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return eris.Wrap(err, "config: load .env")
	}
	return nil
}

// Validate checks the settings a given stage needs beyond the struct rules.
func (c *Config) Validate(stage string) error {
	var missing []string
	switch stage {
	case "sheets":
		if c.Sheets.CredentialsJSON == "" {
			missing = append(missing, "GOOGLE_CREDENTIALS is required")
		}
		if c.Sheets.SpreadsheetID == "" {
			missing = append(missing, "GOOGLE_SHEETS_SPREADSHEET_ID is required")
		}
	case "forecast-sheets":
		if c.Sheets.CredentialsJSON == "" {
			missing = append(missing, "GOOGLE_CREDENTIALS is required")
		}
		if c.Sheets.ForecastID == "" {
			missing = append(missing, "GOOGLE_SHEETS_FORECAST_ID is required")
		}
	case "charts":
		if c.Datawrapper.APIKey == "" {
			missing = append(missing, "DATAWRAPPER_API_KEY is required")
		}
		if c.Datawrapper.MapChartID == "" && c.Datawrapper.TableChartID == "" {
			missing = append(missing, "SNOW_MAP_CHART_ID or SNOW_TABLE_CHART_ID is required")
		}
	case "forecast":
		if !c.Forecast.RunCO && !c.Forecast.RunCA {
			missing = append(missing, "at least one of RUN_CO or RUN_CA must be enabled")
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
