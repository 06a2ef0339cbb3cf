package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var DefaultEnvConfig *EnvConfig

type EnvConfig struct {
	// server config
	APP_PORT                 string `envconfig:"APP_PORT" default:"8050"`
	REQUESTS_PATHNAME_PREFIX string `envconfig:"REQUESTS_PATHNAME_PREFIX" default:"/"`
	// upstream datastore config
	DATASTORE_URL string        `envconfig:"DATASTORE_URL" required:"true"`
	HTTP_TIMEOUT  time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`
	// report layout; empty uses the embedded default
	REPORT_CONFIG_PATH string `envconfig:"REPORT_CONFIG_PATH"`
	// logger config
	LOG_FILE_PATH string `envconfig:"LOG_FILE_PATH"`
	LOG_LEVEL     string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadEnvConfig reads .env (if present) and the process environment into
// DefaultEnvConfig.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("process env: %w", err)
	}
	DefaultEnvConfig = &cfg
	return nil
}

// ReportConfig is the explicit configuration handed to the report pipeline.
type ReportConfig struct {
	BaseURL         string
	FixedTableOrder []string
	GroupDelimiter  string
	Tables          []TableLayout
}

// NewReportConfig combines the environment with a table layout.
func NewReportConfig(env *EnvConfig, layout *ReportLayout) (ReportConfig, error) {
	if env == nil || layout == nil {
		return ReportConfig{}, fmt.Errorf("config: env and layout are required")
	}
	base, err := apiRoot(env.DATASTORE_URL)
	if err != nil {
		return ReportConfig{}, err
	}
	return ReportConfig{
		BaseURL:         base,
		FixedTableOrder: layout.TableOrder(),
		GroupDelimiter:  layout.GroupDelimiter,
		Tables:          layout.Tables,
	}, nil
}
