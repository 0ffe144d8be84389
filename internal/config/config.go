package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "STOCKBOARD_CONFIG"

// DefaultPath is used when PathEnv is unset.
const DefaultPath = "config/stockboard.yaml"

// envPrefix is prepended to every env tag below.
const envPrefix = "STOCKBOARD_"

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the stockboard tools.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Metadata Metadata `yaml:"metadata"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
	Pipeline Pipeline `yaml:"pipeline"`
	Stats    Stats    `yaml:"stats"`
	Metrics  Metrics  `yaml:"metrics"`
}

// Storage holds source and output locations.
type Storage struct {
	SourceDir  string `yaml:"source_dir" env:"SOURCE_DIR"`
	OutputDir  string `yaml:"output_dir" env:"OUTPUT_DIR"`
	ParquetDir string `yaml:"parquet_dir" env:"PARQUET_DIR"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// Metadata locates the company metadata table and logo files.
type Metadata struct {
	CompaniesCSV   string `yaml:"companies_csv" env:"COMPANIES_CSV"`
	LogosDir       string `yaml:"logos_dir" env:"LOGOS_DIR"`
	LogosPublicDir string `yaml:"logos_public_dir" env:"LOGOS_PUBLIC_DIR"`
}

// Server holds network listener configuration.
type Server struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	GRPCPort int    `yaml:"grpc_port" env:"GRPC_PORT"`
	// PublicDir, when set, is served at "/" for the UI bundle.
	PublicDir string `yaml:"public_dir" env:"PUBLIC_DIR"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
	File   bool   `yaml:"file" env:"LOG_FILE"`
}

// Pipeline tunes the batch stages.
type Pipeline struct {
	ProgressEvery int `yaml:"progress_every" env:"PROGRESS_EVERY"`
}

// Stats overrides the derived-statistics windows.
type Stats struct {
	YearWindow     int `yaml:"year_window" env:"YEAR_WINDOW"`
	VolumeWindow   int `yaml:"volume_window" env:"VOLUME_WINDOW"`
	MaxChartPoints int `yaml:"max_chart_points" env:"MAX_CHART_POINTS"`
}

// Metrics configures Prometheus export for the batch tools.
type Metrics struct {
	PushgatewayURL string `yaml:"pushgateway_url" env:"PUSHGATEWAY_URL"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Path returns the config file path from the environment, or DefaultPath.
func Path() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// LoadDotEnv loads a .env file from the working directory into the process
// environment. A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides overwrites any field whose STOCKBOARD_* variable is set.
func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parsing environment overrides: %w", err)
	}
	return nil
}

// applyDefaults fills zero fields with the values the tools assume.
func applyDefaults(cfg *Config) {
	setDefault(&cfg.Storage.SourceDir, "data/nasdaq_stock_prices")
	setDefault(&cfg.Storage.OutputDir, "public/data")
	setDefault(&cfg.Metadata.CompaniesCSV, "data/metadata/companies.csv")
	setDefault(&cfg.Metadata.LogosDir, "data/metadata/logos")
	setDefault(&cfg.Metadata.LogosPublicDir, "public/logos")
	setDefault(&cfg.Logging.Level, "info")
	setDefault(&cfg.Logging.Format, "text")

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Pipeline.ProgressEvery == 0 {
		cfg.Pipeline.ProgressEvery = 500
	}
}

func setDefault(field *string, v string) {
	if *field == "" {
		*field = v
	}
}

// Addr returns the HTTP listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GRPCAddr returns the gRPC listen address, or "" when gRPC is disabled.
func (s Server) GRPCAddr() string {
	if s.GRPCPort <= 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.Host, s.GRPCPort)
}
