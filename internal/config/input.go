package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rpgo/buyhold/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration of the simulator.
type FileConfig struct {
	Simulation domain.SimulationConfig `yaml:"simulation"`
	Data       DataConfig              `yaml:"data"`
	Output     OutputConfig            `yaml:"output"`
	Server     ServerConfig            `yaml:"server"`
}

// DataConfig locates the historical data and controls how the batch is run.
type DataConfig struct {
	Dir      string `yaml:"dir"`
	Workers  int    `yaml:"workers"`   // 0 uses every CPU, 1 runs sequentially
	OnlyYear int    `yaml:"only_year"` // 0 runs every eligible start year
}

// OutputConfig selects the report format and optional file outputs.
type OutputConfig struct {
	Format     string `yaml:"format"`
	CSVPrefix  string `yaml:"csv_prefix"`
	SQLitePath string `yaml:"sqlite_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr      string        `yaml:"addr"`
	RedisAddr string        `yaml:"redis_addr"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// EnvOverrides are the environment variables that override file settings. Empty values
// leave the file setting alone.
type EnvOverrides struct {
	DataDir    string        `env:"BUYHOLD_DATA_DIR"`
	Workers    int           `env:"BUYHOLD_WORKERS"`
	SQLitePath string        `env:"BUYHOLD_SQLITE_PATH"`
	RedisAddr  string        `env:"BUYHOLD_REDIS_ADDR"`
	HTTPAddr   string        `env:"BUYHOLD_HTTP_ADDR"`
	CacheTTL   time.Duration `env:"BUYHOLD_CACHE_TTL"`
}

// Default returns the configuration used when no file is given.
func Default() *FileConfig {
	return &FileConfig{
		Simulation: domain.DefaultSimulationConfig(),
		Data: DataConfig{
			Dir: "data",
		},
		Output: OutputConfig{
			Format: "console-lite",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			CacheTTL: 10 * time.Minute,
		},
	}
}

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// Load builds the effective configuration: defaults, then the file when filename is not
// empty, then environment overrides. The result is validated.
func (ip *InputParser) Load(filename string) (*FileConfig, error) {
	config := Default()
	if filename != "" {
		loaded, err := ip.parseFile(filename)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}

	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// LoadFromFile loads configuration from a YAML file. Settings missing from the file keep
// their defaults.
func (ip *InputParser) LoadFromFile(filename string) (*FileConfig, error) {
	config, err := ip.parseFile(filename)
	if err != nil {
		return nil, err
	}

	// Validate the configuration
	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func (ip *InputParser) parseFile(filename string) (*FileConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", domain.ErrConfig, err)
	}
	return config, nil
}

// ApplyEnv overrides config with any BUYHOLD_* environment variables that are set.
func ApplyEnv(config *FileConfig) error {
	var overrides EnvOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("%w: parse env: %v", domain.ErrConfig, err)
	}

	if overrides.DataDir != "" {
		config.Data.Dir = overrides.DataDir
	}
	if overrides.Workers != 0 {
		config.Data.Workers = overrides.Workers
	}
	if overrides.SQLitePath != "" {
		config.Output.SQLitePath = overrides.SQLitePath
	}
	if overrides.RedisAddr != "" {
		config.Server.RedisAddr = overrides.RedisAddr
	}
	if overrides.HTTPAddr != "" {
		config.Server.Addr = overrides.HTTPAddr
	}
	if overrides.CacheTTL != 0 {
		config.Server.CacheTTL = overrides.CacheTTL
	}
	return nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *FileConfig) error {
	if err := config.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	if config.Data.Dir == "" {
		return fmt.Errorf("%w: data directory is required", domain.ErrConfig)
	}
	if config.Data.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative, got %d", domain.ErrConfig, config.Data.Workers)
	}
	if config.Data.OnlyYear < 0 {
		return fmt.Errorf("%w: only_year cannot be negative, got %d", domain.ErrConfig, config.Data.OnlyYear)
	}

	if config.Server.CacheTTL < 0 {
		return fmt.Errorf("%w: cache TTL cannot be negative", domain.ErrConfig)
	}

	return nil
}
