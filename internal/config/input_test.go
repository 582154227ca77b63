package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpgo/buyhold/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buyhold.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewInputParser(t *testing.T) {
	parser := NewInputParser()
	assert.NotNil(t, parser)
}

func TestLoadFromFile_Success(t *testing.T) {
	path := writeConfig(t, "simulation:\n"+
		"  spending_percentage: 3.5\n"+
		"  num_years: 25\n"+
		"  starting_principal: 250000\n"+
		"data:\n"+
		"  dir: \"/srv/history\"\n"+
		"  workers: 2\n"+
		"output:\n"+
		"  format: json\n"+
		"  csv_prefix: out/run\n"+
		"server:\n"+
		"  cache_ttl: 90s\n")

	config, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "3.5", config.Simulation.SpendingPercentage.String())
	assert.Equal(t, 25, config.Simulation.NumYears)
	assert.Equal(t, "250000", config.Simulation.StartingPrincipal.String())
	assert.Equal(t, "/srv/history", config.Data.Dir)
	assert.Equal(t, 2, config.Data.Workers)
	assert.Equal(t, "json", config.Output.Format)
	assert.Equal(t, "out/run", config.Output.CSVPrefix)
	assert.Equal(t, 90*time.Second, config.Server.CacheTTL)
	assert.Equal(t, ":8080", config.Server.Addr, "unset values keep their defaults")
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "simulation:\n  num_years: 20\n")

	config, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 20, config.Simulation.NumYears)
	assert.Equal(t, "4", config.Simulation.SpendingPercentage.String())
	assert.Equal(t, "1000000", config.Simulation.StartingPrincipal.String())
	assert.Equal(t, "data", config.Data.Dir)
	assert.Equal(t, "console-lite", config.Output.Format)
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	parser := NewInputParser()
	config, err := parser.LoadFromFile("nonexistent_file.yaml")

	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "simulation: [unclosed\n")

	config, err := NewInputParser().LoadFromFile(path)
	assert.Nil(t, config)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *FileConfig)
		wantErr string
	}{
		{"defaults", func(c *FileConfig) {}, ""},
		{"zero years", func(c *FileConfig) { c.Simulation.NumYears = 0 }, "number of years"},
		{"missing data dir", func(c *FileConfig) { c.Data.Dir = "" }, "data directory is required"},
		{"negative workers", func(c *FileConfig) { c.Data.Workers = -1 }, "workers cannot be negative"},
		{"negative only year", func(c *FileConfig) { c.Data.OnlyYear = -1990 }, "only_year cannot be negative"},
		{"negative ttl", func(c *FileConfig) { c.Server.CacheTTL = -time.Second }, "cache TTL"},
	}

	parser := NewInputParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := parser.ValidateConfiguration(config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_InvalidSimulation(t *testing.T) {
	path := writeConfig(t, "simulation:\n  spending_percentage: 0\n")

	_, err := NewInputParser().LoadFromFile(path)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BUYHOLD_DATA_DIR", "/env/data")
	t.Setenv("BUYHOLD_WORKERS", "3")
	t.Setenv("BUYHOLD_SQLITE_PATH", "/env/buyhold.db")
	t.Setenv("BUYHOLD_REDIS_ADDR", "localhost:6379")
	t.Setenv("BUYHOLD_HTTP_ADDR", ":9090")
	t.Setenv("BUYHOLD_CACHE_TTL", "2m")

	config := Default()
	require.NoError(t, ApplyEnv(config))

	assert.Equal(t, "/env/data", config.Data.Dir)
	assert.Equal(t, 3, config.Data.Workers)
	assert.Equal(t, "/env/buyhold.db", config.Output.SQLitePath)
	assert.Equal(t, "localhost:6379", config.Server.RedisAddr)
	assert.Equal(t, ":9090", config.Server.Addr)
	assert.Equal(t, 2*time.Minute, config.Server.CacheTTL)
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("BUYHOLD_WORKERS", "many")

	err := ApplyEnv(Default())
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestLoad(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		config, err := NewInputParser().Load("")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultSimulationConfig(), config.Simulation)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("BUYHOLD_DATA_DIR", "/env/data")
		path := writeConfig(t, "data:\n  dir: /file/data\n  workers: 4\n")

		config, err := NewInputParser().Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/env/data", config.Data.Dir)
		assert.Equal(t, 4, config.Data.Workers)
	})

	t.Run("invalid env value fails validation", func(t *testing.T) {
		t.Setenv("BUYHOLD_WORKERS", "-2")

		_, err := NewInputParser().Load("")
		assert.ErrorIs(t, err, domain.ErrConfig)
	})
}
