package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborcalc/indemnity-engine/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "indemnity.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfiguration_Defaults(t *testing.T) {
	conf, err := config.LoadConfiguration("")
	require.NoError(t, err)

	assert.Equal(t, 8080, conf.Server.Port)
	assert.Equal(t, "sqlite", conf.Storage.Driver)
	assert.Equal(t, 15*time.Minute, conf.Refresh.Interval)
	assert.True(t, conf.Datasets.ImportOnStart)

	rates, err := conf.Policy.Rates()
	require.NoError(t, err)
	assert.Equal(t, "0.03", rates.SeveranceIndexSurcharge.String())
	assert.Equal(t, "0.022", rates.CourtFeeRate.String())
}

func TestLoadConfiguration_File(t *testing.T) {
	// GIVEN: a file overriding some sections
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
storage:
  driver: memory
datasets:
  dir: /srv/data
  files:
    pisos: pisos.yaml
refresh:
  interval: 1m
policy:
  injury_surcharge_rate: "0.25"
logging:
  level: debug
  format: console
`)

	// WHEN: loading it
	conf, err := config.LoadConfiguration(path)
	require.NoError(t, err)

	// THEN: file values win, untouched keys keep their defaults
	assert.Equal(t, 9090, conf.Server.Port)
	assert.Equal(t, 5*time.Second, conf.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, conf.Server.WriteTimeout)
	assert.Equal(t, "memory", conf.Storage.Driver)
	assert.Equal(t, "/srv/data", conf.Datasets.Dir)
	assert.Equal(t, "pisos.yaml", conf.Datasets.Files["pisos"])
	assert.Equal(t, time.Minute, conf.Refresh.Interval)
	assert.Equal(t, "0.25", conf.Policy.InjurySurchargeRate)
	assert.Equal(t, "0.03", conf.Policy.InjuryInterestRate)
	assert.Equal(t, "console", conf.Logging.Format)
}

func TestLoadConfiguration_EnvOverride(t *testing.T) {
	t.Setenv("INDEMNITY_SERVER_PORT", "7070")
	t.Setenv("INDEMNITY_STORAGE_DRIVER", "memory")

	conf, err := config.LoadConfiguration(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, conf.Server.Port)
	assert.Equal(t, "memory", conf.Storage.Driver)
}

func TestLoadConfiguration_Invalid(t *testing.T) {
	tests := map[string]string{
		"driver":   "storage:\n  driver: oracle\n",
		"rate":     "policy:\n  court_fee_rate: dos\n",
		"negative": "policy:\n  court_fee_rate: \"-0.1\"\n",
		"port":     "server:\n  port: 70000\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadConfiguration(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	_, err := config.LoadConfiguration(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := config.NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1), "debug disabled at info")

	logger, err = config.NewLogger(config.LoggingConfig{Level: "info", Format: "console"}, "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1), "override wins")

	file := filepath.Join(t.TempDir(), "logs", "indemnity.log")
	logger, err = config.NewLogger(config.LoggingConfig{OutputFile: file}, "")
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())
	_, err = os.Stat(file)
	assert.NoError(t, err)

	_, err = config.NewLogger(config.LoggingConfig{Level: "loud"}, "")
	assert.Error(t, err)
	_, err = config.NewLogger(config.LoggingConfig{Format: "xml"}, "")
	assert.Error(t, err)
}
