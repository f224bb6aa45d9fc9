package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
binance:
  symbols: [BTCUSDT, ETHUSDT]
pair:
  symbol_a: BTCUSDT
  symbol_b: ETHUSDT
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "none", cfg.Sink.Backend)
	assert.Equal(t, 20, cfg.Pair.Window)
	assert.Equal(t, 10000, cfg.Store.RawHighWater)
	assert.Equal(t, 5000, cfg.Store.RawLowWater)
	assert.Equal(t, 2000, cfg.Store.BarCap)
	assert.Equal(t, 1000, cfg.Store.BarRetain)
	assert.Equal(t, "wss://stream.binance.com:9443/ws", cfg.Binance.WebSocketURL)
	assert.Equal(t, "pairscope.ticks", cfg.Sink.Kafka.TickTopic)
}

func TestLoadRejectsMissingPair(t *testing.T) {
	_, err := Load(writeConfig(t, `
binance:
  symbols: [BTCUSDT]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pair.symbol_a")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
sink:
  backend: postgres
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink.backend")
}

func TestLoadRejectsInvertedWaterMarks(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
store:
  raw_high_water: 100
  raw_low_water: 200
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw_low_water")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "SOLUSDT,AVAXUSDT")
	t.Setenv("SINK_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"SOLUSDT", "AVAXUSDT"}, cfg.Binance.Symbols)
	assert.Equal(t, "kafka", cfg.Sink.Backend)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Sink.Kafka.Brokers)
}
