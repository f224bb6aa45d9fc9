package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PairScope/internal/domain/models"
)

func TestWriteBarsCSV(t *testing.T) {
	bucket := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bars := []models.Bar{
		{Bucket: bucket, Symbol: "BTCUSDT", Open: 100, High: 101.5, Low: 99, Close: 100.25, Volume: 4},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBarsCSV(&buf, bars))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "bucket,symbol,open,high,low,close,volume", lines[0])
	assert.Equal(t, "2025-06-01T12:00:00Z,BTCUSDT,100,101.5,99,100.25,4", lines[1])
}

func TestWriteBarsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBarsCSV(&buf, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "bucket,symbol,open,high,low,close,volume", lines[0])
}

func TestWriteTicksCSV(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 500_000_000, time.UTC)
	ticks := []models.Tick{
		{Timestamp: ts, Symbol: "ETHUSDT", Price: 2500.5, Quantity: 0.25},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTicksCSV(&buf, ticks))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,symbol,price,quantity", lines[0])
	assert.Equal(t, "2025-06-01T12:00:00.5Z,ETHUSDT,2500.5,0.25", lines[1])
}
