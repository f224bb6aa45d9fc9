package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"PairScope/internal/domain/models"
)

// WriteBarsCSV streams bars as CSV with a header row. Timestamps are
// RFC3339 in UTC so exports re-import cleanly.
func WriteBarsCSV(w io.Writer, bars []models.Bar) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"bucket", "symbol", "open", "high", "low", "close", "volume"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, b := range bars {
		rec := []string{
			b.Bucket.UTC().Format(time.RFC3339),
			b.Symbol,
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTicksCSV streams raw ticks as CSV with a header row.
func WriteTicksCSV(w io.Writer, ticks []models.Tick) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"timestamp", "symbol", "price", "quantity"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range ticks {
		rec := []string{
			t.Timestamp.UTC().Format(time.RFC3339Nano),
			t.Symbol,
			formatFloat(t.Price),
			formatFloat(t.Quantity),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
