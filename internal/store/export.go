package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/nvandessel/womsim/internal/diffusion"
)

// WriteSeriesCSV writes an adoption series as CSV with a header row,
// one line per tick.
func WriteSeriesCSV(w io.Writer, series []diffusion.TickPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tick", "adopters"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range series {
		row := []string{strconv.Itoa(p.Tick), strconv.Itoa(p.Adopters)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write tick %d: %w", p.Tick, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeriesJSONL writes an adoption series as JSON Lines, one tick
// object per line.
func WriteSeriesJSONL(w io.Writer, series []diffusion.TickPoint) error {
	enc := json.NewEncoder(w)
	for _, p := range series {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to encode tick %d: %w", p.Tick, err)
		}
	}
	return nil
}
