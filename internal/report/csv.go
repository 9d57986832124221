package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/seenimoa/stockcast/pkg/models"
)

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []models.ForecastRow, horizons []models.Horizon) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(horizons)); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(Record(r, horizons)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVSink writes the comparison file, replacing any previous one.
type CSVSink struct {
	Path     string
	Horizons []models.Horizon
}

// NewCSVSink creates a sink writing to path.
func NewCSVSink(path string, horizons []models.Horizon) *CSVSink {
	return &CSVSink{Path: path, Horizons: horizons}
}

func (s *CSVSink) Name() string { return "csv" }

// Write creates the file. A run without rows still produces the header.
func (s *CSVSink) Write(_ context.Context, rows []models.ForecastRow) (err error) {
	if err := ensureDir(s.Path); err != nil {
		return fmt.Errorf("csv sink: %w", err)
	}
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("csv sink: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("csv sink: %w", cerr)
		}
	}()
	if err := WriteCSV(f, rows, s.Horizons); err != nil {
		return fmt.Errorf("csv sink %s: %w", s.Path, err)
	}
	return nil
}

func (s *CSVSink) Close() error { return nil }

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
