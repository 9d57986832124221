// Package dataset holds the time-indexed table of prices and derived
// features that the models train on.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/seenimoa/stockcast/pkg/models"
)

// Price column names produced by FromCandles.
const (
	ColOpen     = "Open"
	ColHigh     = "High"
	ColLow      = "Low"
	ColClose    = "Close"
	ColVolume   = "Volume"
	ColAdjClose = "AdjClose"
)

var (
	// ErrLength is returned when a column does not match the frame's row count.
	ErrLength = errors.New("column length does not match frame")
	// ErrNoColumn is returned when a named column does not exist.
	ErrNoColumn = errors.New("no such column")
)

// Frame is a set of equally long float64 columns sharing a date index.
// NaN marks a missing value.
type Frame struct {
	Index []time.Time
	names []string
	cols  map[string][]float64
}

// New creates an empty frame over index.
func New(index []time.Time) *Frame {
	return &Frame{
		Index: index,
		cols:  make(map[string][]float64),
	}
}

// FromCandles builds a frame with the price columns of candles.
func FromCandles(candles []models.OHLCV) *Frame {
	n := len(candles)
	index := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	adj := make([]float64, n)
	for i, c := range candles {
		index[i] = c.Timestamp
		open[i] = c.Open
		high[i] = c.High
		low[i] = c.Low
		closes[i] = c.Close
		volume[i] = float64(c.Volume)
		adj[i] = c.AdjClose
	}

	f := New(index)
	f.put(ColOpen, open)
	f.put(ColHigh, high)
	f.put(ColLow, low)
	f.put(ColClose, closes)
	f.put(ColVolume, volume)
	f.put(ColAdjClose, adj)
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Index) }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string { return slices.Clone(f.names) }

// Has reports whether the frame holds a column named name.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Col returns the named column. The slice is shared with the frame.
func (f *Frame) Col(name string) []float64 { return f.cols[name] }

// Set adds or replaces a column.
func (f *Frame) Set(name string, values []float64) error {
	if len(values) != f.Len() {
		return fmt.Errorf("%w: %s has %d values, frame has %d rows", ErrLength, name, len(values), f.Len())
	}
	f.put(name, values)
	return nil
}

func (f *Frame) put(name string, values []float64) {
	if _, ok := f.cols[name]; !ok {
		f.names = append(f.names, name)
	}
	f.cols[name] = values
}

// DropNA returns a frame holding only the rows where every listed column
// is finite. With no columns listed every column is checked.
func (f *Frame) DropNA(cols ...string) *Frame {
	if len(cols) == 0 {
		cols = f.names
	}
	keep := make([]int, 0, f.Len())
	for i := range f.Index {
		ok := true
		for _, c := range cols {
			v, found := f.cols[c]
			if !found || math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return f.take(keep)
}

// Slice returns rows [i, j) as a new frame.
func (f *Frame) Slice(i, j int) *Frame {
	i = max(0, min(i, f.Len()))
	j = max(i, min(j, f.Len()))
	out := New(slices.Clone(f.Index[i:j]))
	for _, name := range f.names {
		out.put(name, slices.Clone(f.cols[name][i:j]))
	}
	return out
}

// Tail returns the last n rows.
func (f *Frame) Tail(n int) *Frame {
	return f.Slice(f.Len()-n, f.Len())
}

// Rows returns the listed columns as a row-major matrix.
func (f *Frame) Rows(cols ...string) ([][]float64, error) {
	src := make([][]float64, len(cols))
	for j, c := range cols {
		v, ok := f.cols[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoColumn, c)
		}
		src[j] = v
	}
	out := make([][]float64, f.Len())
	for i := range out {
		row := make([]float64, len(cols))
		for j := range cols {
			row[j] = src[j][i]
		}
		out[i] = row
	}
	return out, nil
}

// Shift returns the named column moved by k rows: positive k looks back,
// negative k looks ahead. Vacated positions are NaN.
func (f *Frame) Shift(name string, k int) ([]float64, error) {
	v, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoColumn, name)
	}
	out := make([]float64, len(v))
	for i := range out {
		j := i - k
		if j < 0 || j >= len(v) {
			out[i] = math.NaN()
			continue
		}
		out[i] = v[j]
	}
	return out, nil
}

// Last returns the final value of the named column, or NaN.
func (f *Frame) Last(name string) float64 {
	v := f.cols[name]
	if len(v) == 0 {
		return math.NaN()
	}
	return v[len(v)-1]
}

func (f *Frame) take(rows []int) *Frame {
	index := make([]time.Time, len(rows))
	for k, i := range rows {
		index[k] = f.Index[i]
	}
	out := New(index)
	for _, name := range f.names {
		src := f.cols[name]
		dst := make([]float64, len(rows))
		for k, i := range rows {
			dst[k] = src[i]
		}
		out.put(name, dst)
	}
	return out
}
