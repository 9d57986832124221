package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stockcast/pkg/models"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func sampleFrame() *Frame {
	return FromCandles([]models.OHLCV{
		{Timestamp: day(2), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10, AdjClose: 1.4},
		{Timestamp: day(3), Open: 2, High: 3, Low: 1.5, Close: 2.5, Volume: 20, AdjClose: 2.4},
		{Timestamp: day(4), Open: 3, High: 4, Low: 2.5, Close: 3.5, Volume: 30, AdjClose: 3.4},
		{Timestamp: day(5), Open: 4, High: 5, Low: 3.5, Close: 4.5, Volume: 40, AdjClose: 4.4},
	})
}

func TestFromCandles(t *testing.T) {
	f := sampleFrame()
	assert.Equal(t, 4, f.Len())
	assert.Equal(t, []string{"Open", "High", "Low", "Close", "Volume", "AdjClose"}, f.Columns())
	assert.Equal(t, []float64{1.5, 2.5, 3.5, 4.5}, f.Col(ColClose))
	assert.Equal(t, []float64{10, 20, 30, 40}, f.Col(ColVolume))
	assert.Equal(t, 4.5, f.Last(ColClose))
}

func TestSetLengthMismatch(t *testing.T) {
	f := sampleFrame()
	err := f.Set("bad", []float64{1, 2})
	assert.ErrorIs(t, err, ErrLength)
	assert.False(t, f.Has("bad"))

	require.NoError(t, f.Set("good", []float64{1, 2, 3, 4}))
	assert.True(t, f.Has("good"))
	require.NoError(t, f.Set("good", []float64{4, 3, 2, 1}))
	assert.Len(t, f.Columns(), 7, "replacing a column keeps one name")
}

func TestDropNA(t *testing.T) {
	f := sampleFrame()
	nan := math.NaN()
	require.NoError(t, f.Set("feat", []float64{nan, 1, nan, 3}))
	require.NoError(t, f.Set("other", []float64{1, 1, 1, math.Inf(1)}))

	onlyFeat := f.DropNA("feat")
	assert.Equal(t, 2, onlyFeat.Len())
	assert.Equal(t, []time.Time{day(3), day(5)}, onlyFeat.Index)
	assert.Equal(t, []float64{2.5, 4.5}, onlyFeat.Col(ColClose))

	all := f.DropNA()
	assert.Equal(t, 1, all.Len())
	assert.Equal(t, day(3), all.Index[0])

	missing := f.DropNA("nope")
	assert.Equal(t, 0, missing.Len())
}

func TestSliceAndTail(t *testing.T) {
	f := sampleFrame()
	s := f.Slice(1, 3)
	assert.Equal(t, []float64{2.5, 3.5}, s.Col(ColClose))

	s.Col(ColClose)[0] = 99
	assert.Equal(t, 2.5, f.Col(ColClose)[1], "slice must not alias the source")

	assert.Equal(t, []float64{3.5, 4.5}, f.Tail(2).Col(ColClose))
	assert.Equal(t, 4, f.Tail(10).Len())
	assert.Equal(t, 0, f.Slice(3, 1).Len())
}

func TestRows(t *testing.T) {
	f := sampleFrame()
	rows, err := f.Rows(ColOpen, ColClose)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 1.5}, {2, 2.5}, {3, 3.5}, {4, 4.5}}, rows)

	_, err = f.Rows("missing")
	assert.ErrorIs(t, err, ErrNoColumn)
}

func TestShift(t *testing.T) {
	f := sampleFrame()
	ahead, err := f.Shift(ColClose, -1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 3.5, 4.5}, ahead[:3])
	assert.True(t, math.IsNaN(ahead[3]))

	back, err := f.Shift(ColClose, 2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(back[0]) && math.IsNaN(back[1]))
	assert.Equal(t, 1.5, back[2])

	_, err = f.Shift("missing", 1)
	assert.ErrorIs(t, err, ErrNoColumn)
}

func TestLastEmpty(t *testing.T) {
	assert.True(t, math.IsNaN(New(nil).Last(ColClose)))
}
