package technical

import (
	"math"
	"testing"
	"time"

	"github.com/seenimoa/stockcast/internal/dataset"
	"github.com/seenimoa/stockcast/pkg/models"
)

// makeCandles generates synthetic daily OHLCV data for testing.
func makeCandles(n int, basePrice float64, trend float64) []models.OHLCV {
	candles := make([]models.OHLCV, n)
	price := basePrice
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		open := price
		close := open + trend
		candles[i] = models.OHLCV{
			Timestamp: start.AddDate(0, 0, i),
			Open:      open,
			High:      math.Max(open, close) + 3,
			Low:       math.Min(open, close) - 3,
			Close:     close,
			Volume:    1000000 + int64(i*10000),
		}
		price = close
	}
	return candles
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRollingMean(t *testing.T) {
	vals := RollingMean([]float64{10, 20, 30, 40, 50}, 3)
	if !math.IsNaN(vals[0]) || !math.IsNaN(vals[1]) {
		t.Errorf("expected NaN warm-up, got %v", vals[:2])
	}
	// (10+20+30)/3 = 20, (30+40+50)/3 = 40
	if vals[2] != 20 || vals[4] != 40 {
		t.Errorf("unexpected rolling mean: %v", vals)
	}
}

func TestRollingMeanShortSeries(t *testing.T) {
	vals := RollingMean([]float64{1, 2}, 5)
	if len(vals) != 2 || !math.IsNaN(vals[0]) || !math.IsNaN(vals[1]) {
		t.Errorf("expected all NaN for short series, got %v", vals)
	}
}

func TestRollingStdIsSample(t *testing.T) {
	vals := RollingStd([]float64{1, 2, 3}, 3)
	// mean 2, squared deviations 2, n-1 = 2 → std 1
	if !almostEqual(vals[2], 1) {
		t.Errorf("expected sample std 1, got %v", vals[2])
	}
}

func TestEWM(t *testing.T) {
	// span 3 → alpha 0.5, seeded with the first value.
	vals := EWM([]float64{10, 20, 30}, 3)
	want := []float64{10, 15, 22.5}
	for i := range want {
		if !almostEqual(vals[i], want[i]) {
			t.Errorf("EWM[%d] = %v, want %v", i, vals[i], want[i])
		}
	}
}

func TestEWMLeadingNaN(t *testing.T) {
	vals := EWM([]float64{math.NaN(), 10, 20}, 3)
	if !math.IsNaN(vals[0]) || vals[1] != 10 || vals[2] != 15 {
		t.Errorf("unexpected EWM with leading NaN: %v", vals)
	}
}

func TestRSI(t *testing.T) {
	// changes: 0, +1, +1, -1, +1 → window-2 means of gains/losses
	vals := RSI([]float64{10, 11, 12, 11, 12}, 2)
	if !math.IsNaN(vals[0]) {
		t.Errorf("RSI[0] should be NaN, got %v", vals[0])
	}
	if vals[1] != 100 || vals[2] != 100 {
		t.Errorf("expected RSI 100 with no losses, got %v %v", vals[1], vals[2])
	}
	if !almostEqual(vals[3], 50) || !almostEqual(vals[4], 50) {
		t.Errorf("expected RSI 50 with equal gain/loss, got %v %v", vals[3], vals[4])
	}
}

func TestRSIUptrend(t *testing.T) {
	closes := closesOf(makeCandles(50, 100, 1.5))
	vals := RSI(closes, 14)
	if len(vals) != 50 {
		t.Fatalf("expected 50 RSI values, got %d", len(vals))
	}
	if latest := vals[len(vals)-1]; latest < 50 {
		t.Errorf("expected RSI > 50 in uptrend, got %.2f", latest)
	}
}

func TestRSIFlatIsNaN(t *testing.T) {
	vals := RSI([]float64{5, 5, 5, 5, 5}, 3)
	if !math.IsNaN(vals[4]) {
		t.Errorf("expected NaN RSI on a flat window, got %v", vals[4])
	}
}

func TestMACD(t *testing.T) {
	closes := closesOf(makeCandles(50, 100, 1))
	macd, signal := MACD(closes, 12, 26, 9)
	if len(macd) != 50 || len(signal) != 50 {
		t.Fatalf("expected 50 values, got %d/%d", len(macd), len(signal))
	}
	if macd[0] != 0 {
		t.Errorf("MACD starts at zero when both EMAs seed on the first close, got %v", macd[0])
	}
	// In an uptrend the fast EMA leads the slow one.
	if macd[49] <= 0 {
		t.Errorf("expected positive MACD in uptrend, got %.4f", macd[49])
	}
	if signal[49] >= macd[49] {
		t.Errorf("signal line should lag MACD in a steady uptrend: %v >= %v", signal[49], macd[49])
	}
}

func TestBollinger(t *testing.T) {
	upper, lower := Bollinger([]float64{1, 2, 3}, 3, 2)
	if !almostEqual(upper[2], 4) || !almostEqual(lower[2], 0) {
		t.Errorf("expected bands 4/0, got %v/%v", upper[2], lower[2])
	}
	if !math.IsNaN(upper[1]) || !math.IsNaN(lower[0]) {
		t.Error("expected NaN during warm-up")
	}
}

func TestAddFeatures(t *testing.T) {
	f := dataset.FromCandles(makeCandles(400, 100, 0.5))
	p := DefaultParams()
	if err := AddFeatures(f, p); err != nil {
		t.Fatalf("AddFeatures() error: %v", err)
	}
	for _, c := range IndicatorColumns {
		if !f.Has(c) {
			t.Errorf("missing column %s", c)
		}
	}
	if p.WarmUp() != 364 {
		t.Errorf("WarmUp() = %d, want 364", p.WarmUp())
	}
	clean := f.DropNA(IndicatorColumns...)
	if clean.Len() != 400-p.WarmUp() {
		t.Errorf("expected %d complete rows, got %d", 400-p.WarmUp(), clean.Len())
	}
	if got := f.Col(ColMeanShort)[6]; !almostEqual(got, f.Col(dataset.ColClose)[3]) {
		t.Errorf("7-day mean of a linear series should equal its middle value, got %v", got)
	}
}

func TestAddFeaturesNoClose(t *testing.T) {
	f := dataset.New([]time.Time{time.Now()})
	if err := AddFeatures(f, DefaultParams()); err == nil {
		t.Fatal("expected error for frame without Close")
	}
}

// --- Signals ---

func featureFrame(t *testing.T, trend float64) *dataset.Frame {
	t.Helper()
	f := dataset.FromCandles(makeCandles(400, 500, trend))
	if err := AddFeatures(f, DefaultParams()); err != nil {
		t.Fatalf("AddFeatures() error: %v", err)
	}
	return f
}

func TestSignalsDowntrend(t *testing.T) {
	signals := Signals(featureFrame(t, -0.5))
	found := map[string]models.Action{}
	for _, s := range signals {
		found[s.Source] = s.Action
	}
	if found["RSI"] != models.ActionBuy {
		t.Errorf("expected oversold RSI buy, got %v", signals)
	}
	if found["MA_Trend"] != models.ActionSell {
		t.Errorf("expected MA trend sell, got %v", signals)
	}
}

func TestSignalsWithoutFeatures(t *testing.T) {
	f := dataset.FromCandles(makeCandles(10, 100, 1))
	if s := Signals(f); s != nil {
		t.Errorf("expected no signals without indicator columns, got %v", s)
	}
}

func TestAggregate(t *testing.T) {
	action, conf := Aggregate(nil)
	if action != models.ActionHold || conf != 0 {
		t.Errorf("Aggregate(nil) = %v, %v", action, conf)
	}

	action, conf = Aggregate([]Signal{{Source: "RSI", Action: models.ActionBuy, Confidence: 0.8}})
	if action != models.ActionBuy || !almostEqual(conf, 0.9) {
		t.Errorf("single buy: got %v, %v", action, conf)
	}

	action, _ = Aggregate([]Signal{
		{Source: "RSI", Action: models.ActionBuy, Confidence: 0.6},
		{Source: "RSI", Action: models.ActionSell, Confidence: 0.6},
	})
	if action != models.ActionHold {
		t.Errorf("balanced signals should hold, got %v", action)
	}
}

func closesOf(candles []models.OHLCV) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
