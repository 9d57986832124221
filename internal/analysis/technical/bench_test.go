package technical

import (
	"math/rand"
	"testing"
	"time"

	"github.com/seenimoa/stockcast/internal/dataset"
	"github.com/seenimoa/stockcast/pkg/models"
)

// benchCandles creates synthetic OHLCV data for benchmarks.
func benchCandles(n int) []models.OHLCV {
	candles := make([]models.OHLCV, n)
	rng := rand.New(rand.NewSource(42))
	price := 180.0
	t := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	for i := range candles {
		change := (rng.Float64() - 0.48) * 4 // slight upward bias
		open := price
		close := price + change
		candles[i] = models.OHLCV{
			Timestamp: t,
			Open:      open,
			High:      max(open, close) + rng.Float64()*2,
			Low:       min(open, close) - rng.Float64()*2,
			Close:     close,
			Volume:    int64(rng.Intn(50_000_000) + 1_000_000),
		}
		price = close
		t = t.Add(24 * time.Hour)
	}
	return candles
}

func BenchmarkRollingMean365(b *testing.B) {
	data := closesOf(benchCandles(1500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RollingMean(data, 365)
	}
}

func BenchmarkRSI14(b *testing.B) {
	data := closesOf(benchCandles(1500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RSI(data, 14)
	}
}

func BenchmarkMACD(b *testing.B) {
	data := closesOf(benchCandles(1500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MACD(data, 12, 26, 9)
	}
}

func BenchmarkAddFeatures(b *testing.B) {
	candles := benchCandles(1500)
	p := DefaultParams()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f := dataset.FromCandles(candles)
		if err := AddFeatures(f, p); err != nil {
			b.Fatal(err)
		}
	}
}
