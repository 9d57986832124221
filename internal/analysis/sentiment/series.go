package sentiment

import (
	"slices"
	"time"

	"github.com/seenimoa/stockcast/internal/dataset"
	"github.com/seenimoa/stockcast/pkg/models"
	"github.com/seenimoa/stockcast/pkg/utils"
)

// ColSentiment is the feature column written by AddSentiment.
const ColSentiment = "Sentiment"

// DailyScore is the mean article score of one calendar day (ET).
type DailyScore struct {
	Date  time.Time
	Score float64
}

// DailySeries averages article scores per day, oldest day first. Articles
// without a publish time are ignored.
func DailySeries(scores []models.SentimentScore) []DailyScore {
	type acc struct {
		date  time.Time
		sum   float64
		count int
	}
	byDay := make(map[string]*acc)
	for _, s := range scores {
		if s.PublishedAt.IsZero() {
			continue
		}
		d := utils.TradingDate(s.PublishedAt)
		key := utils.FormatDate(d)
		a, ok := byDay[key]
		if !ok {
			a = &acc{date: d}
			byDay[key] = a
		}
		a.sum += s.Score
		a.count++
	}

	out := make([]DailyScore, 0, len(byDay))
	for _, a := range byDay {
		out = append(out, DailyScore{Date: a.date, Score: a.sum / float64(a.count)})
	}
	slices.SortFunc(out, func(a, b DailyScore) int { return a.Date.Compare(b.Date) })
	return out
}

// AddSentiment writes the Sentiment column: each row takes the latest daily
// score on or before its date, so days without news carry the previous
// value forward. Rows before the first scored day get fallback.
func AddSentiment(f *dataset.Frame, daily []DailyScore, fallback float64) error {
	col := make([]float64, f.Len())
	j := 0
	current := fallback
	for i, ts := range f.Index {
		day := utils.TradingDate(ts)
		for j < len(daily) && !daily[j].Date.After(day) {
			current = daily[j].Score
			j++
		}
		col[i] = current
	}
	return f.Set(ColSentiment, col)
}
