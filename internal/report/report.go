// Package report renders forecast rows: the CSV comparison file, an HTML
// summary with an MSE chart, and a text table for the terminal.
package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/stockcast/pkg/models"
)

// Sink receives the rows of one run.
type Sink interface {
	Name() string
	Write(ctx context.Context, rows []models.ForecastRow) error
	Close() error
}

// Header returns the comparison columns: symbol, both MSEs, then the
// network's actions per horizon followed by the regression's.
func Header(horizons []models.Horizon) []string {
	h := []string{"Symbol", models.ModelLinear + "_MSE", models.ModelNeural + "_MSE"}
	for _, model := range []string{models.ModelNeural, models.ModelLinear} {
		for _, hz := range horizons {
			h = append(h, hz.Label+"_Action_"+model)
		}
	}
	return h
}

// Record returns the CSV fields of row in Header order.
func Record(row models.ForecastRow, horizons []models.Horizon) []string {
	rec := []string{row.Symbol, FormatFloat(row.Linear.MSE), FormatFloat(row.Neural.MSE)}
	for _, res := range []models.ModelResult{row.Neural, row.Linear} {
		for k := range horizons {
			rec = append(rec, string(actionAt(res, k)))
		}
	}
	return rec
}

func actionAt(res models.ModelResult, k int) models.Action {
	if k < len(res.Actions) {
		return res.Actions[k]
	}
	return models.ActionHold
}

// FormatFloat is the shortest representation that round-trips v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// fixed formats v with places decimals, or "-" when v is not finite.
func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// WriteTable prints an aligned summary of rows.
func WriteTable(w io.Writer, rows []models.ForecastRow, horizons []models.Horizon) error {
	line := strings.Repeat("═", 72)
	if _, err := fmt.Fprintf(w, "%s\n  Forecast comparison (%d tickers)\n%s\n", line, len(rows), line); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "  no tickers were processed")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	head := []string{"SYMBOL", "CLOSE", "SENT", "LR_MSE", "NN_MSE"}
	for _, hz := range horizons {
		head = append(head, strings.ToUpper(hz.Label)+" LR/NN")
	}
	fmt.Fprintln(tw, strings.Join(head, "\t"))
	for _, r := range rows {
		cells := []string{
			r.Symbol,
			fixed(r.LastClose, 2),
			fixed(r.Sentiment, 3),
			fixed(r.Linear.MSE, 4),
			fixed(r.Neural.MSE, 4),
		}
		for k := range horizons {
			cells = append(cells, fmt.Sprintf("%s/%s", actionAt(r.Linear, k), actionAt(r.Neural, k)))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
