package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stockcast/internal/analysis/sentiment"
	"github.com/seenimoa/stockcast/internal/analysis/technical"
	"github.com/seenimoa/stockcast/internal/dataset"
	"github.com/seenimoa/stockcast/internal/universe"
	"github.com/seenimoa/stockcast/pkg/utils"
)

// --- Universe Command ---

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "List the tickers a run would forecast",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		limit := cfg.Universe.Limit
		if all, _ := cmd.Flags().GetBool("all"); all {
			limit = 0
		}
		tickers, err := newUniverse(cfg).Tickers(ctx)
		if err != nil {
			return err
		}
		for i, t := range universe.Truncate(tickers, limit) {
			fmt.Printf("%3d  %s\n", i+1, t)
		}
		return nil
	},
}

func init() {
	universeCmd.Flags().Bool("all", false, "list every constituent instead of the first universe.limit")
}

// --- Indicators Command ---

var indicatorsCmd = &cobra.Command{
	Use:   "indicators [ticker]",
	Short: "Show the technical features and signals of a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		ticker := utils.NormalizeTicker(args[0])
		rows, _ := cmd.Flags().GetInt("rows")

		start, err := cfg.StartDate()
		if err != nil {
			return err
		}
		history, release := newHistory(ctx, cfg)
		defer release()

		candles, err := history.GetHistoricalData(ctx, ticker, start, time.Now())
		if err != nil {
			return fmt.Errorf("history %s: %w", ticker, err)
		}
		frame := dataset.FromCandles(candles)
		if err := technical.AddFeatures(frame, featureParams()); err != nil {
			return err
		}

		fmt.Printf("📊 %s — %d sessions since %s\n", ticker, frame.Len(), cfg.History.Start)
		if warm := featureParams().WarmUp(); frame.Len() <= warm {
			fmt.Printf("⚠️  fewer than %d sessions: some features are still warming up\n", warm+1)
		}
		fmt.Println()
		tail := frame.Tail(rows)
		cols := append([]string{dataset.ColClose}, technical.IndicatorColumns...)
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Date\t"+strings.Join(cols, "\t")+"\t")
		for i, ts := range tail.Index {
			cells := []string{utils.FormatDate(ts)}
			for _, c := range cols {
				cells = append(cells, formatCell(tail.Col(c)[i]))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		signals := technical.Signals(frame)
		action, confidence := technical.Aggregate(signals)
		fmt.Printf("\n  Signals (%s, confidence %.0f%%):\n", action, confidence*100)
		for _, s := range signals {
			fmt.Printf("    [%-4s] %-10s %s\n", s.Action, s.Source, s.Reason)
		}
		return nil
	},
}

func init() {
	indicatorsCmd.Flags().Int("rows", 10, "number of most recent sessions to print")
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// --- Sentiment Command ---

var sentimentCmd = &cobra.Command{
	Use:   "sentiment [ticker...]",
	Short: "Score recent news sentiment for tickers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		tickers := make([]string, len(args))
		for i, a := range args {
			tickers[i] = utils.NormalizeTicker(a)
		}
		verbose, _ := cmd.Flags().GetBool("articles")

		scores := newScorer(cfg).Scores(ctx, tickers)
		for _, t := range tickers {
			s := scores[t]
			fmt.Printf("%-8s %+.3f  %-8s %2d articles", t, s.Score, sentiment.Label(s.Score), len(s.Articles))
			if s.Err != "" {
				fmt.Printf("  (failed: %s)", s.Err)
			}
			fmt.Println()
			if verbose {
				for _, a := range s.Articles {
					fmt.Printf("    %+.2f  %s  %s\n", a.Score, utils.FormatDate(a.PublishedAt), a.Headline)
				}
			}
		}
		return nil
	},
}

func init() {
	sentimentCmd.Flags().Bool("articles", false, "print every scored article")
}
