package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stockcast/internal/metrics"
	"github.com/seenimoa/stockcast/internal/pipeline"
	"github.com/seenimoa/stockcast/internal/report"
	"github.com/seenimoa/stockcast/pkg/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Forecast the ticker universe and write the comparison report",
	Long: `Resolve the ticker universe, score news sentiment, train the linear and
neural models for every ticker and write the results to the configured sinks.

Examples:
  stockcast run
  stockcast run --limit 3 --output out/mse.csv
  stockcast run --tickers AAPL,MSFT,BRK.B --start 2018-01-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyRunFlags(cmd); err != nil {
			return err
		}

		ctx, stop := commandContext(cmd)
		defer stop()

		start, err := cfg.StartDate()
		if err != nil {
			return fmt.Errorf("history.start: %w", err)
		}
		end, err := cfg.EndDate()
		if err != nil {
			return fmt.Errorf("history.end: %w", err)
		}

		history, release := newHistory(ctx, cfg)
		defer release()

		opts := pipeline.Options{
			Limit:       cfg.Universe.Limit,
			Start:       start,
			End:         end,
			Concurrency: cfg.Analysis.ConcurrentFetches,
			Features:    featureParams(),
			Forecast:    forecastOptions(cfg),
		}
		if err := opts.Forecast.Normalize(); err != nil {
			return err
		}

		sinks, err := newSinks(ctx, cfg, opts.Forecast.Horizons)
		if err != nil {
			return err
		}
		defer closeSinks(sinks)

		rec := metrics.New()
		runner := &pipeline.Runner{
			Universe:  newUniverse(cfg),
			History:   history,
			Sentiment: newScorer(cfg),
			Sinks:     sinks,
			Metrics:   rec,
			Log:       log,
			Options:   opts,
		}

		res, runErr := runner.Run(ctx)
		if res != nil {
			if err := report.WriteTable(os.Stdout, res.Rows, res.Horizons); err != nil {
				return err
			}
			for _, f := range res.Failures {
				fmt.Printf("  skipped %-8s %s: %v\n", f.Symbol, f.Stage, f.Err)
			}
			fmt.Printf("\n  %d/%d tickers in %s", len(res.Rows), len(res.Tickers), report.FormatDuration(res.Duration))
			if cfg.HasSink("csv") {
				fmt.Printf(" → %s", cfg.Output.Path)
			}
			fmt.Println()
		}
		if path := cfg.Metrics.Textfile; path != "" {
			if err := rec.WriteTextfile(path); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("write metrics textfile")
			}
		}
		return runErr
	},
}

func init() {
	runCmd.Flags().StringP("output", "o", "", "CSV output path (overrides output.path)")
	runCmd.Flags().Int("limit", -1, "number of tickers to forecast (overrides universe.limit; 0 = all)")
	runCmd.Flags().String("tickers", "", "comma-separated tickers instead of the scraped universe")
	runCmd.Flags().String("start", "", "history start date YYYY-MM-DD (overrides history.start)")
}

func applyRunFlags(cmd *cobra.Command) error {
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Output.Path = out
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit >= 0 {
		cfg.Universe.Limit = limit
	}
	if list, _ := cmd.Flags().GetString("tickers"); list != "" {
		cfg.Universe.Tickers = utils.ParseTickerList(list)
	}
	if start, _ := cmd.Flags().GetString("start"); start != "" {
		if _, err := utils.ParseDate(start); err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		cfg.History.Start = start
	}
	return nil
}

// commandContext cancels on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
