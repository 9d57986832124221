// stockcast forecasts S&P 500 prices with a linear model and a neural
// network and compares them.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/stockcast/internal/config"
	"github.com/seenimoa/stockcast/pkg/logger"
	"github.com/seenimoa/stockcast/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by PersistentPreRunE.
var (
	cfg *config.Config
	log zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockcast",
	Short: "stockcast — S&P 500 price forecasting",
	Long: `stockcast scrapes the S&P 500 constituents, fetches daily price history,
derives technical indicators and news sentiment, then trains a linear
regression and a neural network per ticker and reports how they compare.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log, err = logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(universeCmd)
	rootCmd.AddCommand(indicatorsCmd)
	rootCmd.AddCommand(sentimentCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Skip config loading.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stockcast %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  stockcast — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus())
		fmt.Printf("  Time (ET):     %s\n", utils.FormatDateTime(utils.NowET()))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Universe:      limit %d", cfg.Universe.Limit)
		if len(cfg.Universe.Tickers) > 0 {
			fmt.Printf(" (static: %d tickers)\n", len(cfg.Universe.Tickers))
		} else {
			fmt.Println(" (scraped)")
		}
		fmt.Printf("    History from:  %s\n", cfg.History.Start)
		fmt.Printf("    News:          %v (classifier: %s)\n", cfg.Sentiment.Providers, cfg.Sentiment.Classifier)
		fmt.Printf("    Horizons:      %v\n", cfg.Model.Horizons)
		fmt.Printf("    Sinks:         %v\n", cfg.Output.Sinks)
		fmt.Printf("    Redis cache:   %v\n", cfg.Cache.Redis.Enabled)
		fmt.Println()

		fmt.Println("  Credentials:")
		for _, c := range config.Credentials(cfg) {
			status := "❌ not set (" + c.EnvVar + ")"
			if c.Set() {
				status = fmt.Sprintf("✅ set (%s: %s)", c.Origin, c.Hint)
			}
			fmt.Printf("    %-25s %s\n", c.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
