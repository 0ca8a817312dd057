package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"network-quality/pkg/database"
	"network-quality/pkg/lifecycle"
	"network-quality/pkg/orchestrator"
	"network-quality/pkg/probe"
	"network-quality/pkg/quality"
	"network-quality/pkg/tui"
)

var (
	debugFlag bool
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "network-quality",
	Short: "Estimate the usability of the current network connection",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set up logging based on the debug flag
		var logLevel slog.Level
		if debugFlag {
			logLevel = slog.LevelDebug
		} else {
			logLevel = slog.LevelInfo
		}

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
		slog.SetDefault(logger)
	},
}

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Run one measurement and print the scored result",
	Long: `Run a single measurement of the current connection and print the
quality tier together with the full measurement record as JSON.
With --extended the packet-loss probe runs as well.`,
	Run: func(cmd *cobra.Command, args []string) {
		extended, _ := cmd.Flags().GetBool("extended")
		timeoutMs, _ := cmd.Flags().GetUint("timeout-ms")
		store, _ := cmd.Flags().GetBool("store")

		orch, err := newOrchestrator()
		if err != nil {
			logger.Error("Error initializing prober", "error", err)
			os.Exit(1)
		}

		result, err := quality.Measure(cmd.Context(), orch, quality.Options{
			Extended: extended,
			Timeout:  time.Duration(timeoutMs) * time.Millisecond,
		})
		if err != nil {
			logger.Error("Measurement failed", "error", err)
			os.Exit(1)
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Error("Error encoding result", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(out))

		if store {
			if err := storeResult(cmd.Context(), result); err != nil {
				logger.Error("Error storing result", "error", err)
				os.Exit(1)
			}
			logger.Info("Latest measurement stored")
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep a watch session open and refresh the quality rating",
	Long: `Open a watch session that measures on start, on process resume
(SIGCONT) and on manual refresh. By default a terminal dashboard is shown;
with --plain each completed measurement is logged instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		extended, _ := cmd.Flags().GetBool("extended")
		timeoutMs, _ := cmd.Flags().GetUint("timeout-ms")

		orch, err := newOrchestrator()
		if err != nil {
			logger.Error("Error initializing prober", "error", err)
			os.Exit(1)
		}

		opts := quality.DefaultWatchOptions()
		opts.Extended = extended
		if timeoutMs > 0 {
			opts.Timeout = time.Duration(timeoutMs) * time.Millisecond
		}

		trigger := lifecycle.NewSignals()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if plain {
			runPlainWatch(ctx, orch, trigger, opts)
			return
		}

		err = tui.Run(func(onMeasure func(*quality.Result, error)) *quality.Watcher {
			opts.OnMeasure = onMeasure
			return quality.NewWatcher(ctx, orch, trigger, logger, opts)
		})
		if err != nil {
			logger.Error("Watch UI failed", "error", err)
			os.Exit(1)
		}
	},
}

func runPlainWatch(ctx context.Context, orch *orchestrator.Orchestrator, trigger lifecycle.Trigger, opts quality.WatchOptions) {
	opts.OnMeasure = func(res *quality.Result, err error) {
		if err != nil {
			logger.Error("Measurement failed", "error", err)
			return
		}
		rec := res.Record
		logger.Info("Measurement completed",
			"tier", res.Tier.String(),
			"link", rec.LinkType,
			"latencyMs", floatAttr(rec.LatencyMs),
			"downlinkMbps", floatAttr(rec.DownlinkMbps),
			"lossPercent", floatAttr(rec.PacketLossPercent),
			"failureReason", rec.FailureReason)
	}

	w := quality.NewWatcher(ctx, orch, trigger, logger, opts)
	defer w.Close()

	logger.Info("Watching network quality, send SIGCONT to re-measure, Ctrl-C to stop")
	<-ctx.Done()
}

// floatAttr renders an optional metric for logging; absent stays readable.
func floatAttr(v *float64) any {
	if v == nil {
		return "absent"
	}
	return *v
}

func newOrchestrator() (*orchestrator.Orchestrator, error) {
	prober, err := probe.NewSystemProber(logger)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(prober, logger), nil
}

func storeResult(ctx context.Context, result *quality.Result) error {
	db, err := database.NewDB()
	if err != nil {
		return fmt.Errorf("error connecting to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		return fmt.Errorf("error initializing database schema: %v", err)
	}

	return db.UpsertLatest(ctx, result.Record, result.Tier)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")

	measureCmd.Flags().Bool("extended", false, "Also run the packet-loss probe")
	measureCmd.Flags().Uint("timeout-ms", 0, "Overall measurement timeout in milliseconds (default 3000)")
	measureCmd.Flags().Bool("store", false, "Store the result as the latest measurement in the database")

	watchCmd.Flags().Bool("plain", false, "Log measurements instead of showing the dashboard")
	watchCmd.Flags().Bool("extended", true, "Also run the packet-loss probe on every refresh")
	watchCmd.Flags().Uint("timeout-ms", 0, "Overall per-measurement timeout in milliseconds (default 3000)")

	rootCmd.AddCommand(measureCmd)
	rootCmd.AddCommand(watchCmd)
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.network-quality")
	viper.AddConfigPath("/etc/network-quality/")

	viper.SetDefault("probe.transport", "")
	viper.SetDefault("probe.latency_target", "www.gstatic.com:443")
	viper.SetDefault("probe.throughput_url", "https://speed.cloudflare.com/__down?bytes=25000000")
	viper.SetDefault("probe.loss_url", "https://www.gstatic.com/generate_204")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "network_quality")
	viper.SetDefault("database.sslmode", "disable")

	// The config file is optional; every key has a default.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
