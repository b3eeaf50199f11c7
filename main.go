package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"covid-explorer/config"
	"covid-explorer/render"
	"covid-explorer/services"
	"covid-explorer/storage"
	"covid-explorer/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger

	// flag values, applied over the environment only when set
	dataPath    string
	countries   []string
	outputDir   string
	window      int
	minPeriods  int
	concurrency int
	snapshotMap bool
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "covid-explorer",
	Short: "Exploratory analysis of the OWID COVID-19 dataset",
	Long: `Loads owid-covid-data.csv, prints an overview, filters to the selected
countries and renders case, vaccination and death-rate charts plus a world
choropleth of cases per million.

Configuration comes from COVID_* environment variables; flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = utils.NewLogger(cfg.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("COVID-19 data explorer")
		logger.Info("Data: %s | Countries: %v | Output: %s", cfg.DataPath, cfg.Countries, cfg.OutputDir)
		logger.Info("Rolling window: %d (min periods %d) | Concurrency: %d",
			cfg.RollingWindow, cfg.RollingMinPeriods, cfg.MaxConcurrency)

		if err := newPipeline().Run(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(" Done! Charts →", cfg.OutputDir)
		return nil
	},
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Print the dataset overview without rendering charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newPipeline().Explore(cmd.Context())
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print and export the latest row of each selected country",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newPipeline().Snapshot(cmd.Context())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dataPath, "data", "", "path to owid-covid-data.csv")
	flags.StringSliceVar(&countries, "countries", nil, "comma-separated locations to analyse")
	flags.StringVar(&outputDir, "out", "", "directory for rendered charts")
	flags.IntVar(&window, "window", 0, "rolling average window in samples")
	flags.IntVar(&minPeriods, "min-periods", 0, "samples required before a rolling value is drawn")
	flags.IntVar(&concurrency, "concurrency", 0, "charts rendered in parallel")
	flags.BoolVar(&snapshotMap, "snapshot-map", false, "also save a PNG of the map using headless Chrome")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(exploreCmd, snapshotCmd)
}

// loadConfig layers changed flags over the environment, then resolves and
// validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, c)
	c.Resolve()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("data") {
		c.DataPath = dataPath
	}
	if flags.Changed("countries") {
		c.Countries = countries
	}
	if flags.Changed("out") {
		c.OutputDir = outputDir
	}
	if flags.Changed("window") {
		c.RollingWindow = window
	}
	if flags.Changed("min-periods") {
		c.RollingMinPeriods = minPeriods
	}
	if flags.Changed("concurrency") {
		c.MaxConcurrency = concurrency
	}
	if flags.Changed("snapshot-map") {
		c.SnapshotMap = snapshotMap
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
}

func newPipeline() *services.Pipeline {
	var sink storage.SnapshotSink
	if cfg.SnapshotCSVPath != "" {
		sink = storage.NewCSVWriter(cfg.SnapshotCSVPath, logger.Named("export"))
	}
	return services.NewPipeline(cfg,
		storage.NewCSVLoader(cfg.DataPath, logger.Named("loader")),
		render.NewRenderer(cfg, logger.Named("render")),
		sink, os.Stdout, logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("%v", err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
