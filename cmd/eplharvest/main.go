package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pprasanth/eplharvest/internal/config"
	"github.com/pprasanth/eplharvest/internal/runlog"
	"github.com/pprasanth/eplharvest/pkg/crawl"
	"github.com/pprasanth/eplharvest/pkg/extract"
	"github.com/pprasanth/eplharvest/pkg/fetch"
	"github.com/pprasanth/eplharvest/pkg/locate"
	"github.com/pprasanth/eplharvest/pkg/report"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "eplharvest",
	Short: "eplharvest - EPL injury and matchlog harvester",
	Long: `eplharvest walks Premier League seasons club by club and player by
player, extracting injury histories and match-by-match logs into CSV
datasets. Runs are paced, resumable at season granularity, and survive
partial failure.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var injuriesCmd = &cobra.Command{
	Use:   "injuries",
	Short: "Harvest player injury histories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHarvest(cmd, "injuries")
	},
}

var matchlogsCmd = &cobra.Command{
	Use:   "matchlogs",
	Short: "Harvest player match-by-match logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHarvest(cmd, "matchlogs")
	},
}

func runHarvest(cmd *cobra.Command, variant string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg, variant)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, closeLog, err := runlog.New(cfg.Storage.LogPath, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	fetcher := fetch.NewFetcher(fetch.Options{
		BaseURL:         cfg.Harvest.BaseURL,
		RequestDelay:    cfg.Harvest.RequestDelay,
		Timeout:         cfg.Harvest.Timeout,
		UserAgent:       cfg.Harvest.UserAgent,
		FollowRobotsTxt: cfg.Harvest.FollowRobotsTxt,
		Logger:          log,
	})
	locator := locate.New(fetcher, cfg.Harvest.BaseURL, cfg.Harvest.Competition, log)

	var extractor crawl.Extractor
	outputPath := cfg.Storage.InjuriesPath
	if variant == "matchlogs" {
		extractor = extract.NewMatchlogs(fetcher, cfg.Harvest.BaseURL, log)
		outputPath = cfg.Storage.MatchlogsPath
	} else {
		extractor = extract.NewInjuries(fetcher, cfg.Harvest.BaseURL, log)
	}

	driver := crawl.New(crawl.Options{
		StartYear:     cfg.Harvest.StartYear,
		EndYear:       cfg.Harvest.EndYear,
		OutputPath:    outputPath,
		TeamDelay:     cfg.Harvest.RequestDelay,
		SeasonDelay:   cfg.Harvest.SeasonDelay,
		Logger:        log,
		FetchFailures: fetcher.Failures,
	}, locator, extractor)

	log.WithField("variant", variant).
		WithField("seasons", fmt.Sprintf("%d-%d", cfg.Harvest.StartYear, cfg.Harvest.EndYear)).
		WithField("output", outputPath).Info("starting harvest")

	stats, err := driver.Run(context.Background())
	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	format, _ := cmd.Flags().GetString("summary-format")
	summary, err := report.Summary(stats, format)
	if err != nil {
		return err
	}
	fmt.Println(summary)

	if cfg.Storage.SummaryPath != "" {
		if err := os.WriteFile(cfg.Storage.SummaryPath, []byte(summary), 0644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}

// applyFlags overrides loaded configuration with any explicitly set
// command-line flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config, variant string) {
	if cmd.Flags().Changed("output") {
		out, _ := cmd.Flags().GetString("output")
		if variant == "matchlogs" {
			cfg.Storage.MatchlogsPath = out
		} else {
			cfg.Storage.InjuriesPath = out
		}
	}
	if cmd.Flags().Changed("log") {
		cfg.Storage.LogPath, _ = cmd.Flags().GetString("log")
	}
	if cmd.Flags().Changed("start-year") {
		cfg.Harvest.StartYear, _ = cmd.Flags().GetInt("start-year")
	}
	if cmd.Flags().Changed("end-year") {
		cfg.Harvest.EndYear, _ = cmd.Flags().GetInt("end-year")
	}
	if cmd.Flags().Changed("delay") {
		cfg.Harvest.RequestDelay, _ = cmd.Flags().GetDuration("delay")
	}
	if cmd.Flags().Changed("season-delay") {
		cfg.Harvest.SeasonDelay, _ = cmd.Flags().GetDuration("season-delay")
	}
}

func init() {
	for _, cmd := range []*cobra.Command{injuriesCmd, matchlogsCmd} {
		cmd.Flags().String("output", "", "Destination for the dataset CSV")
		cmd.Flags().String("log", "", "Destination for the run log")
		cmd.Flags().Int("start-year", 0, "First season start year (inclusive)")
		cmd.Flags().Int("end-year", 0, "Last season start year (inclusive)")
		cmd.Flags().Duration("delay", 3*time.Second, "Minimum delay between requests")
		cmd.Flags().Duration("season-delay", 30*time.Second, "Delay between seasons")
		cmd.Flags().String("summary-format", "text", "Run summary format (text, json)")
		rootCmd.AddCommand(cmd)
	}

	rootCmd.PersistentFlags().String("config", "", "Config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
