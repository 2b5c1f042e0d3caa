package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/devtrends/turnover/internal/cache"
	"github.com/devtrends/turnover/internal/config"
	"github.com/devtrends/turnover/internal/esindex"
	"github.com/devtrends/turnover/internal/models"
)

var (
	// Version information (set by build flags)
	Version = "dev"

	settingsFile string
	cachePath    string
	verbose      bool
	logger       *logrus.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			// Interrupted: exit quietly.
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "turnover",
	Short: "Newcomers and people leaving, per year and organization",
	Long: `Turnover queries a GrimoireLab git index for each author's first and
last commit dates and reports how many people joined or left each
organization per year, as JSON or as a line chart.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize logger
		logger = logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", ".settings", "settings file with the [ElasticSearch] section")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", ".turnover.db", "local snapshot store")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// fetchBuckets runs the single aggregation query against the configured index
func fetchBuckets(ctx context.Context) ([]models.AuthorBucket, error) {
	cfg, err := config.Load(settingsFile)
	if err != nil {
		return nil, err
	}

	client, err := esindex.NewClient(cfg.ElasticSearch, logger)
	if err != nil {
		return nil, err
	}

	buckets, err := client.AuthorActivity(ctx)
	if err != nil {
		return nil, err
	}
	logger.WithField("authors", len(buckets)).Debug("aggregation complete")
	return buckets, nil
}

// saveSnapshot stores the aggregation in the local snapshot store
func saveSnapshot(buckets []models.AuthorBucket) error {
	store, err := cache.Open(cachePath)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Save(buckets)
	if err != nil {
		return err
	}
	logger.WithField("snapshot", snap.ID).Info("saved aggregation snapshot")
	return nil
}
