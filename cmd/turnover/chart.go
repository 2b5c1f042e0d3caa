package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/devtrends/turnover/internal/cache"
	"github.com/devtrends/turnover/internal/chart"
	"github.com/devtrends/turnover/internal/models"
	"github.com/devtrends/turnover/internal/report"
)

var (
	chartOut      string
	chartOpen     bool
	chartSnapshot string
	chartSave     bool
	chartSince    int
	chartTop      int
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the newcomers and people leaving chart",
	Long: `Chart runs the author aggregation (or loads a saved snapshot), computes
newcomer and leaver counts per year and organization, and renders them as
an HTML line chart with one newcomers, one leaving and one net series per
organization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var buckets []models.AuthorBucket
		var err error

		if chartSnapshot != "" {
			buckets, err = loadSnapshot(chartSnapshot)
		} else {
			buckets, err = fetchBuckets(cmd.Context())
			if err == nil && chartSave {
				err = saveSnapshot(buckets)
			}
		}
		if err != nil {
			return err
		}

		counts, err := report.Turnover(buckets, report.Options{
			SinceYear: chartSince,
			TopOrgs:   chartTop,
		})
		if err != nil {
			return err
		}

		f, err := os.Create(chartOut)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := chart.Render(f, counts, "Newcomers & People Leaving"); err != nil {
			return err
		}
		logger.WithField("chart", chartOut).Info("chart rendered")

		if chartOpen {
			path, err := filepath.Abs(chartOut)
			if err != nil {
				return err
			}
			return browser.OpenFile(path)
		}
		return nil
	},
}

// loadSnapshot reads a saved aggregation from the snapshot store
func loadSnapshot(id string) ([]models.AuthorBucket, error) {
	store, err := cache.Open(cachePath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	snap, err := store.Get(id)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"snapshot": snap.ID,
		"taken_at": snap.TakenAt,
	}).Debug("loaded aggregation snapshot")
	return snap.Buckets, nil
}

func init() {
	defaults := report.DefaultOptions()

	chartCmd.Flags().StringVar(&chartOut, "out", "turnover.html", "output HTML file")
	chartCmd.Flags().BoolVar(&chartOpen, "open", false, "open the rendered chart in a browser")
	chartCmd.Flags().StringVar(&chartSnapshot, "snapshot", "", "render from a saved snapshot instead of querying the index")
	chartCmd.Flags().BoolVar(&chartSave, "save", false, "also save the aggregation to the snapshot store")
	chartCmd.Flags().IntVar(&chartSince, "since", defaults.SinceYear, "keep years strictly after this one")
	chartCmd.Flags().IntVar(&chartTop, "top", defaults.TopOrgs, "organizations kept per year")
}
