package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devtrends/turnover/internal/cache"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect the local snapshot store",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved aggregation snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cache.Open(cachePath)
		if err != nil {
			return err
		}
		defer store.Close()

		snaps, err := store.List()
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("no snapshots")
			return nil
		}
		for _, snap := range snaps {
			fmt.Printf("%s  %s  %d authors\n",
				snap.ID, snap.TakenAt.Format(time.RFC3339), len(snap.Buckets))
		}
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cache.Open(cachePath)
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.Get(args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
}
