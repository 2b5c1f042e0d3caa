package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var aggregateSave bool

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Query the index and print the per-author aggregation as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		buckets, err := fetchBuckets(cmd.Context())
		if err != nil {
			return err
		}

		if aggregateSave {
			if err := saveSnapshot(buckets); err != nil {
				return err
			}
		}

		out, err := json.MarshalIndent(buckets, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	aggregateCmd.Flags().BoolVar(&aggregateSave, "save", false, "also save the aggregation to the snapshot store")
}
