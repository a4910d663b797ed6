package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/inodb/ribo-framing/internal/annotate"
	"github.com/inodb/ribo-framing/internal/duckdb"
	"github.com/inodb/ribo-framing/internal/output"
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <stats.duckdb>",
		Short: "Compare outcome counts of runs stored with --stats-db",
		Example: `  ribo-framing framing -b sgd.bed -o wt_rep1 --stats-db runs.duckdb wt_rep1.bam
  ribo-framing summary runs.duckdb`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("open statistics database: %w", err)
			}
			store, err := duckdb.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()
			return writeSummary(cmd, store)
		},
	}
}

// writeSummary writes one row per stored sample with its count for every
// outcome.
func writeSummary(cmd *cobra.Command, store *duckdb.Store) error {
	samples, err := store.Samples()
	if err != nil {
		return err
	}

	tw := output.NewTabWriter(cmd.OutOrStdout())
	header := []string{"Sample"}
	for _, o := range annotate.Outcomes() {
		header = append(header, o.String())
	}
	if err := tw.WriteRow(header...); err != nil {
		return err
	}

	for _, sample := range samples {
		counts, err := store.OutcomeCounts(sample)
		if err != nil {
			return err
		}
		row := []string{sample}
		for _, o := range annotate.Outcomes() {
			row = append(row, strconv.FormatInt(counts[o.String()], 10))
		}
		if err := tw.WriteRow(row...); err != nil {
			return err
		}
	}
	return tw.Flush()
}
