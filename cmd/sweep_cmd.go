package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var dryRun bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete this tool's snapshots older than the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := newOperator(cmd.Context())
		if err != nil {
			return err
		}

		expired, deleted, err := op.Sweep(cmd.Context(), dryRun)
		if dryRun {
			for _, s := range expired {
				created := ""
				if s.CreatedAt != nil {
					created = humanize.Time(*s.CreatedAt)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, created)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d snapshot(s)\n", deleted)
		return err
	},
}

func init() {
	sweepCmd.Flags().
		BoolVar(&dryRun, "dry-run", false, "list expired snapshots without deleting them")
}
